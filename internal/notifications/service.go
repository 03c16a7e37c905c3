package notifications

import (
	"context"

	"github.com/google/uuid"
)

// Service is the owner-facing inbox surface.
type Service interface {
	GetInbox(ctx context.Context, restaurantID uuid.UUID, unreadOnly bool, limit, offset int) ([]Notification, error)
	UnreadCount(ctx context.Context, restaurantID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetInbox(ctx context.Context, restaurantID uuid.UUID, unreadOnly bool, limit, offset int) ([]Notification, error) {
	return s.repo.GetByRestaurant(ctx, restaurantID, unreadOnly, limit, offset)
}

func (s *service) UnreadCount(ctx context.Context, restaurantID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, restaurantID)
}

func (s *service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id)
}
