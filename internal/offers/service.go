package offers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service interface defines the contract for offer business logic
type Service interface {
	CreateOffer(ctx context.Context, restaurantID uuid.UUID, req OfferRequest) (*Offer, error)
	GetOffer(ctx context.Context, id uuid.UUID) (*Offer, error)
	GetRestaurantOffers(ctx context.Context, restaurantID uuid.UUID, activeOnly bool) ([]Offer, error)
	UpdateOffer(ctx context.Context, id uuid.UUID, req OfferRequest) (*Offer, error)
	DeleteOffer(ctx context.Context, id uuid.UUID) error
}

type OfferRequest struct {
	Title              string          `json:"title" binding:"required,min=2,max=255"`
	Description        string          `json:"description"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" binding:"required"`
	ValidFrom          time.Time       `json:"valid_from" binding:"required"`
	ValidUntil         time.Time       `json:"valid_until" binding:"required"`
	StartTime          string          `json:"start_time" binding:"omitempty,hhmm"`
	EndTime            string          `json:"end_time" binding:"omitempty,hhmm"`
	IsActive           *bool           `json:"is_active"`
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateOffer(ctx context.Context, restaurantID uuid.UUID, req OfferRequest) (*Offer, error) {
	if err := validateOfferRequest(req); err != nil {
		return nil, err
	}

	offer := &Offer{
		RestaurantID:       restaurantID,
		Title:              req.Title,
		Description:        req.Description,
		DiscountPercentage: req.DiscountPercentage,
		ValidFrom:          req.ValidFrom,
		ValidUntil:         req.ValidUntil,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		IsActive:           true,
	}
	if req.IsActive != nil {
		offer.IsActive = *req.IsActive
	}

	if err := s.repo.CreateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}
	return offer, nil
}

func (s *service) GetOffer(ctx context.Context, id uuid.UUID) (*Offer, error) {
	return s.repo.GetOfferByID(ctx, id)
}

func (s *service) GetRestaurantOffers(ctx context.Context, restaurantID uuid.UUID, activeOnly bool) ([]Offer, error) {
	return s.repo.GetOffersByRestaurant(ctx, restaurantID, activeOnly)
}

func (s *service) UpdateOffer(ctx context.Context, id uuid.UUID, req OfferRequest) (*Offer, error) {
	if err := validateOfferRequest(req); err != nil {
		return nil, err
	}

	offer, err := s.repo.GetOfferByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("offer not found: %w", err)
	}

	offer.Title = req.Title
	offer.Description = req.Description
	offer.DiscountPercentage = req.DiscountPercentage
	offer.ValidFrom = req.ValidFrom
	offer.ValidUntil = req.ValidUntil
	offer.StartTime = req.StartTime
	offer.EndTime = req.EndTime
	if req.IsActive != nil {
		offer.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}
	return offer, nil
}

func (s *service) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteOffer(ctx, id)
}

func validateOfferRequest(req OfferRequest) error {
	hundred := decimal.NewFromInt(100)
	if req.DiscountPercentage.IsNegative() || req.DiscountPercentage.GreaterThan(hundred) {
		return fmt.Errorf("discount percentage must be between 0 and 100")
	}
	if req.ValidUntil.Before(req.ValidFrom) {
		return fmt.Errorf("valid_until must not be before valid_from")
	}
	return nil
}
