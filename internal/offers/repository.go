package offers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateOffer(ctx context.Context, offer *Offer) error
	GetOfferByID(ctx context.Context, id uuid.UUID) (*Offer, error)
	GetOffersByRestaurant(ctx context.Context, restaurantID uuid.UUID, activeOnly bool) ([]Offer, error)
	UpdateOffer(ctx context.Context, offer *Offer) error
	DeleteOffer(ctx context.Context, id uuid.UUID) error
	DeactivateLapsed(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateOffer(ctx context.Context, offer *Offer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

func (r *repository) GetOfferByID(ctx context.Context, id uuid.UUID) (*Offer, error) {
	var offer Offer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repository) GetOffersByRestaurant(ctx context.Context, restaurantID uuid.UUID, activeOnly bool) ([]Offer, error) {
	var list []Offer
	query := r.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *repository) UpdateOffer(ctx context.Context, offer *Offer) error {
	return r.db.WithContext(ctx).Save(offer).Error
}

func (r *repository) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Offer{}, "id = ?", id).Error
}

// DeactivateLapsed flips the active flag off for offers whose validity
// window has fully passed, keeping the stored flag from drifting too far
// from the window-aware check.
func (r *repository) DeactivateLapsed(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&Offer{}).
		Where("is_active = ?", true).
		Where("valid_until < ?", now.Truncate(24*time.Hour)).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
