package restaurants

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	CreateRestaurant(ctx context.Context, restaurant *Restaurant) error
	GetRestaurantByID(ctx context.Context, id uuid.UUID) (*Restaurant, error)
	GetRestaurantsByOwner(ctx context.Context, ownerID uuid.UUID) ([]Restaurant, error)

	GetPaymentSettings(ctx context.Context, restaurantID uuid.UUID) (*PaymentSettings, error)
	UpsertPaymentSettings(ctx context.Context, settings *PaymentSettings) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateRestaurant(ctx context.Context, restaurant *Restaurant) error {
	return r.db.WithContext(ctx).Create(restaurant).Error
}

func (r *repository) GetRestaurantByID(ctx context.Context, id uuid.UUID) (*Restaurant, error) {
	var restaurant Restaurant
	err := r.db.WithContext(ctx).
		Preload("PaymentSettings").
		Where("id = ?", id).
		First(&restaurant).Error
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *repository) GetRestaurantsByOwner(ctx context.Context, ownerID uuid.UUID) ([]Restaurant, error) {
	var list []Restaurant
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *repository) GetPaymentSettings(ctx context.Context, restaurantID uuid.UUID) (*PaymentSettings, error) {
	var settings PaymentSettings
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *repository) UpsertPaymentSettings(ctx context.Context, settings *PaymentSettings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "restaurant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"min_advance_amount", "upi_id", "updated_at"}),
		}).
		Create(settings).Error
}
