package restaurants

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrNoPaymentSettings is returned when a restaurant has not configured an
// advance rate yet.
var ErrNoPaymentSettings = errors.New("restaurant has no payment settings configured")

// Service interface defines the contract for restaurant business logic
type Service interface {
	CreateRestaurant(ctx context.Context, ownerID uuid.UUID, req CreateRestaurantRequest) (*Restaurant, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (*Restaurant, error)
	GetOwnerRestaurants(ctx context.Context, ownerID uuid.UUID) ([]Restaurant, error)

	// AdvanceRate returns the configured per-guest advance amount.
	AdvanceRate(ctx context.Context, restaurantID uuid.UUID) (decimal.Decimal, error)
	SetPaymentSettings(ctx context.Context, restaurantID uuid.UUID, req PaymentSettingsRequest) (*PaymentSettings, error)
}

type CreateRestaurantRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=255"`
	Address string `json:"address" binding:"max=500"`
	Phone   string `json:"phone" binding:"max=20"`
}

type PaymentSettingsRequest struct {
	MinAdvanceAmount decimal.Decimal `json:"min_advance_amount" binding:"required"`
	UpiID            string          `json:"upi_id" binding:"max=255"`
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateRestaurant(ctx context.Context, ownerID uuid.UUID, req CreateRestaurantRequest) (*Restaurant, error) {
	restaurant := &Restaurant{
		OwnerID: ownerID,
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	}
	if err := s.repo.CreateRestaurant(ctx, restaurant); err != nil {
		return nil, fmt.Errorf("failed to create restaurant: %w", err)
	}
	return restaurant, nil
}

func (s *service) GetRestaurant(ctx context.Context, id uuid.UUID) (*Restaurant, error) {
	return s.repo.GetRestaurantByID(ctx, id)
}

func (s *service) GetOwnerRestaurants(ctx context.Context, ownerID uuid.UUID) ([]Restaurant, error) {
	return s.repo.GetRestaurantsByOwner(ctx, ownerID)
}

func (s *service) AdvanceRate(ctx context.Context, restaurantID uuid.UUID) (decimal.Decimal, error) {
	settings, err := s.repo.GetPaymentSettings(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrNoPaymentSettings
		}
		return decimal.Zero, fmt.Errorf("failed to load payment settings: %w", err)
	}
	return settings.MinAdvanceAmount, nil
}

func (s *service) SetPaymentSettings(ctx context.Context, restaurantID uuid.UUID, req PaymentSettingsRequest) (*PaymentSettings, error) {
	if req.MinAdvanceAmount.IsNegative() {
		return nil, fmt.Errorf("advance amount must not be negative")
	}

	settings := &PaymentSettings{
		RestaurantID:     restaurantID,
		MinAdvanceAmount: req.MinAdvanceAmount,
		UpiID:            req.UpiID,
	}
	if err := s.repo.UpsertPaymentSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save payment settings: %w", err)
	}
	return settings, nil
}
