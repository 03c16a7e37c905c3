package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dinely/internal/offers"
	"dinely/internal/restaurants"
	"dinely/internal/slots"
)

// Adapters from the concrete feature services to the narrow interfaces this
// package consumes.

type slotServiceAdapter struct {
	service slots.Service
}

func NewSlotServiceAdapter(service slots.Service) SlotService {
	return &slotServiceAdapter{service: service}
}

func (a *slotServiceAdapter) GetSlotInfo(ctx context.Context, slotID uuid.UUID) (*SlotInfo, error) {
	slot, err := a.service.GetSlot(ctx, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	start, err := slot.StartDateTime(time.UTC)
	if err != nil {
		return nil, err
	}

	return &SlotInfo{
		ID:           slot.ID,
		RestaurantID: slot.RestaurantID,
		TotalSeats:   slot.TotalSeats,
		Start:        start,
	}, nil
}

type rateServiceAdapter struct {
	service restaurants.Service
}

func NewRateServiceAdapter(service restaurants.Service) RateService {
	return &rateServiceAdapter{service: service}
}

func (a *rateServiceAdapter) AdvanceRate(ctx context.Context, restaurantID uuid.UUID) (decimal.Decimal, error) {
	rate, err := a.service.AdvanceRate(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, restaurants.ErrNoPaymentSettings) {
			return decimal.Zero, ErrRateNotConfigured
		}
		return decimal.Zero, err
	}
	return rate, nil
}

type offerServiceAdapter struct {
	service offers.Service
}

func NewOfferServiceAdapter(service offers.Service) OfferService {
	return &offerServiceAdapter{service: service}
}

func (a *offerServiceAdapter) GetAppliedOffer(ctx context.Context, offerID uuid.UUID, now time.Time) (*AppliedOffer, error) {
	offer, err := a.service.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	return &AppliedOffer{
		DiscountPercentage: offer.DiscountPercentage,
		Valid:              offer.CurrentlyValid(now),
	}, nil
}
