package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dinely/internal/notifications"
	"dinely/pkg/cache"
	"dinely/pkg/logger"
)

// SlotInfo is the slice of a seat slot the booking flow needs.
type SlotInfo struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	TotalSeats   int
	Start        time.Time
}

// SlotService provides slot lookups without importing the slots package
// (keeps the dependency one-directional; slots consumes availability from
// here through its own interface).
type SlotService interface {
	GetSlotInfo(ctx context.Context, slotID uuid.UUID) (*SlotInfo, error)
}

// RateService resolves a restaurant's per-guest advance rate.
type RateService interface {
	AdvanceRate(ctx context.Context, restaurantID uuid.UUID) (decimal.Decimal, error)
}

// OfferService resolves an offer into the narrow view pricing needs.
type OfferService interface {
	GetAppliedOffer(ctx context.Context, offerID uuid.UUID, now time.Time) (*AppliedOffer, error)
}

// NotificationPublisher is satisfied by notifications.Publisher.
type NotificationPublisher interface {
	PublishRefundRequest(ctx context.Context, req *notifications.RefundRequest) error
	PublishHoldExpired(ctx context.Context, notice *notifications.HoldExpiredNotice) error
}

// AcquireRequest is the validated input for taking a seat hold.
type AcquireRequest struct {
	SlotID  uuid.UUID
	Guests  int
	OfferID *uuid.UUID
}

// CancellationResult reports how a cancellation settled. When the slot start
// is at least the refund cutoff away, the advance is refund-eligible and a
// refund request has been emitted.
type CancellationResult struct {
	Reservation    *Reservation    `json:"reservation"`
	RefundEligible bool            `json:"refund_eligible"`
	RefundAmount   decimal.Decimal `json:"refund_amount"`
}

// ServiceConfig carries the hold-lifecycle knobs.
type ServiceConfig struct {
	HoldTTL              time.Duration
	RefundCutoff         time.Duration
	AvailabilityCacheTTL time.Duration
	SweepBatchSize       int
}

type Service interface {
	Availability(ctx context.Context, slotID uuid.UUID) (int, error)
	AcquireHold(ctx context.Context, userID uuid.UUID, req AcquireRequest) (*Reservation, error)
	Confirm(ctx context.Context, id, userID uuid.UUID) (*Reservation, error)
	Fail(ctx context.Context, id, userID uuid.UUID) (*Reservation, error)
	Cancel(ctx context.Context, id, userID uuid.UUID) (*CancellationResult, error)
	GetReservation(ctx context.Context, id, userID uuid.UUID) (*Reservation, error)
	GetUserReservations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Reservation, error)
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	repo      Repository
	slots     SlotService
	rates     RateService
	offers    OfferService
	publisher NotificationPublisher
	cache     cache.Service
	config    ServiceConfig
	log       *logger.Logger

	// now is swappable in tests.
	now func() time.Time
}

func NewService(
	repo Repository,
	slots SlotService,
	rates RateService,
	offers OfferService,
	publisher NotificationPublisher,
	cacheService cache.Service,
	config ServiceConfig,
	log *logger.Logger,
) Service {
	if config.HoldTTL <= 0 {
		config.HoldTTL = 3 * time.Minute
	}
	if config.RefundCutoff <= 0 {
		config.RefundCutoff = 2 * time.Hour
	}
	if config.SweepBatchSize <= 0 {
		config.SweepBatchSize = 500
	}
	return &service{
		repo:      repo,
		slots:     slots,
		rates:     rates,
		offers:    offers,
		publisher: publisher,
		cache:     cacheService,
		config:    config,
		log:       log,
		now:       time.Now,
	}
}

// Availability returns the raw derived seat count for a slot. Reads go
// through the short-TTL cache; admission decisions never use this path.
func (s *service) Availability(ctx context.Context, slotID uuid.UUID) (int, error) {
	if s.cache != nil && s.config.AvailabilityCacheTTL > 0 {
		var cached int
		err := s.cache.GetOrSet(ctx, cache.SlotAvailabilityKey(slotID), s.config.AvailabilityCacheTTL,
			func() (interface{}, error) {
				return s.repo.SlotAvailability(ctx, slotID, s.now())
			}, &cached)
		if err == nil {
			return cached, nil
		}
		// Cache trouble falls through to the database.
	}
	return s.repo.SlotAvailability(ctx, slotID, s.now())
}

func (s *service) AcquireHold(ctx context.Context, userID uuid.UUID, req AcquireRequest) (*Reservation, error) {
	if req.Guests <= 0 {
		return nil, fmt.Errorf("guest count must be positive, got %d", req.Guests)
	}
	now := s.now()

	slot, err := s.slots.GetSlotInfo(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}

	rate, err := s.rates.AdvanceRate(ctx, slot.RestaurantID)
	if err != nil {
		return nil, err
	}

	// An invalid or missing offer prices as no discount; it never blocks the
	// hold.
	var applied *AppliedOffer
	if req.OfferID != nil {
		applied, err = s.offers.GetAppliedOffer(ctx, *req.OfferID, now)
		if err != nil {
			s.log.WithError(err).Warn("offer lookup failed, pricing without discount",
				"offer_id", *req.OfferID)
			applied = nil
		}
	}

	expiry := now.Add(s.config.HoldTTL)
	reservation := &Reservation{
		ID:           uuid.New(),
		UserID:       userID,
		RestaurantID: slot.RestaurantID,
		SlotID:       slot.ID,
		OfferID:      req.OfferID,
		Guests:       req.Guests,
		AdvanceDue:   Price(rate, req.Guests, applied),
		Status:       StatusPending,
		Locked:       true,
		LockExpiry:   &expiry,
	}

	if err := s.repo.CreateHoldWithCapacityCheck(ctx, reservation, now); err != nil {
		return nil, err
	}

	s.invalidateAvailability(ctx, slot.ID)
	s.log.LogHoldAcquired(ctx, reservation.ID.String(), slot.ID.String(), req.Guests)
	return reservation, nil
}

func (s *service) Confirm(ctx context.Context, id, userID uuid.UUID) (*Reservation, error) {
	if _, err := s.checkOwnership(ctx, id, userID); err != nil {
		return nil, err
	}

	reservation, err := s.repo.ConfirmWithCapacityCheck(ctx, id, s.now())
	if reservation != nil {
		s.invalidateAvailability(ctx, reservation.SlotID)
	}
	if err != nil {
		return reservation, err
	}

	s.log.LogReservationConfirmed(ctx, reservation.ID.String(), reservation.SlotID.String())
	return reservation, nil
}

// Fail settles a hold as failed, typically after a payment failure.
// Releasing an already-failed hold is a no-op.
func (s *service) Fail(ctx context.Context, id, userID uuid.UUID) (*Reservation, error) {
	if _, err := s.checkOwnership(ctx, id, userID); err != nil {
		return nil, err
	}

	reservation, err := s.repo.Release(ctx, id, s.now())
	if err != nil {
		return nil, err
	}

	s.invalidateAvailability(ctx, reservation.SlotID)
	return reservation, nil
}

func (s *service) Cancel(ctx context.Context, id, userID uuid.UUID) (*CancellationResult, error) {
	owned, err := s.checkOwnership(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	slot, err := s.slots.GetSlotInfo(ctx, owned.SlotID)
	if err != nil {
		return nil, err
	}
	slotStart := slot.Start

	reservation, err := s.repo.Cancel(ctx, id, now)
	if err != nil {
		return nil, err
	}
	s.invalidateAvailability(ctx, reservation.SlotID)

	// A late cancellation still goes through; it just forfeits the advance.
	refundEligible := slotStart.Sub(now) >= s.config.RefundCutoff
	result := &CancellationResult{
		Reservation:    reservation,
		RefundEligible: refundEligible,
		RefundAmount:   decimal.Zero.Round(2),
	}

	if refundEligible {
		result.RefundAmount = reservation.AdvanceDue
		s.emitRefundRequest(ctx, reservation, slotStart, now)
	}

	s.log.LogReservationCancelled(ctx, reservation.ID.String(), refundEligible)
	return result, nil
}

func (s *service) GetReservation(ctx context.Context, id, userID uuid.UUID) (*Reservation, error) {
	reservation, err := s.repo.GetReservationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != userID {
		return nil, ErrReservationNotFound
	}
	return reservation, nil
}

func (s *service) GetUserReservations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Reservation, error) {
	return s.repo.GetUserReservations(ctx, userID, limit, offset)
}

// SweepExpired releases every hold whose TTL passed before now. One bad row
// does not stop the sweep.
func (s *service) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.GetExpiredHolds(ctx, now, s.config.SweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired holds: %w", err)
	}

	released := 0
	for i := range expired {
		if _, err := s.repo.Release(ctx, expired[i].ID, now); err != nil {
			s.log.ErrorWithContext(ctx, "failed to release expired hold", err,
				map[string]interface{}{"reservation_id": expired[i].ID})
			continue
		}
		s.invalidateAvailability(ctx, expired[i].SlotID)
		s.emitHoldExpired(ctx, &expired[i], now)
		released++
	}

	if released > 0 {
		s.log.LogExpiredHoldsReleased(ctx, released)
	}
	return released, nil
}

// checkOwnership returns the reservation when it belongs to the caller. A
// foreign reservation reads as not found.
func (s *service) checkOwnership(ctx context.Context, id, userID uuid.UUID) (*Reservation, error) {
	reservation, err := s.repo.GetReservationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != userID {
		return nil, ErrReservationNotFound
	}
	return reservation, nil
}

// emitRefundRequest publishes the refund work item. The refund pipeline is
// best-effort: a broker outage must not fail the cancellation itself.
func (s *service) emitRefundRequest(ctx context.Context, reservation *Reservation, slotStart, now time.Time) {
	if s.publisher == nil {
		return
	}
	req := &notifications.RefundRequest{
		ReservationID: reservation.ID,
		RestaurantID:  reservation.RestaurantID,
		UserID:        reservation.UserID,
		Amount:        reservation.AdvanceDue,
		SlotStart:     slotStart,
		RequestedAt:   now,
	}
	if err := s.publisher.PublishRefundRequest(ctx, req); err != nil {
		s.log.ErrorWithContext(ctx, "failed to publish refund request", err,
			map[string]interface{}{"reservation_id": reservation.ID})
	}
}

// emitHoldExpired tells the owner a hold lapsed unsettled. Best-effort like
// the refund path.
func (s *service) emitHoldExpired(ctx context.Context, reservation *Reservation, now time.Time) {
	if s.publisher == nil {
		return
	}
	expiredAt := now
	if reservation.LockExpiry != nil {
		expiredAt = *reservation.LockExpiry
	}
	notice := &notifications.HoldExpiredNotice{
		ReservationID: reservation.ID,
		RestaurantID:  reservation.RestaurantID,
		UserID:        reservation.UserID,
		SlotID:        reservation.SlotID,
		ExpiredAt:     expiredAt,
	}
	if err := s.publisher.PublishHoldExpired(ctx, notice); err != nil {
		s.log.WithError(err).Warn("failed to publish hold-expired notice",
			"reservation_id", reservation.ID)
	}
}

func (s *service) invalidateAvailability(ctx context.Context, slotID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.SlotAvailabilityKey(slotID)); err != nil {
		s.log.WithError(err).Warn("failed to invalidate availability cache", "slot_id", slotID)
	}
}
