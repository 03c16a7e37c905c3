package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dinely/internal/notifications"
	"dinely/internal/slots"
	"dinely/pkg/logger"
)

// --- stubs -----------------------------------------------------------------

type stubSlots struct {
	info map[uuid.UUID]*SlotInfo
}

func (s *stubSlots) GetSlotInfo(ctx context.Context, id uuid.UUID) (*SlotInfo, error) {
	if si, ok := s.info[id]; ok {
		return si, nil
	}
	return nil, ErrSlotNotFound
}

type stubRates struct {
	rate decimal.Decimal
	err  error
}

func (s *stubRates) AdvanceRate(ctx context.Context, restaurantID uuid.UUID) (decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.rate, nil
}

type stubOffers struct {
	offers map[uuid.UUID]*AppliedOffer
}

func (s *stubOffers) GetAppliedOffer(ctx context.Context, offerID uuid.UUID, now time.Time) (*AppliedOffer, error) {
	if o, ok := s.offers[offerID]; ok {
		return o, nil
	}
	return nil, errors.New("offer not found")
}

type stubPublisher struct {
	mu        sync.Mutex
	published []*notifications.RefundRequest
	expired   []*notifications.HoldExpiredNotice
}

func (s *stubPublisher) PublishRefundRequest(ctx context.Context, req *notifications.RefundRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, req)
	return nil
}

func (s *stubPublisher) PublishHoldExpired(ctx context.Context, notice *notifications.HoldExpiredNotice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expired = append(s.expired, notice)
	return nil
}

func (s *stubPublisher) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}

func (s *stubPublisher) expiredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expired)
}

// --- harness ---------------------------------------------------------------

type testEnv struct {
	db           *gorm.DB
	repo         Repository
	svc          *service
	slots        *stubSlots
	rates        *stubRates
	offers       *stubOffers
	publisher    *stubPublisher
	restaurantID uuid.UUID

	mu  sync.Mutex
	now time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// One named in-memory database per test; a single open connection keeps
	// it alive and serializes concurrent transactions.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&slots.SeatSlot{}, &Reservation{}))

	env := &testEnv{
		db:           db,
		repo:         NewRepository(db),
		slots:        &stubSlots{info: map[uuid.UUID]*SlotInfo{}},
		rates:        &stubRates{rate: decimal.NewFromInt(200)},
		offers:       &stubOffers{offers: map[uuid.UUID]*AppliedOffer{}},
		publisher:    &stubPublisher{},
		restaurantID: uuid.New(),
		now:          time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	env.svc = NewService(
		env.repo,
		env.slots,
		env.rates,
		env.offers,
		env.publisher,
		nil,
		ServiceConfig{HoldTTL: 3 * time.Minute, RefundCutoff: 2 * time.Hour},
		logger.GetDefault(),
	).(*service)
	env.svc.now = env.clock

	return env
}

func (e *testEnv) clock() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

func (e *testEnv) advance(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = e.now.Add(d)
}

// createSlot persists a slot row and registers it with the stub.
func (e *testEnv) createSlot(t *testing.T, totalSeats int, start time.Time) uuid.UUID {
	t.Helper()
	slot := &slots.SeatSlot{
		RestaurantID: e.restaurantID,
		Date:         time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		StartTime:    start.Format("15:04"),
		EndTime:      start.Add(30 * time.Minute).Format("15:04"),
		TotalSeats:   totalSeats,
	}
	require.NoError(t, e.db.Create(slot).Error)
	e.slots.info[slot.ID] = &SlotInfo{
		ID:           slot.ID,
		RestaurantID: e.restaurantID,
		TotalSeats:   totalSeats,
		Start:        start,
	}
	return slot.ID
}

func (e *testEnv) acquire(t *testing.T, userID, slotID uuid.UUID, guests int) *Reservation {
	t.Helper()
	res, err := e.svc.AcquireHold(context.Background(), userID, AcquireRequest{SlotID: slotID, Guests: guests})
	require.NoError(t, err)
	return res
}

// --- tests -----------------------------------------------------------------

func TestAcquireHoldPricesAndLocks(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.createSlot(t, 20, env.clock().Add(4*time.Hour))
	userID := uuid.New()

	offerID := uuid.New()
	env.offers.offers[offerID] = &AppliedOffer{DiscountPercentage: decimal.NewFromInt(10), Valid: true}

	res, err := env.svc.AcquireHold(context.Background(), userID, AcquireRequest{
		SlotID:  slotID,
		Guests:  4,
		OfferID: &offerID,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, res.Status)
	assert.True(t, res.Locked)
	require.NotNil(t, res.LockExpiry)
	assert.Equal(t, env.clock().Add(3*time.Minute), res.LockExpiry.UTC())
	assert.Equal(t, "720.00", res.AdvanceDue.StringFixed(2))

	available, err := env.svc.Availability(context.Background(), slotID)
	require.NoError(t, err)
	assert.Equal(t, 16, available)
}

func TestAcquireHoldUnknownOfferPricesFull(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.createSlot(t, 20, env.clock().Add(4*time.Hour))
	missing := uuid.New()

	res, err := env.svc.AcquireHold(context.Background(), uuid.New(), AcquireRequest{
		SlotID:  slotID,
		Guests:  4,
		OfferID: &missing,
	})
	require.NoError(t, err)
	assert.Equal(t, "800.00", res.AdvanceDue.StringFixed(2))
}

func TestAcquireHoldCapacityExceeded(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.createSlot(t, 10, env.clock().Add(4*time.Hour))

	env.acquire(t, uuid.New(), slotID, 6)

	_, err := env.svc.AcquireHold(context.Background(), uuid.New(), AcquireRequest{SlotID: slotID, Guests: 6})
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 6, capErr.Requested)
	assert.Equal(t, 4, capErr.Available)
}

func TestAcquireHoldRateNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.createSlot(t, 10, env.clock().Add(4*time.Hour))
	env.rates.err = ErrRateNotConfigured

	_, err := env.svc.AcquireHold(context.Background(), uuid.New(), AcquireRequest{SlotID: slotID, Guests: 2})
	assert.ErrorIs(t, err, ErrRateNotConfigured)
}

func TestAcquireHoldUnknownSlot(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.AcquireHold(context.Background(), uuid.New(), AcquireRequest{SlotID: uuid.New(), Guests: 2})
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestConcurrentAcquiresNeverOverbook(t *testing.T) {
	env := newTestEnv(t)
	const capacity = 10
	slotID := env.createSlot(t, capacity, env.clock().Add(4*time.Hour))

	const workers = 8
	const guestsEach = 2

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.AcquireHold(context.Background(), uuid.New(),
				AcquireRequest{SlotID: slotID, Guests: guestsEach})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			var capErr *CapacityError
			require.ErrorAs(t, err, &capErr)
		}
	}
	assert.Equal(t, capacity/guestsEach, succeeded)

	var lockedGuests int
	require.NoError(t, env.db.Model(&Reservation{}).
		Where("slot_id = ? AND locked = ?", slotID, true).
		Select("COALESCE(SUM(guests), 0)").
		Scan(&lockedGuests).Error)
	assert.Equal(t, capacity, lockedGuests)
}

func TestConfirmSettlesHold(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.createSlot(t, 10, env.clock().Add(4*time.Hour))
	userID := uuid.New()

	held := env.acquire(t, userID, slotID, 4)

	confirmed, err := env.svc.Confirm(context.Background(), held.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)
	assert.False(t, confirmed.Locked)
	assert.Nil(t, confirmed.LockExpiry)

	available, err := env.svc.Availability(context.Background(), slotID)
	require.NoError(t, err)
	assert.Equal(t, 6, available)
}

func TestConfirmExpiredHold(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.createSlot(t, 10, env.clock().Add(4*time.Hour))
	userID := uuid.New()

	held := env.acquire(t, userID, slotID, 4)
	env.advance(5 * time.Minute)

	_, err := env.svc.Confirm(context.Background(), held.ID, userID)
	assert.ErrorIs(t, err, ErrLockExpired)

	// The expired hold settled as failed and the seats came back.
	var settled Reservation
	require.NoError(t, env.db.First(&settled, "id = ?", held.ID).Error)
	assert.Equal(t, StatusFailed, settled.Status)
	assert.False(t, settled.Locked)

	available, err := env.svc.Availability(context.Background(), slotID)
	require.NoError(t, err)
	assert.Equal(t, 10, available)

	// The release committed, so the sweep has nothing left to do.
	leftover, err := env.repo.GetExpiredHolds(context.Background(), env.clock(), 0)
	require.NoError(t, err)
	assert.Empty(t, leftover)
}

func TestConfirmCapacityShortfallReleasesHold(t *testing.T) {
	env := newTestEnv(t)
	start := env.clock()
	slotID := env.createSlot(t, 10, start.Add(4*time.Hour))

	first := env.acquire(t, uuid.New(), slotID, 8)
	env.advance(5 * time.Minute)

	// The first hold lapsed, so its seats were re-admitted to a second hold.
	env.acquire(t, uuid.New(), slotID, 8)

	// Confirm the first hold at an instant where its own lock is still valid
	// but the second hold has claimed the seats.
	settled, err := env.repo.ConfirmWithCapacityCheck(context.Background(), first.ID, start.Add(2*time.Minute))
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 8, capErr.Requested)
	assert.Equal(t, 2, capErr.Available)
	require.NotNil(t, settled)
	assert.Equal(t, StatusFailed, settled.Status)

	// The release committed despite the capacity error: the row no longer
	// counts toward the locked total.
	var row Reservation
	require.NoError(t, env.db.First(&row, "id = ?", first.ID).Error)
	assert.Equal(t, StatusFailed, row.Status)
	assert.False(t, row.Locked)

	available, err := env.repo.SlotAvailability(context.Background(), slotID, start.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, available)
}

func TestTwoHoldsThirdRejectedThenBothConfirm(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.createSlot(t, 10, env.clock().Add(4*time.Hour))
	userA := uuid.New()
	userB := uuid.New()

	holdA := env.acquire(t, userA, slotID, 6)
	holdB := env.acquire(t, userB, slotID, 4)

	_, err := env.svc.AcquireHold(context.Background(), uuid.New(), AcquireRequest{SlotID: slotID, Guests: 2})
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 0, capErr.Available)

	// Confirming must not double-count the hold's own locked seats.
	_, err = env.svc.Confirm(context.Background(), holdA.ID, userA)
	require.NoError(t, err)
	_, err = env.svc.Confirm(context.Background(), holdB.ID, userB)
	require.NoError(t, err)

	available, err := env.svc.Availability(context.Background(), slotID)
	require.NoError(t, err)
	assert.Equal(t, 0, available)
}

func TestFailIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.createSlot(t, 10, env.clock().Add(4*time.Hour))
	userID := uuid.New()

	held := env.acquire(t, userID, slotID, 4)

	first, err := env.svc.Fail(context.Background(), held.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, first.Status)

	second, err := env.svc.Fail(context.Background(), held.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, second.Status)

	available, err := env.svc.Availability(context.Background(), slotID)
	require.NoError(t, err)
	assert.Equal(t, 10, available)
}

func TestFailConfirmedRejected(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.createSlot(t, 10, env.clock().Add(4*time.Hour))
	userID := uuid.New()

	held := env.acquire(t, userID, slotID, 4)
	_, err := env.svc.Confirm(context.Background(), held.ID, userID)
	require.NoError(t, err)

	_, err = env.svc.Fail(context.Background(), held.ID, userID)
	var stateErr *StateTransitionError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, StatusConfirmed, stateErr.From)
	assert.Equal(t, StatusFailed, stateErr.To)
}

func TestSweepExpiredRestoresAvailability(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.createSlot(t, 10, env.clock().Add(4*time.Hour))

	env.acquire(t, uuid.New(), slotID, 4)
	env.acquire(t, uuid.New(), slotID, 3)

	env.advance(5 * time.Minute)

	count, err := env.svc.SweepExpired(context.Background(), env.clock())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	available, err := env.svc.Availability(context.Background(), slotID)
	require.NoError(t, err)
	assert.Equal(t, 10, available)

	// Each released hold tells the owner.
	assert.Equal(t, 2, env.publisher.expiredCount())

	// Sweeping again finds nothing.
	count, err = env.svc.SweepExpired(context.Background(), env.clock())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestExpiredHoldFreesSeatsBeforeSweep(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.createSlot(t, 10, env.clock().Add(4*time.Hour))

	env.acquire(t, uuid.New(), slotID, 8)
	env.advance(5 * time.Minute)

	// The reaper has not run, but derived availability already ignores the
	// expired lock.
	res, err := env.svc.AcquireHold(context.Background(), uuid.New(), AcquireRequest{SlotID: slotID, Guests: 8})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, res.Status)
}

func TestCancelRefundEligible(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.createSlot(t, 10, env.clock().Add(3*time.Hour))
	userID := uuid.New()

	held := env.acquire(t, userID, slotID, 4)
	_, err := env.svc.Confirm(context.Background(), held.ID, userID)
	require.NoError(t, err)

	result, err := env.svc.Cancel(context.Background(), held.ID, userID)
	require.NoError(t, err)
	assert.True(t, result.RefundEligible)
	assert.Equal(t, "800.00", result.RefundAmount.StringFixed(2))
	assert.Equal(t, StatusCancelled, result.Reservation.Status)
	require.NotNil(t, result.Reservation.CancelledAt)

	require.Equal(t, 1, env.publisher.count())
	assert.Equal(t, held.ID, env.publisher.published[0].ReservationID)
	assert.Equal(t, "800.00", env.publisher.published[0].Amount.StringFixed(2))
}

func TestCancelLateNotRefundEligible(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.createSlot(t, 10, env.clock().Add(1*time.Hour))
	userID := uuid.New()

	held := env.acquire(t, userID, slotID, 4)
	_, err := env.svc.Confirm(context.Background(), held.ID, userID)
	require.NoError(t, err)

	// Late cancellation still goes through; it just forfeits the advance.
	result, err := env.svc.Cancel(context.Background(), held.ID, userID)
	require.NoError(t, err)
	assert.False(t, result.RefundEligible)
	assert.Equal(t, "0.00", result.RefundAmount.StringFixed(2))
	assert.Equal(t, StatusCancelled, result.Reservation.Status)
	assert.Equal(t, 0, env.publisher.count())

	available, err := env.svc.Availability(context.Background(), slotID)
	require.NoError(t, err)
	assert.Equal(t, 10, available)
}

func TestCancelCutoffBoundary(t *testing.T) {
	env := newTestEnv(t)
	// Slot starts exactly at the cutoff; the >= comparison keeps it eligible.
	slotID := env.createSlot(t, 10, env.clock().Add(2*time.Hour))
	userID := uuid.New()

	held := env.acquire(t, userID, slotID, 2)
	result, err := env.svc.Cancel(context.Background(), held.ID, userID)
	require.NoError(t, err)
	assert.True(t, result.RefundEligible)
}

func TestCancelTwiceRejected(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.createSlot(t, 10, env.clock().Add(4*time.Hour))
	userID := uuid.New()

	held := env.acquire(t, userID, slotID, 4)
	_, err := env.svc.Cancel(context.Background(), held.ID, userID)
	require.NoError(t, err)

	_, err = env.svc.Cancel(context.Background(), held.ID, userID)
	var stateErr *StateTransitionError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, StatusCancelled, stateErr.From)
}

func TestCancelFailedReservationRejected(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.createSlot(t, 10, env.clock().Add(4*time.Hour))
	userID := uuid.New()

	held := env.acquire(t, userID, slotID, 4)
	_, err := env.svc.Fail(context.Background(), held.ID, userID)
	require.NoError(t, err)

	_, err = env.svc.Cancel(context.Background(), held.ID, userID)
	var stateErr *StateTransitionError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, StatusFailed, stateErr.From)
	assert.Equal(t, 0, env.publisher.count())
}

func TestConfirmTerminalRejected(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.createSlot(t, 10, env.clock().Add(4*time.Hour))
	userID := uuid.New()

	held := env.acquire(t, userID, slotID, 4)
	_, err := env.svc.Fail(context.Background(), held.ID, userID)
	require.NoError(t, err)

	_, err = env.svc.Confirm(context.Background(), held.ID, userID)
	var stateErr *StateTransitionError
	require.ErrorAs(t, err, &stateErr)
}

func TestReservationHiddenFromOtherUsers(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.createSlot(t, 10, env.clock().Add(4*time.Hour))
	owner := uuid.New()

	held := env.acquire(t, owner, slotID, 4)

	_, err := env.svc.Confirm(context.Background(), held.ID, uuid.New())
	assert.ErrorIs(t, err, ErrReservationNotFound)

	_, err = env.svc.GetReservation(context.Background(), held.ID, uuid.New())
	assert.ErrorIs(t, err, ErrReservationNotFound)

	got, err := env.svc.GetReservation(context.Background(), held.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, held.ID, got.ID)
}

func TestGetUserReservationsOrdered(t *testing.T) {
	env := newTestEnv(t)
	slotA := env.createSlot(t, 10, env.clock().Add(4*time.Hour))
	slotB := env.createSlot(t, 10, env.clock().Add(5*time.Hour))
	userID := uuid.New()

	env.acquire(t, userID, slotA, 2)
	env.acquire(t, userID, slotB, 3)
	env.acquire(t, uuid.New(), slotA, 2)

	list, err := env.svc.GetUserReservations(context.Background(), userID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, r := range list {
		assert.Equal(t, userID, r.UserID)
	}
}
