package bookings

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrSlotNotFound        = errors.New("seat slot not found")

	// ErrRateNotConfigured means the restaurant has not set an advance rate.
	// A data-setup problem, not a systems failure.
	ErrRateNotConfigured = errors.New("restaurant has no advance rate configured")

	// ErrLockExpired means confirm was attempted after the hold's TTL passed.
	// The caller must acquire a fresh hold.
	ErrLockExpired = errors.New("seat hold has expired")
)

// CapacityError is returned when a slot cannot admit the requested guest
// count. Available carries the clamped-to-zero seat count so callers can
// offer a retry.
type CapacityError struct {
	SlotID    string
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough seats in slot %s: requested %d, available %d",
		e.SlotID, e.Requested, e.Available)
}

// NewCapacityError clamps the raw derived availability for presentation.
func NewCapacityError(slotID string, requested, rawAvailable int) *CapacityError {
	available := rawAvailable
	if available < 0 {
		available = 0
	}
	return &CapacityError{SlotID: slotID, Requested: requested, Available: available}
}

// StateTransitionError is returned when a reservation is driven out of a
// state that does not permit the requested transition.
type StateTransitionError struct {
	From Status
	To   Status
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("invalid reservation transition %s -> %s", e.From, e.To)
}
