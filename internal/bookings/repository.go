package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Hold lifecycle. All capacity decisions re-aggregate inside one
	// transaction with the slot row locked, so concurrent requests against
	// the same slot serialize.
	CreateHoldWithCapacityCheck(ctx context.Context, reservation *Reservation, now time.Time) error
	ConfirmWithCapacityCheck(ctx context.Context, id uuid.UUID, now time.Time) (*Reservation, error)
	Release(ctx context.Context, id uuid.UUID, now time.Time) (*Reservation, error)
	Cancel(ctx context.Context, id uuid.UUID, now time.Time) (*Reservation, error)

	// Derived availability; may be negative transiently under race.
	SlotAvailability(ctx context.Context, slotID uuid.UUID, now time.Time) (int, error)

	// Expiry sweep support
	GetExpiredHolds(ctx context.Context, now time.Time, limit int) ([]Reservation, error)

	GetReservationByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	GetUserReservations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Reservation, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// slotRow is the slice of the seat_slots table the ledger needs.
type slotRow struct {
	ID         uuid.UUID `gorm:"column:id"`
	TotalSeats int       `gorm:"column:total_seats"`
}

// withRowLock adds FOR UPDATE where the dialect supports it. SQLite has no
// row locks; its single-writer model already serializes the transaction.
func withRowLock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *repository) CreateHoldWithCapacityCheck(ctx context.Context, reservation *Reservation, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := r.lockSlot(tx, reservation.SlotID)
		if err != nil {
			return err
		}

		available, err := r.availableInTx(tx, slot, now, nil)
		if err != nil {
			return err
		}

		if available < reservation.Guests {
			return NewCapacityError(slot.ID.String(), reservation.Guests, available)
		}

		if err := tx.Create(reservation).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		return nil
	})
}

func (r *repository) ConfirmWithCapacityCheck(ctx context.Context, id uuid.UUID, now time.Time) (*Reservation, error) {
	var reservation Reservation

	// A settle-to-failed release must commit even though the confirm itself
	// fails, so those outcomes return nil from the callback and surface the
	// error after the transaction.
	var settleErr error
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := withRowLock(tx).Where("id = ?", id).First(&reservation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("failed to lock reservation: %w", err)
		}

		if reservation.Status != StatusPending {
			return &StateTransitionError{From: reservation.Status, To: StatusConfirmed}
		}

		// An expired hold never confirms; it settles as failed without a
		// capacity check.
		if reservation.IsLockExpired(now) {
			if err := r.releaseInTx(tx, &reservation, now); err != nil {
				return err
			}
			settleErr = ErrLockExpired
			return nil
		}

		slot, err := r.lockSlot(tx, reservation.SlotID)
		if err != nil {
			return err
		}

		// The hold's own locked contribution must not count against itself.
		available, err := r.availableInTx(tx, slot, now, &reservation.ID)
		if err != nil {
			return err
		}

		if available < reservation.Guests {
			if err := r.releaseInTx(tx, &reservation, now); err != nil {
				return err
			}
			settleErr = NewCapacityError(slot.ID.String(), reservation.Guests, available)
			return nil
		}

		updates := map[string]interface{}{
			"status":      StatusConfirmed,
			"locked":      false,
			"lock_expiry": nil,
			"updated_at":  now,
		}
		if err := tx.Model(&reservation).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to confirm reservation: %w", err)
		}
		reservation.Status = StatusConfirmed
		reservation.Locked = false
		reservation.LockExpiry = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	if settleErr != nil {
		// The failed settlement is still useful to the caller.
		return &reservation, settleErr
	}
	return &reservation, nil
}

func (r *repository) Release(ctx context.Context, id uuid.UUID, now time.Time) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := withRowLock(tx).Where("id = ?", id).First(&reservation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("failed to lock reservation: %w", err)
		}

		switch reservation.Status {
		case StatusFailed:
			// Releasing twice is a no-op.
			return nil
		case StatusPending:
			return r.releaseInTx(tx, &reservation, now)
		default:
			return &StateTransitionError{From: reservation.Status, To: StatusFailed}
		}
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) Cancel(ctx context.Context, id uuid.UUID, now time.Time) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := withRowLock(tx).Where("id = ?", id).First(&reservation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("failed to lock reservation: %w", err)
		}

		if !reservation.Status.CanTransitionTo(StatusCancelled) {
			return &StateTransitionError{From: reservation.Status, To: StatusCancelled}
		}

		updates := map[string]interface{}{
			"status":       StatusCancelled,
			"locked":       false,
			"lock_expiry":  nil,
			"cancelled_at": now,
			"updated_at":   now,
		}
		if err := tx.Model(&reservation).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to cancel reservation: %w", err)
		}
		reservation.Status = StatusCancelled
		reservation.Locked = false
		reservation.LockExpiry = nil
		reservation.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) SlotAvailability(ctx context.Context, slotID uuid.UUID, now time.Time) (int, error) {
	var available int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slot slotRow
		err := tx.Table("seat_slots").
			Select("id, total_seats").
			Where("id = ?", slotID).
			First(&slot).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("failed to load slot: %w", err)
		}

		available, err = r.availableInTx(tx, &slot, now, nil)
		return err
	})
	return available, err
}

func (r *repository) GetExpiredHolds(ctx context.Context, now time.Time, limit int) ([]Reservation, error) {
	var expired []Reservation
	query := r.db.WithContext(ctx).
		Where("locked = ? AND status = ? AND lock_expiry < ?", true, StatusPending, now).
		Order("lock_expiry ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&expired).Error
	return expired, err
}

func (r *repository) GetReservationByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) GetUserReservations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Reservation, error) {
	if limit <= 0 {
		limit = 10
	}
	var list []Reservation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error
	return list, err
}

// lockSlot locks the slot row for the rest of the transaction, serializing
// concurrent admission decisions per slot.
func (r *repository) lockSlot(tx *gorm.DB, slotID uuid.UUID) (*slotRow, error) {
	var slot slotRow
	err := withRowLock(tx).
		Table("seat_slots").
		Select("id, total_seats").
		Where("id = ?", slotID).
		First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to lock slot: %w", err)
	}
	return &slot, nil
}

// availableInTx derives availability: total seats minus confirmed guests
// minus guests on still-valid holds. Expired-but-unreaped holds do not
// count. The raw value may be negative; callers compare before clamping.
func (r *repository) availableInTx(tx *gorm.DB, slot *slotRow, now time.Time, exclude *uuid.UUID) (int, error) {
	var confirmed int
	err := tx.Model(&Reservation{}).
		Where("slot_id = ? AND status = ?", slot.ID, StatusConfirmed).
		Select("COALESCE(SUM(guests), 0)").
		Scan(&confirmed).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum confirmed guests: %w", err)
	}

	lockedQuery := tx.Model(&Reservation{}).
		Where("slot_id = ? AND locked = ? AND status = ? AND lock_expiry > ?",
			slot.ID, true, StatusPending, now)
	if exclude != nil {
		lockedQuery = lockedQuery.Where("id <> ?", *exclude)
	}

	var locked int
	err = lockedQuery.
		Select("COALESCE(SUM(guests), 0)").
		Scan(&locked).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum locked guests: %w", err)
	}

	return slot.TotalSeats - (confirmed + locked), nil
}

// releaseInTx settles a hold as failed. Availability is derived, so the
// seats come back simply because the row stops counting toward locked_total.
func (r *repository) releaseInTx(tx *gorm.DB, reservation *Reservation, now time.Time) error {
	updates := map[string]interface{}{
		"status":      StatusFailed,
		"locked":      false,
		"lock_expiry": nil,
		"updated_at":  now,
	}
	if err := tx.Model(reservation).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to release reservation: %w", err)
	}
	reservation.Status = StatusFailed
	reservation.Locked = false
	reservation.LockExpiry = nil
	return nil
}
