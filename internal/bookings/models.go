package bookings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reservation is one guest party's claim against a seat slot. It starts as a
// locked pending hold and settles into exactly one terminal state. Guest
// count and advance amount never change after creation.
type Reservation struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	RestaurantID uuid.UUID  `gorm:"type:uuid;index;not null" json:"restaurant_id"`
	SlotID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"slot_id"`
	OfferID      *uuid.UUID `gorm:"type:uuid" json:"offer_id,omitempty"`

	Guests     int             `gorm:"not null;check:guests > 0" json:"guests"`
	AdvanceDue decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"advance_due"`

	Status     Status     `gorm:"type:varchar(20);index;default:'PENDING'" json:"status"`
	Locked     bool       `gorm:"default:true;index" json:"locked"`
	LockExpiry *time.Time `gorm:"index" json:"lock_expiry,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// IsLockExpired reports whether the hold's TTL has passed.
func (r *Reservation) IsLockExpired(now time.Time) bool {
	return r.Locked && r.LockExpiry != nil && now.After(*r.LockExpiry)
}

// IsPending reports whether the reservation is still an unsettled hold.
func (r *Reservation) IsPending() bool {
	return r.Status == StatusPending
}

// IsConfirmed reports whether the reservation holds settled seats.
func (r *Reservation) IsConfirmed() bool {
	return r.Status == StatusConfirmed
}

// IsCancelled reports whether the reservation was cancelled.
func (r *Reservation) IsCancelled() bool {
	return r.Status == StatusCancelled
}

// BeforeCreate assigns the ID when the caller has not.
func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
