package slots

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeatSchedule is the recurring capacity pattern a restaurant defines. Slots
// for a concrete date are batch-generated from it.
type SeatSchedule struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"restaurant_id"`
	TotalSeats      int       `gorm:"not null;check:total_seats >= 0" json:"total_seats"`
	StartTime       string    `gorm:"size:5;not null" json:"start_time"` // HH:MM
	EndTime         string    `gorm:"size:5;not null" json:"end_time"`   // HH:MM
	IntervalMinutes int       `gorm:"not null;check:interval_minutes > 0" json:"interval_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SeatSlot is one bookable capacity window. TotalSeats is fixed at creation;
// consumption is always derived from reservations, never stored here.
type SeatSlot struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID uuid.UUID `gorm:"type:uuid;index:idx_slot_window,unique;not null" json:"restaurant_id"`
	Date         time.Time `gorm:"type:date;index:idx_slot_window,unique;not null" json:"date"`
	StartTime    string    `gorm:"size:5;index:idx_slot_window,unique;not null" json:"start_time"` // HH:MM
	EndTime      string    `gorm:"size:5;not null" json:"end_time"`                                // HH:MM
	TotalSeats   int       `gorm:"not null;check:total_seats >= 0" json:"total_seats"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (SeatSchedule) TableName() string {
	return "seat_schedules"
}

func (SeatSlot) TableName() string {
	return "seat_slots"
}

// StartDateTime combines the slot's date and start time into one instant in
// the given location.
func (s *SeatSlot) StartDateTime(loc *time.Location) (time.Time, error) {
	clock, err := time.Parse("15:04", s.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot start time %q: %w", s.StartTime, err)
	}
	d := s.Date
	return time.Date(d.Year(), d.Month(), d.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

// BeforeCreate assigns the ID when the caller has not.
func (s *SeatSchedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// BeforeCreate assigns the ID when the caller has not.
func (s *SeatSlot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
