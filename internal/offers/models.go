package offers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Offer is a percentage-off rule applied when pricing a seat hold.
type Offer struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID       uuid.UUID       `gorm:"type:uuid;index;not null" json:"restaurant_id"`
	Title              string          `gorm:"size:255;not null" json:"title"`
	Description        string          `gorm:"type:text" json:"description,omitempty"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount_percentage"`
	ValidFrom          time.Time       `gorm:"type:date;not null" json:"valid_from"`
	ValidUntil         time.Time       `gorm:"type:date;not null" json:"valid_until"`
	StartTime          string          `gorm:"size:5" json:"start_time,omitempty"` // HH:MM, optional
	EndTime            string          `gorm:"size:5" json:"end_time,omitempty"`   // HH:MM, optional
	IsActive           bool            `gorm:"default:true" json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (Offer) TableName() string {
	return "offers"
}

// CurrentlyValid reports whether the offer may be applied at the given
// instant. Both the active flag and the validity window must agree; an offer
// whose window has lapsed is never applied even if the flag was left on.
func (o *Offer) CurrentlyValid(now time.Time) bool {
	if !o.IsActive {
		return false
	}

	today := now.Truncate(24 * time.Hour)
	from := o.ValidFrom.Truncate(24 * time.Hour)
	until := o.ValidUntil.Truncate(24 * time.Hour)

	if today.Before(from) || today.After(until) {
		return false
	}

	// On the final day an offer with an end time lapses once it passes.
	if today.Equal(until) && o.EndTime != "" {
		if endOfDay, err := time.Parse("15:04", o.EndTime); err == nil {
			nowClock := now.Hour()*60 + now.Minute()
			endClock := endOfDay.Hour()*60 + endOfDay.Minute()
			if nowClock > endClock {
				return false
			}
		}
	}

	return true
}

// BeforeCreate assigns the ID when the caller has not.
func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
