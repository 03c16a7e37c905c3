package restaurants

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Restaurant is the owning resource for slots, offers and reservations.
type Restaurant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Address   string    `gorm:"size:500" json:"address"`
	Phone     string    `gorm:"size:20" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	PaymentSettings *PaymentSettings `json:"payment_settings,omitempty" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE;"`
}

// PaymentSettings holds the per-guest advance rate a restaurant charges to
// hold seats. A restaurant without payment settings cannot take seat holds.
type PaymentSettings struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID     uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"restaurant_id"`
	MinAdvanceAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"min_advance_amount"`
	UpiID            string          `gorm:"size:255" json:"upi_id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (Restaurant) TableName() string {
	return "restaurants"
}

func (PaymentSettings) TableName() string {
	return "payment_settings"
}

// BeforeCreate assigns the ID when the caller has not.
func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeCreate assigns the ID when the caller has not.
func (p *PaymentSettings) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
