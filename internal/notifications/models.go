package notifications

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypeRefundRequest NotificationType = "REFUND_REQUEST"
	NotificationTypeHoldExpired   NotificationType = "HOLD_EXPIRED"
)

type NotificationStatus string

const (
	NotificationStatusQueued    NotificationStatus = "QUEUED"
	NotificationStatusDelivered NotificationStatus = "DELIVERED"
	NotificationStatusFailed    NotificationStatus = "FAILED"
)

// Notification is the persisted inbox record a restaurant owner sees. The
// refund itself happens out of band; this row is the owner's work item.
type Notification struct {
	ID            uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID  uuid.UUID          `gorm:"type:uuid;index;not null" json:"restaurant_id"`
	ReservationID *uuid.UUID         `gorm:"type:uuid;index" json:"reservation_id,omitempty"`
	Type          NotificationType   `gorm:"size:32;not null" json:"type"`
	Message       string             `gorm:"type:text;not null" json:"message"`
	Status        NotificationStatus `gorm:"size:16;not null;default:QUEUED" json:"status"`
	IsRead        bool               `gorm:"default:false" json:"is_read"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// RefundRequest is the wire payload published when a refund-eligible
// cancellation happens.
type RefundRequest struct {
	ReservationID uuid.UUID       `json:"reservation_id"`
	RestaurantID  uuid.UUID       `json:"restaurant_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	SlotStart     time.Time       `json:"slot_start"`
	RequestedAt   time.Time       `json:"requested_at"`
}

func (r *RefundRequest) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// PartitionKey routes all of a restaurant's notifications to one partition
// so an owner's inbox stays ordered.
func (r *RefundRequest) PartitionKey() string {
	return r.RestaurantID.String()
}

// Describe renders the human-readable inbox message.
func (r *RefundRequest) Describe() string {
	return fmt.Sprintf("Refund of %s requested for reservation %s (slot starts %s)",
		r.Amount.StringFixed(2), r.ReservationID, r.SlotStart.Format(time.RFC3339))
}

// HoldExpiredNotice is published when the sweep releases a hold whose TTL
// lapsed without settlement.
type HoldExpiredNotice struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	RestaurantID  uuid.UUID `json:"restaurant_id"`
	UserID        uuid.UUID `json:"user_id"`
	SlotID        uuid.UUID `json:"slot_id"`
	ExpiredAt     time.Time `json:"expired_at"`
}

func (n *HoldExpiredNotice) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

func (n *HoldExpiredNotice) PartitionKey() string {
	return n.RestaurantID.String()
}

func (n *HoldExpiredNotice) Describe() string {
	return fmt.Sprintf("Seat hold for reservation %s expired at %s and was released",
		n.ReservationID, n.ExpiredAt.Format(time.RFC3339))
}

// BeforeCreate assigns the ID when the caller has not.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
