package slots

import (
	"time"

	"github.com/google/uuid"
)

// SlotResponse is the display shape of a slot, with availability clamped to
// zero for presentation.
type SlotResponse struct {
	ID             uuid.UUID `json:"id"`
	RestaurantID   uuid.UUID `json:"restaurant_id"`
	Date           string    `json:"date"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
}

// ToSlotResponse builds the display shape from a slot and its raw derived
// availability.
func ToSlotResponse(slot *SeatSlot, available int) SlotResponse {
	if available < 0 {
		available = 0
	}
	return SlotResponse{
		ID:             slot.ID,
		RestaurantID:   slot.RestaurantID,
		Date:           slot.Date.Format(time.DateOnly),
		StartTime:      slot.StartTime,
		EndTime:        slot.EndTime,
		TotalSeats:     slot.TotalSeats,
		AvailableSeats: available,
	}
}
