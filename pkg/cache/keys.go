package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// Key builders. Availability entries are keyed per slot so a write against
// one slot invalidates only that slot's cached value.

func SlotAvailabilityKey(slotID uuid.UUID) string {
	return fmt.Sprintf("availability:slot:%s", slotID)
}

func RestaurantSlotsKey(restaurantID uuid.UUID, date string) string {
	return fmt.Sprintf("slots:restaurant:%s:%s", restaurantID, date)
}
