package database

import (
	"dinely/internal/bookings"
	"dinely/internal/notifications"
	"dinely/internal/offers"
	"dinely/internal/restaurants"
	"dinely/internal/slots"
	"dinely/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&restaurants.Restaurant{},
		&restaurants.PaymentSettings{},
		&slots.SeatSchedule{},
		&slots.SeatSlot{},
		&offers.Offer{},
		&bookings.Reservation{},
		&notifications.Notification{},
	)
}
