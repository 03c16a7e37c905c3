package bookings

import (
	"dinely/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all reservation routes. Everything here
// requires an authenticated customer.
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	reservations := rg.Group("/reservations")
	reservations.Use(middleware.JWTAuth())
	{
		reservations.POST("", controller.AcquireHold)
		reservations.GET("", controller.GetMyReservations)
		reservations.GET("/:id", controller.GetReservation)
		reservations.POST("/:id/confirm", controller.Confirm)
		reservations.POST("/:id/fail", controller.Fail)
		reservations.POST("/:id/cancel", controller.Cancel)
	}
}
