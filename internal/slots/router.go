package slots

import (
	"dinely/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupSlotRoutes configures all slot-related routes
func SetupSlotRoutes(rg *gin.RouterGroup, controller *Controller) {
	public := rg.Group("")
	{
		public.GET("/restaurants/:id/slots", controller.GetSlots)
		public.GET("/slots/:id/availability", controller.GetSlotAvailability)
	}

	owner := rg.Group("/restaurants")
	owner.Use(middleware.JWTAuth(), middleware.RequireOwner())
	{
		owner.PUT("/:id/seat-schedule", controller.SetSchedule)
		owner.POST("/:id/slots/generate", controller.GenerateSlots)
	}
}
