package offers

import (
	"dinely/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupOfferRoutes configures all offer-related routes
func SetupOfferRoutes(rg *gin.RouterGroup, controller *Controller) {
	public := rg.Group("/restaurants")
	{
		public.GET("/:id/offers", controller.GetRestaurantOffers)
	}

	owner := rg.Group("")
	owner.Use(middleware.JWTAuth(), middleware.RequireOwner())
	{
		owner.POST("/restaurants/:id/offers", controller.CreateOffer)
		owner.PUT("/offers/:id", controller.UpdateOffer)
		owner.DELETE("/offers/:id", controller.DeleteOffer)
	}
}
