package restaurants

import (
	"dinely/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRestaurantRoutes configures all restaurant-related routes
func SetupRestaurantRoutes(rg *gin.RouterGroup, controller *Controller) {
	restaurants := rg.Group("/restaurants")
	{
		restaurants.GET("/:id", controller.GetRestaurant)
	}

	owner := rg.Group("/restaurants")
	owner.Use(middleware.JWTAuth(), middleware.RequireOwner())
	{
		owner.POST("", controller.CreateRestaurant)
		owner.GET("/my", controller.GetMyRestaurants)
		owner.PUT("/:id/payment-settings", controller.SetPaymentSettings)
	}
}
