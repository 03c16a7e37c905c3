package notifications

import (
	"dinely/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupNotificationRoutes configures the owner inbox routes
func SetupNotificationRoutes(rg *gin.RouterGroup, controller *Controller) {
	owner := rg.Group("")
	owner.Use(middleware.JWTAuth(), middleware.RequireOwner())
	{
		owner.GET("/restaurants/:id/notifications", controller.GetInbox)
		owner.GET("/restaurants/:id/notifications/unread-count", controller.GetUnreadCount)
		owner.PUT("/notifications/:id/read", controller.MarkRead)
	}
}
