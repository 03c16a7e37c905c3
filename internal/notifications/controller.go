package notifications

import (
	"net/http"
	"strconv"

	"dinely/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetInbox handles GET /api/v1/restaurants/:id/notifications
func (c *Controller) GetInbox(ctx *gin.Context) {
	restaurantID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid restaurant ID", nil)
		return
	}

	unreadOnly := ctx.Query("unread") == "true"
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	list, err := c.service.GetInbox(ctx.Request.Context(), restaurantID, unreadOnly, limit, offset)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to fetch notifications", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Notifications retrieved", gin.H{
		"notifications": list,
		"count":         len(list),
	})
}

// GetUnreadCount handles GET /api/v1/restaurants/:id/notifications/unread-count
func (c *Controller) GetUnreadCount(ctx *gin.Context) {
	restaurantID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid restaurant ID", nil)
		return
	}

	count, err := c.service.UnreadCount(ctx.Request.Context(), restaurantID)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to count notifications", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Unread count retrieved", gin.H{"unread": count})
}

// MarkRead handles PUT /api/v1/notifications/:id/read
func (c *Controller) MarkRead(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid notification ID", nil)
		return
	}

	if err := c.service.MarkRead(ctx.Request.Context(), id); err != nil {
		if err == ErrNotificationNotFound {
			response.Error(ctx, http.StatusNotFound, "Notification not found", nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to mark notification read", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Notification marked read", nil)
}
