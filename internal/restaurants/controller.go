package restaurants

import (
	"net/http"

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

// CreateRestaurant handles POST /api/v1/restaurants
func (c *Controller) CreateRestaurant(ctx *gin.Context) {
	ownerID, ok := userIDFromContext(ctx)
	if !ok {
		return
	}

	var req CreateRestaurantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	restaurant, err := c.service.CreateRestaurant(ctx.Request.Context(), ownerID, req)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to create restaurant", err.Error())
		return
	}

	response.Success(ctx, http.StatusCreated, "Restaurant created", restaurant)
}

// GetMyRestaurants handles GET /api/v1/restaurants/my
func (c *Controller) GetMyRestaurants(ctx *gin.Context) {
	ownerID, ok := userIDFromContext(ctx)
	if !ok {
		return
	}

	restaurants, err := c.service.GetOwnerRestaurants(ctx.Request.Context(), ownerID)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to fetch restaurants", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Restaurants retrieved", restaurants)
}

// GetRestaurant handles GET /api/v1/restaurants/:id
func (c *Controller) GetRestaurant(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid restaurant ID", nil)
		return
	}

	restaurant, err := c.service.GetRestaurant(ctx.Request.Context(), id)
	if err != nil {
		response.Error(ctx, http.StatusNotFound, "Restaurant not found", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Restaurant retrieved", restaurant)
}

// SetPaymentSettings handles PUT /api/v1/restaurants/:id/payment-settings
func (c *Controller) SetPaymentSettings(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid restaurant ID", nil)
		return
	}

	var req PaymentSettingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	settings, err := c.service.SetPaymentSettings(ctx.Request.Context(), id, req)
	if err != nil {
		response.Error(ctx, http.StatusUnprocessableEntity, "Failed to save payment settings", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Payment settings saved", settings)
}

func userIDFromContext(ctx *gin.Context) (uuid.UUID, bool) {
	raw, exists := ctx.Get("user_id")
	if !exists {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return uuid.Nil, false
	}

	str, ok := raw.(string)
	if !ok {
		response.Error(ctx, http.StatusInternalServerError, "Invalid user ID format", nil)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(str)
	if err != nil {
		response.BadRequest(ctx, "Invalid user ID", nil)
		return uuid.Nil, false
	}
	return id, true
}
