package offers

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

// CreateOffer handles POST /api/v1/restaurants/:id/offers
func (c *Controller) CreateOffer(ctx *gin.Context) {
	restaurantID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid restaurant ID", nil)
		return
	}

	var req OfferRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	offer, err := c.service.CreateOffer(ctx.Request.Context(), restaurantID, req)
	if err != nil {
		response.Error(ctx, http.StatusUnprocessableEntity, "Failed to create offer", err.Error())
		return
	}

	response.Success(ctx, http.StatusCreated, "Offer created", offer)
}

// GetRestaurantOffers handles GET /api/v1/restaurants/:id/offers
func (c *Controller) GetRestaurantOffers(ctx *gin.Context) {
	restaurantID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid restaurant ID", nil)
		return
	}

	activeOnly := ctx.DefaultQuery("active", "false") == "true"

	offers, err := c.service.GetRestaurantOffers(ctx.Request.Context(), restaurantID, activeOnly)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list offers", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Offers retrieved", offers)
}

// UpdateOffer handles PUT /api/v1/offers/:id
func (c *Controller) UpdateOffer(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid offer ID", nil)
		return
	}

	var req OfferRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	offer, err := c.service.UpdateOffer(ctx.Request.Context(), id, req)
	if err != nil {
		response.Error(ctx, http.StatusUnprocessableEntity, "Failed to update offer", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Offer updated", offer)
}

// DeleteOffer handles DELETE /api/v1/offers/:id
func (c *Controller) DeleteOffer(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid offer ID", nil)
		return
	}

	if err := c.service.DeleteOffer(ctx.Request.Context(), id); err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to delete offer", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Offer deleted", nil)
}
