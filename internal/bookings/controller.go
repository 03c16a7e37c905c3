package bookings

import (
	"errors"
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

// AcquireHold handles POST /api/v1/reservations
func (c *Controller) AcquireHold(ctx *gin.Context) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return
	}

	var body AcquireHoldRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	req, err := body.ToAcquireRequest()
	if err != nil {
		response.BadRequest(ctx, "Invalid identifier", err.Error())
		return
	}

	reservation, err := c.service.AcquireHold(ctx.Request.Context(), userID, req)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Seat hold acquired", reservation)
}

// Confirm handles POST /api/v1/reservations/:id/confirm
func (c *Controller) Confirm(ctx *gin.Context) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid reservation ID", nil)
		return
	}

	reservation, err := c.service.Confirm(ctx.Request.Context(), id, userID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Reservation confirmed", reservation)
}

// Fail handles POST /api/v1/reservations/:id/fail
func (c *Controller) Fail(ctx *gin.Context) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid reservation ID", nil)
		return
	}

	reservation, err := c.service.Fail(ctx.Request.Context(), id, userID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Reservation released", reservation)
}

// Cancel handles POST /api/v1/reservations/:id/cancel
func (c *Controller) Cancel(ctx *gin.Context) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid reservation ID", nil)
		return
	}

	result, err := c.service.Cancel(ctx.Request.Context(), id, userID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Reservation cancelled", result)
}

// GetReservation handles GET /api/v1/reservations/:id
func (c *Controller) GetReservation(ctx *gin.Context) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid reservation ID", nil)
		return
	}

	reservation, err := c.service.GetReservation(ctx.Request.Context(), id, userID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Reservation retrieved", reservation)
}

// GetMyReservations handles GET /api/v1/reservations
func (c *Controller) GetMyReservations(ctx *gin.Context) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	list, err := c.service.GetUserReservations(ctx.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list reservations", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Reservations retrieved", gin.H{
		"reservations": list,
		"count":        len(list),
	})
}

// respondError maps domain errors onto HTTP statuses.
func (c *Controller) respondError(ctx *gin.Context, err error) {
	var capErr *CapacityError
	var stateErr *StateTransitionError

	switch {
	case errors.As(err, &capErr):
		response.Error(ctx, http.StatusConflict, "Not enough seats available", gin.H{
			"slot_id":   capErr.SlotID,
			"requested": capErr.Requested,
			"available": capErr.Available,
		})
	case errors.As(err, &stateErr):
		response.Error(ctx, http.StatusConflict, "Invalid reservation state", stateErr.Error())
	case errors.Is(err, ErrLockExpired):
		response.Error(ctx, http.StatusGone, "Seat hold has expired", nil)
	case errors.Is(err, ErrRateNotConfigured):
		response.Error(ctx, http.StatusUnprocessableEntity, "Restaurant has no advance rate configured", nil)
	case errors.Is(err, ErrReservationNotFound):
		response.Error(ctx, http.StatusNotFound, "Reservation not found", nil)
	case errors.Is(err, ErrSlotNotFound):
		response.Error(ctx, http.StatusNotFound, "Seat slot not found", nil)
	default:
		response.Error(ctx, http.StatusInternalServerError, "Reservation operation failed", err.Error())
	}
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
