package slots

import (
	"context"
	"net/http"
	"time"

	"dinely/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AvailabilityReader reports derived availability for a slot (to avoid a
// circular dependency on the bookings package).
type AvailabilityReader interface {
	Availability(ctx context.Context, slotID uuid.UUID) (int, error)
}

type Controller struct {
	service      Service
	availability AvailabilityReader
}

func NewController(service Service, availability AvailabilityReader) *Controller {
	return &Controller{service: service, availability: availability}
}

// SetSchedule handles PUT /api/v1/restaurants/:id/seat-schedule
func (c *Controller) SetSchedule(ctx *gin.Context) {
	restaurantID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid restaurant ID", nil)
		return
	}

	var req ScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	schedule, err := c.service.SetSchedule(ctx.Request.Context(), restaurantID, req)
	if err != nil {
		response.Error(ctx, http.StatusUnprocessableEntity, "Failed to save schedule", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Schedule saved", schedule)
}

// GenerateSlots handles POST /api/v1/restaurants/:id/slots/generate
func (c *Controller) GenerateSlots(ctx *gin.Context) {
	restaurantID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid restaurant ID", nil)
		return
	}

	var req GenerateSlotsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		response.BadRequest(ctx, "Invalid date", err.Error())
		return
	}

	generated, err := c.service.GenerateSlots(ctx.Request.Context(), restaurantID, date)
	if err != nil {
		response.Error(ctx, http.StatusUnprocessableEntity, "Failed to generate slots", err.Error())
		return
	}

	response.Success(ctx, http.StatusCreated, "Slots generated", generated)
}

// GetSlots handles GET /api/v1/restaurants/:id/slots?date=YYYY-MM-DD
func (c *Controller) GetSlots(ctx *gin.Context) {
	restaurantID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid restaurant ID", nil)
		return
	}

	dateStr := ctx.DefaultQuery("date", time.Now().Format(time.DateOnly))
	date, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		response.BadRequest(ctx, "Invalid date", err.Error())
		return
	}

	slotList, err := c.service.GetSlots(ctx.Request.Context(), restaurantID, date)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list slots", err.Error())
		return
	}

	results := make([]SlotResponse, 0, len(slotList))
	for i := range slotList {
		available, err := c.availability.Availability(ctx.Request.Context(), slotList[i].ID)
		if err != nil {
			response.Error(ctx, http.StatusInternalServerError, "Failed to compute availability", err.Error())
			return
		}
		results = append(results, ToSlotResponse(&slotList[i], available))
	}

	response.Success(ctx, http.StatusOK, "Slots retrieved", results)
}

// GetSlotAvailability handles GET /api/v1/slots/:id/availability
func (c *Controller) GetSlotAvailability(ctx *gin.Context) {
	slotID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid slot ID", nil)
		return
	}

	slot, err := c.service.GetSlot(ctx.Request.Context(), slotID)
	if err != nil {
		response.Error(ctx, http.StatusNotFound, "Slot not found", nil)
		return
	}

	available, err := c.availability.Availability(ctx.Request.Context(), slotID)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to compute availability", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Availability retrieved", ToSlotResponse(slot, available))
}
