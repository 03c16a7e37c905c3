package slots

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service interface defines the contract for slot business logic
type Service interface {
	SetSchedule(ctx context.Context, restaurantID uuid.UUID, req ScheduleRequest) (*SeatSchedule, error)
	GetSchedule(ctx context.Context, restaurantID uuid.UUID) (*SeatSchedule, error)

	// GenerateSlots materializes the restaurant's schedule into concrete
	// slots for the given date, replacing anything previously generated.
	GenerateSlots(ctx context.Context, restaurantID uuid.UUID, date time.Time) ([]SeatSlot, error)

	GetSlot(ctx context.Context, id uuid.UUID) (*SeatSlot, error)
	GetSlots(ctx context.Context, restaurantID uuid.UUID, date time.Time) ([]SeatSlot, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) SetSchedule(ctx context.Context, restaurantID uuid.UUID, req ScheduleRequest) (*SeatSchedule, error) {
	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("invalid end time: %w", err)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("end time must be after start time")
	}

	schedule := &SeatSchedule{
		RestaurantID:    restaurantID,
		TotalSeats:      req.TotalSeats,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		IntervalMinutes: req.IntervalMinutes,
	}
	if err := s.repo.UpsertSchedule(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to save seat schedule: %w", err)
	}
	return schedule, nil
}

func (s *service) GetSchedule(ctx context.Context, restaurantID uuid.UUID) (*SeatSchedule, error) {
	return s.repo.GetScheduleByRestaurant(ctx, restaurantID)
}

func (s *service) GenerateSlots(ctx context.Context, restaurantID uuid.UUID, date time.Time) ([]SeatSlot, error) {
	schedule, err := s.repo.GetScheduleByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("no seat schedule defined: %w", err)
	}

	generated, err := buildSlots(schedule, date)
	if err != nil {
		return nil, err
	}

	day := date.Truncate(24 * time.Hour)
	if err := s.repo.ReplaceSlotsForDate(ctx, restaurantID, day, generated); err != nil {
		return nil, fmt.Errorf("failed to store generated slots: %w", err)
	}
	return generated, nil
}

func (s *service) GetSlot(ctx context.Context, id uuid.UUID) (*SeatSlot, error) {
	return s.repo.GetSlotByID(ctx, id)
}

func (s *service) GetSlots(ctx context.Context, restaurantID uuid.UUID, date time.Time) ([]SeatSlot, error) {
	return s.repo.GetSlotsByRestaurantAndDate(ctx, restaurantID, date.Truncate(24*time.Hour))
}

// buildSlots walks the schedule window by interval, one slot per step. The
// last partial interval before the end time is skipped, matching how the
// schedule was defined.
func buildSlots(schedule *SeatSchedule, date time.Time) ([]SeatSlot, error) {
	start, err := time.Parse("15:04", schedule.StartTime)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule start time: %w", err)
	}
	end, err := time.Parse("15:04", schedule.EndTime)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule end time: %w", err)
	}

	interval := time.Duration(schedule.IntervalMinutes) * time.Minute
	if interval <= 0 {
		return nil, fmt.Errorf("schedule interval must be positive")
	}

	day := date.Truncate(24 * time.Hour)
	var generated []SeatSlot
	for cursor := start; cursor.Before(end); cursor = cursor.Add(interval) {
		slotEnd := cursor.Add(interval)
		if slotEnd.After(end) {
			break
		}
		generated = append(generated, SeatSlot{
			RestaurantID: schedule.RestaurantID,
			Date:         day,
			StartTime:    cursor.Format("15:04"),
			EndTime:      slotEnd.Format("15:04"),
			TotalSeats:   schedule.TotalSeats,
		})
	}
	return generated, nil
}
