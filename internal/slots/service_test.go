package slots

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&SeatSchedule{}, &SeatSlot{}))
	return NewService(NewRepository(db)), db
}

func TestBuildSlotsWalksInterval(t *testing.T) {
	schedule := &SeatSchedule{
		RestaurantID:    uuid.New(),
		TotalSeats:      40,
		StartTime:       "10:00",
		EndTime:         "12:00",
		IntervalMinutes: 30,
	}
	date := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	generated, err := buildSlots(schedule, date)
	require.NoError(t, err)
	require.Len(t, generated, 4)

	assert.Equal(t, "10:00", generated[0].StartTime)
	assert.Equal(t, "10:30", generated[0].EndTime)
	assert.Equal(t, "11:30", generated[3].StartTime)
	assert.Equal(t, "12:00", generated[3].EndTime)
	for _, slot := range generated {
		assert.Equal(t, 40, slot.TotalSeats)
		assert.Equal(t, date, slot.Date)
	}
}

func TestBuildSlotsSkipsPartialLastInterval(t *testing.T) {
	schedule := &SeatSchedule{
		RestaurantID:    uuid.New(),
		TotalSeats:      20,
		StartTime:       "10:00",
		EndTime:         "11:15",
		IntervalMinutes: 30,
	}

	generated, err := buildSlots(schedule, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	// 10:00-10:30, 10:30-11:00; the 11:00-11:30 step overruns 11:15.
	require.Len(t, generated, 2)
	assert.Equal(t, "11:00", generated[1].EndTime)
}

func TestBuildSlotsEmptyWindow(t *testing.T) {
	schedule := &SeatSchedule{
		StartTime:       "10:00",
		EndTime:         "10:20",
		IntervalMinutes: 30,
	}
	generated, err := buildSlots(schedule, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, generated)
}

func TestSetScheduleRejectsInvertedWindow(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SetSchedule(context.Background(), uuid.New(), ScheduleRequest{
		TotalSeats:      30,
		StartTime:       "18:00",
		EndTime:         "09:00",
		IntervalMinutes: 30,
	})
	assert.Error(t, err)
}

func TestSetScheduleUpsertsPerRestaurant(t *testing.T) {
	svc, db := newTestService(t)
	restaurantID := uuid.New()

	_, err := svc.SetSchedule(context.Background(), restaurantID, ScheduleRequest{
		TotalSeats:      30,
		StartTime:       "09:00",
		EndTime:         "17:00",
		IntervalMinutes: 60,
	})
	require.NoError(t, err)

	_, err = svc.SetSchedule(context.Background(), restaurantID, ScheduleRequest{
		TotalSeats:      50,
		StartTime:       "10:00",
		EndTime:         "16:00",
		IntervalMinutes: 30,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&SeatSchedule{}).Where("restaurant_id = ?", restaurantID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	schedule, err := svc.GetSchedule(context.Background(), restaurantID)
	require.NoError(t, err)
	assert.Equal(t, 50, schedule.TotalSeats)
	assert.Equal(t, "10:00", schedule.StartTime)
}

func TestGenerateSlotsReplacesExisting(t *testing.T) {
	svc, _ := newTestService(t)
	restaurantID := uuid.New()
	date := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.SetSchedule(context.Background(), restaurantID, ScheduleRequest{
		TotalSeats:      30,
		StartTime:       "10:00",
		EndTime:         "12:00",
		IntervalMinutes: 60,
	})
	require.NoError(t, err)

	first, err := svc.GenerateSlots(context.Background(), restaurantID, date)
	require.NoError(t, err)
	require.Len(t, first, 2)

	// Tighten the schedule and regenerate: the old slots must be replaced.
	_, err = svc.SetSchedule(context.Background(), restaurantID, ScheduleRequest{
		TotalSeats:      10,
		StartTime:       "10:00",
		EndTime:         "11:00",
		IntervalMinutes: 30,
	})
	require.NoError(t, err)

	second, err := svc.GenerateSlots(context.Background(), restaurantID, date)
	require.NoError(t, err)
	require.Len(t, second, 2)

	stored, err := svc.GetSlots(context.Background(), restaurantID, date)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, slot := range stored {
		assert.Equal(t, 10, slot.TotalSeats)
	}
}

func TestGenerateSlotsWithoutSchedule(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GenerateSlots(context.Background(), uuid.New(), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}

func TestSlotStartDateTime(t *testing.T) {
	slot := &SeatSlot{
		Date:      time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		StartTime: "18:30",
	}
	start, err := slot.StartDateTime(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 18, 30, 0, 0, time.UTC), start)
}

func TestToSlotResponseClampsNegative(t *testing.T) {
	slot := &SeatSlot{
		ID:         uuid.New(),
		Date:       time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		StartTime:  "10:00",
		EndTime:    "10:30",
		TotalSeats: 10,
	}
	resp := ToSlotResponse(slot, -3)
	assert.Equal(t, 0, resp.AvailableSeats)

	resp = ToSlotResponse(slot, 7)
	assert.Equal(t, 7, resp.AvailableSeats)
}
