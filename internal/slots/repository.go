package slots

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	UpsertSchedule(ctx context.Context, schedule *SeatSchedule) error
	GetScheduleByRestaurant(ctx context.Context, restaurantID uuid.UUID) (*SeatSchedule, error)

	GetSlotByID(ctx context.Context, id uuid.UUID) (*SeatSlot, error)
	GetSlotsByRestaurantAndDate(ctx context.Context, restaurantID uuid.UUID, date time.Time) ([]SeatSlot, error)

	// ReplaceSlotsForDate drops any slots already generated for the date and
	// inserts the new batch in one transaction.
	ReplaceSlotsForDate(ctx context.Context, restaurantID uuid.UUID, date time.Time, slots []SeatSlot) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) UpsertSchedule(ctx context.Context, schedule *SeatSchedule) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "restaurant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_seats", "start_time", "end_time", "interval_minutes", "updated_at"}),
		}).
		Create(schedule).Error
}

func (r *repository) GetScheduleByRestaurant(ctx context.Context, restaurantID uuid.UUID) (*SeatSchedule, error) {
	var schedule SeatSchedule
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *repository) GetSlotByID(ctx context.Context, id uuid.UUID) (*SeatSlot, error) {
	var slot SeatSlot
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *repository) GetSlotsByRestaurantAndDate(ctx context.Context, restaurantID uuid.UUID, date time.Time) ([]SeatSlot, error) {
	var list []SeatSlot
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND date = ?", restaurantID, date).
		Order("start_time ASC").
		Find(&list).Error
	return list, err
}

func (r *repository) ReplaceSlotsForDate(ctx context.Context, restaurantID uuid.UUID, date time.Time, slots []SeatSlot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("restaurant_id = ? AND date = ?", restaurantID, date).
			Delete(&SeatSlot{}).Error; err != nil {
			return err
		}
		if len(slots) == 0 {
			return nil
		}
		return tx.Create(&slots).Error
	})
}
