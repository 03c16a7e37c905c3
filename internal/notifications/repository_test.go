package notifications

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dinely/pkg/logger"
)

func newTestRepository(t *testing.T) Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&Notification{}))
	return NewRepository(db)
}

func TestDirectPublisherStoresDeliveredInboxRow(t *testing.T) {
	repo := newTestRepository(t)
	publisher := NewDirectPublisher(repo, logger.New())

	req := &RefundRequest{
		ReservationID: uuid.New(),
		RestaurantID:  uuid.New(),
		UserID:        uuid.New(),
		Amount:        decimal.RequireFromString("800.00"),
		SlotStart:     time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC),
		RequestedAt:   time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.PublishRefundRequest(context.Background(), req))

	list, err := repo.GetByRestaurant(context.Background(), req.RestaurantID, false, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	row := list[0]
	assert.Equal(t, NotificationTypeRefundRequest, row.Type)
	assert.Equal(t, NotificationStatusDelivered, row.Status)
	require.NotNil(t, row.ReservationID)
	assert.Equal(t, req.ReservationID, *row.ReservationID)
	assert.Contains(t, row.Message, "800.00")
	assert.Contains(t, row.Message, req.ReservationID.String())
	assert.False(t, row.IsRead)
}

func TestRefundRequestDescribe(t *testing.T) {
	req := &RefundRequest{
		ReservationID: uuid.MustParse("6f1b0cc8-6f3f-4a06-9a3f-1be1c9a3d001"),
		Amount:        decimal.RequireFromString("149.5"),
		SlotStart:     time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC),
	}

	msg := req.Describe()
	assert.Contains(t, msg, "149.50")
	assert.Contains(t, msg, "6f1b0cc8-6f3f-4a06-9a3f-1be1c9a3d001")
	assert.Contains(t, msg, "2026-03-14T19:00:00Z")
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	repo := newTestRepository(t)
	restaurantID := uuid.New()

	first := &Notification{
		RestaurantID: restaurantID,
		Type:         NotificationTypeRefundRequest,
		Message:      "refund one",
		Status:       NotificationStatusDelivered,
	}
	second := &Notification{
		RestaurantID: restaurantID,
		Type:         NotificationTypeHoldExpired,
		Message:      "hold expired",
		Status:       NotificationStatusDelivered,
	}
	require.NoError(t, repo.Create(context.Background(), first))
	require.NoError(t, repo.Create(context.Background(), second))

	count, err := repo.CountUnread(context.Background(), restaurantID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, repo.MarkRead(context.Background(), first.ID))

	count, err = repo.CountUnread(context.Background(), restaurantID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	unread, err := repo.GetByRestaurant(context.Background(), restaurantID, true, 0, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, second.ID, unread[0].ID)
}

func TestMarkReadUnknownNotification(t *testing.T) {
	repo := newTestRepository(t)

	err := repo.MarkRead(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestGetByIDUnknownNotification(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}
