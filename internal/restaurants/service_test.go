package restaurants

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&Restaurant{}, &PaymentSettings{}))
	return NewService(NewRepository(db))
}

func TestAdvanceRateWithoutSettings(t *testing.T) {
	svc := newTestService(t)

	restaurant, err := svc.CreateRestaurant(context.Background(), uuid.New(), CreateRestaurantRequest{
		Name: "The Blue Door",
	})
	require.NoError(t, err)

	_, err = svc.AdvanceRate(context.Background(), restaurant.ID)
	assert.ErrorIs(t, err, ErrNoPaymentSettings)
}

func TestAdvanceRateAfterSettings(t *testing.T) {
	svc := newTestService(t)

	restaurant, err := svc.CreateRestaurant(context.Background(), uuid.New(), CreateRestaurantRequest{
		Name: "The Blue Door",
	})
	require.NoError(t, err)

	_, err = svc.SetPaymentSettings(context.Background(), restaurant.ID, PaymentSettingsRequest{
		MinAdvanceAmount: decimal.NewFromInt(200),
		UpiID:            "bluedoor@upi",
	})
	require.NoError(t, err)

	rate, err := svc.AdvanceRate(context.Background(), restaurant.ID)
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(200)))
}

func TestSetPaymentSettingsRejectsNegative(t *testing.T) {
	svc := newTestService(t)

	restaurant, err := svc.CreateRestaurant(context.Background(), uuid.New(), CreateRestaurantRequest{
		Name: "The Blue Door",
	})
	require.NoError(t, err)

	_, err = svc.SetPaymentSettings(context.Background(), restaurant.ID, PaymentSettingsRequest{
		MinAdvanceAmount: decimal.NewFromInt(-5),
	})
	assert.Error(t, err)
}

func TestSetPaymentSettingsUpserts(t *testing.T) {
	svc := newTestService(t)

	restaurant, err := svc.CreateRestaurant(context.Background(), uuid.New(), CreateRestaurantRequest{
		Name: "The Blue Door",
	})
	require.NoError(t, err)

	_, err = svc.SetPaymentSettings(context.Background(), restaurant.ID, PaymentSettingsRequest{
		MinAdvanceAmount: decimal.NewFromInt(150),
	})
	require.NoError(t, err)

	_, err = svc.SetPaymentSettings(context.Background(), restaurant.ID, PaymentSettingsRequest{
		MinAdvanceAmount: decimal.NewFromInt(250),
	})
	require.NoError(t, err)

	rate, err := svc.AdvanceRate(context.Background(), restaurant.ID)
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(250)))
}
