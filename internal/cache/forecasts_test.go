package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradecast/tradecast/internal/models"
)

func sampleForecast() *models.Forecast {
	return &models.Forecast{
		CommodityID:    "120190",
		Horizon:        "1m",
		TargetDate:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		PredictedPrice: 15.42,
		ConfidenceInterval: models.ConfidenceInterval{
			Lower: 14.9,
			Upper: 15.94,
		},
		ConfidenceScore: 84,
		ModelVersion:    "statistical-v1",
		Currency:        "USD",
		Unit:            "kg",
		CreatedAt:       time.Date(2026, 7, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestRedisForecastCache_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisForecastCacheWithClient(db)
	ctx := context.Background()

	t.Run("hit decodes the stored forecast", func(t *testing.T) {
		want := sampleForecast()
		payload, err := json.Marshal(want)
		require.NoError(t, err)
		mock.ExpectGet("forecast:120190:1m").SetVal(string(payload))

		got, found, err := c.Get(ctx, "120190", "1m")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, want, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss is not an error", func(t *testing.T) {
		mock.ExpectGet("forecast:270900:1w").RedisNil()

		got, found, err := c.Get(ctx, "270900", "1w")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis failure surfaces", func(t *testing.T) {
		mock.ExpectGet("forecast:120190:1m").SetErr(redis.TxFailedErr)

		_, _, err := c.Get(ctx, "120190", "1m")
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisForecastCache_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisForecastCacheWithClient(db)

	forecast := sampleForecast()
	payload, err := json.Marshal(forecast)
	require.NoError(t, err)

	mock.ExpectSet("forecast:120190:1m", payload, 24*time.Hour).SetVal("OK")

	require.NoError(t, c.Set(context.Background(), forecast, 24*time.Hour))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryForecastCache_RoundTrip(t *testing.T) {
	c := NewMemoryForecastCache(16)
	defer c.Close()
	ctx := context.Background()

	_, found, err := c.Get(ctx, "120190", "1m")
	require.NoError(t, err)
	assert.False(t, found)

	want := sampleForecast()
	require.NoError(t, c.Set(ctx, want, time.Minute))

	got, found, err := c.Get(ctx, "120190", "1m")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)
}
