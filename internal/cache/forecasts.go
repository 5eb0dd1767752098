package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/tradecast/tradecast/internal/models"
)

// ForecastCache stores the most recent forecast per (commodity, horizon)
// pair. TTLs mirror the horizon staleness thresholds, so an expired entry
// means the forecast must be recomputed.
type ForecastCache interface {
	Get(ctx context.Context, commodityID, horizon string) (*models.Forecast, bool, error)
	Set(ctx context.Context, forecast *models.Forecast, ttl time.Duration) error
}

func forecastKey(commodityID, horizon string) string {
	return fmt.Sprintf("forecast:%s:%s", commodityID, horizon)
}

// RedisForecastCache is the Redis-backed ForecastCache.
type RedisForecastCache struct {
	client *redis.Client
}

// NewRedisForecastCache connects to Redis and verifies the connection.
func NewRedisForecastCache(addr, password string, db int) (*RedisForecastCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisForecastCache{client: client}, nil
}

// NewRedisForecastCacheWithClient wraps an existing client; tests use it with
// a mock.
func NewRedisForecastCacheWithClient(client *redis.Client) *RedisForecastCache {
	return &RedisForecastCache{client: client}
}

func (c *RedisForecastCache) Get(ctx context.Context, commodityID, horizon string) (*models.Forecast, bool, error) {
	val, err := c.client.Get(ctx, forecastKey(commodityID, horizon)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var forecast models.Forecast
	if err := json.Unmarshal(val, &forecast); err != nil {
		return nil, false, fmt.Errorf("decode cached forecast: %w", err)
	}
	return &forecast, true, nil
}

func (c *RedisForecastCache) Set(ctx context.Context, forecast *models.Forecast, ttl time.Duration) error {
	payload, err := json.Marshal(forecast)
	if err != nil {
		return fmt.Errorf("encode forecast: %w", err)
	}
	key := forecastKey(forecast.CommodityID, forecast.Horizon)
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection pool.
func (c *RedisForecastCache) Close() error {
	return c.client.Close()
}

// MemoryForecastCache adapts TTLCache to the ForecastCache interface for
// single-process deployments.
type MemoryForecastCache struct {
	cache *TTLCache
}

func NewMemoryForecastCache(maxEntries int) *MemoryForecastCache {
	return &MemoryForecastCache{cache: NewTTLCache(maxEntries)}
}

func (c *MemoryForecastCache) Get(_ context.Context, commodityID, horizon string) (*models.Forecast, bool, error) {
	val, ok := c.cache.Get(forecastKey(commodityID, horizon))
	if !ok {
		return nil, false, nil
	}
	var forecast models.Forecast
	if err := json.Unmarshal(val, &forecast); err != nil {
		return nil, false, fmt.Errorf("decode cached forecast: %w", err)
	}
	return &forecast, true, nil
}

func (c *MemoryForecastCache) Set(_ context.Context, forecast *models.Forecast, ttl time.Duration) error {
	payload, err := json.Marshal(forecast)
	if err != nil {
		return fmt.Errorf("encode forecast: %w", err)
	}
	c.cache.Set(forecastKey(forecast.CommodityID, forecast.Horizon), payload, ttl)
	return nil
}

// Close stops the underlying cleanup goroutine.
func (c *MemoryForecastCache) Close() error {
	c.cache.Close()
	return nil
}
