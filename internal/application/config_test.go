package application

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
server:
  host: 0.0.0.0
  port: 9090
database:
  host: db.internal
  port: 5432
  database: tradecast
  user: tradecast
redis:
  addr: localhost:6379
forecast:
  history_days: 180
  currency: EUR
  tracked_commodities: ["090111", "100590"]
  refresh_interval: 2h
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 180, cfg.Forecast.HistoryDays)
	assert.Equal(t, "EUR", cfg.Forecast.Currency)
	assert.Equal(t, []string{"090111", "100590"}, cfg.Forecast.TrackedCommodities)
	assert.Equal(t, 2*time.Hour, cfg.Forecast.RefreshInterval)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 365, cfg.Forecast.HistoryDays)
	assert.Equal(t, 2000, cfg.Forecast.MaxPoints)
	assert.Equal(t, "USD", cfg.Forecast.Currency)
	assert.Equal(t, 6*time.Hour, cfg.Forecast.RefreshInterval)
	assert.Equal(t, 4096, cfg.Forecast.CacheMaxEntries)
}

func TestLoadConfigRejectsShortHistory(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "forecast:\n  history_days: 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history_days")
}

func TestLoadConfigRejectsTightRefresh(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "forecast:\n  refresh_interval: 10s\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh_interval")
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("TRADECAST_HTTP_PORT", "9999")
	t.Setenv("TRADECAST_DB_PASSWORD", "s3cret")
	t.Setenv("TRADECAST_REDIS_ADDR", "cache.internal:6379")

	cfg, err := LoadConfig(writeConfig(t, "server:\n  port: 8080\n"))
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
