package application

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tradecast/tradecast/internal/persistence/postgres"
	"github.com/tradecast/tradecast/internal/providers"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// RedisConfig holds cache settings. An empty Addr selects the in-memory
// cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ProvidersConfig groups the external data source clients.
type ProvidersConfig struct {
	Prices  providers.PriceFeedConfig      `yaml:"prices"`
	Risks   providers.RiskFeedConfig       `yaml:"risks"`
	Tariffs providers.TariffRegistryConfig `yaml:"tariffs"`
	Model   providers.ModelServiceConfig   `yaml:"model"`
}

// ForecastConfig holds the forecasting pipeline settings.
type ForecastConfig struct {
	// HistoryDays is the price history window loaded for each forecast.
	HistoryDays int `yaml:"history_days"`
	// MaxPoints caps the series length handed to the engine.
	MaxPoints int `yaml:"max_points"`
	// Currency filters the price series; mixed series are never combined.
	Currency string `yaml:"currency"`
	// TrackedCommodities are refreshed on the scheduler cadence.
	TrackedCommodities []string      `yaml:"tracked_commodities"`
	RefreshInterval    time.Duration `yaml:"refresh_interval"`
	CacheMaxEntries    int           `yaml:"cache_max_entries"`
}

// Config is the top-level service configuration.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Server    ServerConfig    `yaml:"server"`
	Database  postgres.Config `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Providers ProvidersConfig `yaml:"providers"`
	Forecast  ForecastConfig  `yaml:"forecast"`
}

// LoadConfig reads and validates the YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides lets deployment secrets and port bindings come from the
// environment instead of the config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TRADECAST_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("TRADECAST_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("TRADECAST_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("TRADECAST_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("TRADECAST_PRICE_API_KEY"); v != "" {
		c.Providers.Prices.APIKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Forecast.HistoryDays == 0 {
		c.Forecast.HistoryDays = 365
	}
	if c.Forecast.MaxPoints == 0 {
		c.Forecast.MaxPoints = 2000
	}
	if c.Forecast.Currency == "" {
		c.Forecast.Currency = "USD"
	}
	if c.Forecast.RefreshInterval == 0 {
		c.Forecast.RefreshInterval = 6 * time.Hour
	}
	if c.Forecast.CacheMaxEntries == 0 {
		c.Forecast.CacheMaxEntries = 4096
	}
}

func (c *Config) validate() error {
	if c.Forecast.HistoryDays < 2 {
		return fmt.Errorf("forecast.history_days must be at least 2, got %d", c.Forecast.HistoryDays)
	}
	if c.Forecast.RefreshInterval < time.Minute {
		return fmt.Errorf("forecast.refresh_interval must be at least 1m, got %s", c.Forecast.RefreshInterval)
	}
	return nil
}
