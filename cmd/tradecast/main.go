package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/tradecast/tradecast/internal/application"
	"github.com/tradecast/tradecast/internal/cache"
	"github.com/tradecast/tradecast/internal/forecast"
	httpapi "github.com/tradecast/tradecast/internal/interfaces/http"
	"github.com/tradecast/tradecast/internal/interfaces/http/handlers"
	"github.com/tradecast/tradecast/internal/metrics"
	"github.com/tradecast/tradecast/internal/persistence/postgres"
	"github.com/tradecast/tradecast/internal/providers"
)

const (
	appName = "tradecast"
	version = "v1.2.0"

	dbTimeout = 5 * time.Second
)

func main() {
	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Commodity trade data and price forecasting service",
		Version: version,
		Long: `tradecast serves commodity price history, HS code classification,
tariff schedules, and probabilistic price forecasts over HTTP.

Run 'tradecast serve' to start the API, or use the one-shot subcommands
for scripted access.`,
	}
	addConfigFlag(rootCmd.PersistentFlags())

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and refresh scheduler",
		RunE:  runServe,
	}

	forecastCmd := &cobra.Command{
		Use:   "forecast <commodity>",
		Short: "Print a forecast for one commodity as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runForecast,
	}
	forecastCmd.Flags().String("horizon", forecast.HorizonMonth, "Forecast horizon (1d|1w|1m|3m|6m|1y)")

	refreshCmd := &cobra.Command{
		Use:   "refresh [commodity...]",
		Short: "Pull fresh provider data and recompute forecasts",
		Long:  "Refreshes the given commodities, or every tracked commodity when none are named.",
		RunE:  runRefresh,
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(refreshCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func addConfigFlag(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "config/config.yaml", "Path to configuration file")
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}

	var out = os.Stderr
	logger := zerolog.New(out)
	if term.IsTerminal(int(out.Fd())) {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen})
	}
	return logger.Level(parsed).With().Timestamp().Logger()
}

// app bundles everything the subcommands need from the wired stack.
type app struct {
	cfg       *application.Config
	log       zerolog.Logger
	metrics   *metrics.Metrics
	service   *application.ForecastService
	scheduler *application.RefreshScheduler
	server    *httpapi.Server
	close     func()
}

func buildApp(cmd *cobra.Command) (*app, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := application.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	log := newLogger(cfg.LogLevel)
	m := metrics.New()

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	pricesRepo := postgres.NewPricesRepo(db, dbTimeout)
	risksRepo := postgres.NewRisksRepo(db, dbTimeout)
	forecastsRepo := postgres.NewForecastsRepo(db, dbTimeout)
	hsCodesRepo := postgres.NewHSCodesRepo(db, dbTimeout)
	tariffsRepo := postgres.NewTariffsRepo(db, dbTimeout)

	var forecastCache cache.ForecastCache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisForecastCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		forecastCache = redisCache
	} else {
		log.Info().Msg("redis not configured, using in-memory forecast cache")
		forecastCache = cache.NewMemoryForecastCache(cfg.Forecast.CacheMaxEntries)
	}

	seasons := forecast.NewHarvestSeasonality(forecast.DefaultAgriculturalPrefixes())
	var predictor forecast.PricePredictor = forecast.NewStatisticalPredictor(seasons)
	if cfg.Providers.Model.Enabled {
		external := forecast.NewExternalModelPredictor(
			providers.NewModelServiceClient(cfg.Providers.Model, log), seasons)
		predictor = forecast.NewFallbackPredictor(external, predictor, log)
	}
	engine := forecast.NewEngine(forecast.DefaultHorizonTable(), seasons, predictor, log)

	priceFeed := providers.NewPriceFeedClient(cfg.Providers.Prices, log)
	riskFeed := providers.NewRiskFeedClient(cfg.Providers.Risks, log)
	tariffRegistry := providers.NewTariffRegistryClient(cfg.Providers.Tariffs, log)

	service := application.NewForecastService(application.ServiceDeps{
		Prices:    pricesRepo,
		Risks:     risksRepo,
		Forecasts: forecastsRepo,
		Cache:     forecastCache,
		Engine:    engine,
		PriceFeed: priceFeed,
		RiskFeed:  riskFeed,
		Metrics:   m,
		Log:       log,
	}, cfg.Forecast)

	h := handlers.New(handlers.Deps{
		Forecasts: service,
		Prices:    pricesRepo,
		Risks:     risksRepo,
		HSCodes:   hsCodesRepo,
		Tariffs:   application.NewTariffResolver(tariffsRepo, tariffRegistry, log),
		Currency:  cfg.Forecast.Currency,
		Log:       log,
	})
	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, h, m, log)

	return &app{
		cfg:     cfg,
		log:     log,
		metrics: m,
		service: service,
		scheduler: application.NewRefreshScheduler(
			service, cfg.Forecast.TrackedCommodities, cfg.Forecast.RefreshInterval, log),
		server: server,
		close:  func() { db.Close() },
	}, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := a.scheduler.Run(ctx); err != nil && ctx.Err() == nil {
			a.log.Error().Err(err).Msg("scheduler exited")
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}

func runForecast(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	horizon, err := cmd.Flags().GetString("horizon")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := a.service.GetForecast(ctx, args[0], horizon)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	commodities := args
	if len(commodities) == 0 {
		commodities = a.cfg.Forecast.TrackedCommodities
	}
	if len(commodities) == 0 {
		return fmt.Errorf("no commodities given and none tracked in configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var failed int
	for _, id := range commodities {
		if err := a.service.Refresh(ctx, id); err != nil {
			failed++
			a.log.Error().Err(err).Str("commodity_id", id).Msg("refresh failed")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d commodities failed to refresh", failed, len(commodities))
	}
	a.log.Info().Int("commodities", len(commodities)).Msg("refresh complete")
	return nil
}
