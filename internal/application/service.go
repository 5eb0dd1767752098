package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradecast/tradecast/internal/cache"
	"github.com/tradecast/tradecast/internal/forecast"
	"github.com/tradecast/tradecast/internal/metrics"
	"github.com/tradecast/tradecast/internal/models"
	"github.com/tradecast/tradecast/internal/persistence"
)

// PriceFeed is the slice of the price provider the service needs.
type PriceFeed interface {
	FetchDaily(ctx context.Context, commodityID string, from, to time.Time) ([]models.PricePoint, error)
}

// RiskFeed is the slice of the risk registry the service needs.
type RiskFeed interface {
	FetchActive(ctx context.Context, commodityID string) ([]models.RiskFactor, error)
}

// ForecastService owns everything the engine deliberately does not: loading
// inputs, the staleness policy, persistence, and caching. Concurrent requests
// for one (commodity, horizon) may race to compute; that is tolerated, the
// newest created_at simply wins on the next read.
type ForecastService struct {
	prices    persistence.PricesRepo
	risks     persistence.RisksRepo
	forecasts persistence.ForecastsRepo
	cache     cache.ForecastCache
	engine    *forecast.Engine
	priceFeed PriceFeed
	riskFeed  RiskFeed
	metrics   *metrics.Metrics
	log       zerolog.Logger
	cfg       ForecastConfig
	now       func() time.Time
}

// ServiceDeps lists the collaborators a ForecastService is assembled from.
type ServiceDeps struct {
	Prices    persistence.PricesRepo
	Risks     persistence.RisksRepo
	Forecasts persistence.ForecastsRepo
	Cache     cache.ForecastCache
	Engine    *forecast.Engine
	PriceFeed PriceFeed
	RiskFeed  RiskFeed
	Metrics   *metrics.Metrics
	Log       zerolog.Logger
}

func NewForecastService(deps ServiceDeps, cfg ForecastConfig) *ForecastService {
	return &ForecastService{
		prices:    deps.Prices,
		risks:     deps.Risks,
		forecasts: deps.Forecasts,
		cache:     deps.Cache,
		engine:    deps.Engine,
		priceFeed: deps.PriceFeed,
		riskFeed:  deps.RiskFeed,
		metrics:   deps.Metrics,
		log:       deps.Log,
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithClock overrides the service clock, for tests.
func (s *ForecastService) WithClock(now func() time.Time) *ForecastService {
	s.now = now
	return s
}

// GetForecast returns the current forecast for the pair, honoring the
// horizon-dependent staleness policy: cache first, then the most recent
// stored forecast, then a fresh computation. Absence of any forecast is
// always treated as stale.
func (s *ForecastService) GetForecast(ctx context.Context, commodityID, horizon string) (*models.Forecast, error) {
	now := s.now().UTC()
	horizons := s.engine.Horizons()

	if cached, ok, err := s.cache.Get(ctx, commodityID, horizon); err != nil {
		s.log.Warn().Err(err).Str("commodity_id", commodityID).Msg("forecast cache read failed")
	} else if ok && !horizons.Stale(horizon, cached.CreatedAt, now) {
		s.metrics.CacheHits.WithLabelValues("cache").Inc()
		return cached, nil
	}
	s.metrics.CacheMisses.WithLabelValues("cache").Inc()

	stored, err := s.forecasts.Latest(ctx, commodityID, horizon)
	switch {
	case err == nil:
		if !horizons.Stale(horizon, stored.CreatedAt, now) {
			s.metrics.CacheHits.WithLabelValues("store").Inc()
			s.cacheForecast(ctx, stored)
			return stored, nil
		}
	case errors.Is(err, persistence.ErrNotFound):
		// No forecast yet: compute one.
	default:
		return nil, fmt.Errorf("load stored forecast: %w", err)
	}
	s.metrics.CacheMisses.WithLabelValues("store").Inc()

	return s.compute(ctx, commodityID, horizon, now)
}

// Refresh pulls fresh provider data for a commodity and recomputes all
// horizons. The scheduler calls this on its cadence; operators can force it
// through the CLI.
func (s *ForecastService) Refresh(ctx context.Context, commodityID string) error {
	now := s.now().UTC()

	if s.priceFeed != nil {
		from := now.AddDate(0, 0, -s.cfg.HistoryDays)
		points, err := s.fetchPrices(ctx, commodityID, from, now)
		if err != nil {
			return fmt.Errorf("refresh prices for %s: %w", commodityID, err)
		}
		if err := s.prices.InsertBatch(ctx, points); err != nil {
			return fmt.Errorf("store refreshed prices for %s: %w", commodityID, err)
		}
	}

	if s.riskFeed != nil {
		factors, err := s.riskFeed.FetchActive(ctx, commodityID)
		s.metrics.ProviderRequests.WithLabelValues("risk-feed", outcome(err)).Inc()
		if err != nil {
			// Risk data is an enrichment; forecast on stale risks rather
			// than failing the whole refresh.
			s.log.Warn().Err(err).Str("commodity_id", commodityID).Msg("risk feed refresh failed")
		} else if err := s.risks.InsertBatch(ctx, factors); err != nil {
			return fmt.Errorf("store refreshed risks for %s: %w", commodityID, err)
		}
	}

	var firstErr error
	for _, horizon := range s.engine.Horizons().Tokens() {
		if _, err := s.compute(ctx, commodityID, horizon, now); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("recompute %s/%s: %w", commodityID, horizon, err)
			}
			s.log.Error().Err(err).
				Str("commodity_id", commodityID).
				Str("horizon", horizon).
				Msg("forecast recompute failed")
		}
	}
	return firstErr
}

func (s *ForecastService) compute(ctx context.Context, commodityID, horizon string, now time.Time) (*models.Forecast, error) {
	prices, err := s.loadPrices(ctx, commodityID, now)
	if err != nil {
		return nil, err
	}

	risks, err := s.risks.ActiveByCommodity(ctx, commodityID, now)
	if err != nil {
		return nil, fmt.Errorf("load risk factors: %w", err)
	}

	result, err := s.engine.Generate(ctx, forecast.Input{
		CommodityID: commodityID,
		Horizon:     horizon,
		Prices:      prices,
		Risks:       risks,
	})
	if err != nil {
		s.metrics.ForecastErrors.WithLabelValues(errorReason(err)).Inc()
		return nil, err
	}

	if err := s.forecasts.Insert(ctx, result); err != nil {
		// The forecast is still valid for this request; losing one row only
		// means the next request recomputes.
		s.log.Error().Err(err).Str("commodity_id", commodityID).Msg("persist forecast failed")
	}
	s.cacheForecast(ctx, result)
	s.metrics.ForecastsComputed.WithLabelValues(horizon, result.ModelVersion).Inc()

	return result, nil
}

// loadPrices reads the history window from the store, pulling from the price
// feed first when the store has too little to forecast from.
func (s *ForecastService) loadPrices(ctx context.Context, commodityID string, now time.Time) ([]models.PricePoint, error) {
	from := now.AddDate(0, 0, -s.cfg.HistoryDays)

	prices, err := s.prices.ListByCommodity(ctx, commodityID, s.cfg.Currency, from, now, s.cfg.MaxPoints)
	if err != nil {
		return nil, fmt.Errorf("load price history: %w", err)
	}
	if len(prices) >= 2 || s.priceFeed == nil {
		return prices, nil
	}

	fetched, err := s.fetchPrices(ctx, commodityID, from, now)
	if err != nil {
		return nil, fmt.Errorf("fetch price history for %s: %w", commodityID, err)
	}
	if err := s.prices.InsertBatch(ctx, fetched); err != nil {
		return nil, fmt.Errorf("store fetched prices for %s: %w", commodityID, err)
	}

	prices, err = s.prices.ListByCommodity(ctx, commodityID, s.cfg.Currency, from, now, s.cfg.MaxPoints)
	if err != nil {
		return nil, fmt.Errorf("reload price history: %w", err)
	}
	return prices, nil
}

func (s *ForecastService) fetchPrices(ctx context.Context, commodityID string, from, to time.Time) ([]models.PricePoint, error) {
	points, err := s.priceFeed.FetchDaily(ctx, commodityID, from, to)
	s.metrics.ProviderRequests.WithLabelValues("price-feed", outcome(err)).Inc()
	return points, err
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (s *ForecastService) cacheForecast(ctx context.Context, f *models.Forecast) {
	ttl := s.engine.Horizons().Staleness(f.Horizon)
	if err := s.cache.Set(ctx, f, ttl); err != nil {
		s.log.Warn().Err(err).Str("commodity_id", f.CommodityID).Msg("forecast cache write failed")
	}
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, forecast.ErrInsufficientHistory), errors.Is(err, forecast.ErrInsufficientData):
		return "insufficient_history"
	case errors.Is(err, forecast.ErrInsufficientVariance):
		return "insufficient_variance"
	case errors.Is(err, forecast.ErrInvalidPriceSeries):
		return "invalid_series"
	case errors.Is(err, forecast.ErrMixedCurrency):
		return "mixed_currency"
	default:
		return "internal"
	}
}
