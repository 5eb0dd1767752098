package forecast

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradecast/tradecast/internal/models"
)

// Explanation thresholds. A trailing window of observations is checked for
// sustained drift; at least 2% monthly movement earns a trend factor entry.
const (
	trendWindow         = 30
	trendDriftThreshold = 0.02
	trendFactorImpact   = 0.5
	severityImpactStep  = 0.2
)

// Engine produces Forecast records from caller-supplied price history and
// risk factors. It owns no storage and no I/O: inputs arrive fully resolved
// and the caller persists the output. Generation is deterministic for fixed
// inputs and clock on the statistical path.
type Engine struct {
	horizons  *HorizonTable
	seasons   SeasonalityModel
	predictor PricePredictor
	log       zerolog.Logger
	now       func() time.Time
}

func NewEngine(horizons *HorizonTable, seasons SeasonalityModel, predictor PricePredictor, log zerolog.Logger) *Engine {
	return &Engine{
		horizons:  horizons,
		seasons:   seasons,
		predictor: predictor,
		log:       log,
		now:       time.Now,
	}
}

// WithClock overrides the engine clock. Tests use it to pin createdAt and the
// seasonal month projection.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Horizons exposes the engine's horizon table so callers can honor the
// staleness contract with the same configuration the engine predicts with.
func (e *Engine) Horizons() *HorizonTable {
	return e.horizons
}

// Generate computes a forecast for the commodity and horizon in the input.
// The price series is defensively re-sorted by timestamp; it must be
// non-empty with at least two points, strictly positive, and consistent in
// currency and unit. Unrecognized horizon tokens fall back to the 30-day
// bucket.
func (e *Engine) Generate(ctx context.Context, in Input) (*models.Forecast, error) {
	if len(in.Prices) < 2 {
		return nil, ErrInsufficientHistory
	}

	prices := append([]models.PricePoint(nil), in.Prices...)
	sort.SliceStable(prices, func(i, j int) bool {
		return prices[i].Timestamp.Before(prices[j].Timestamp)
	})

	latest := prices[len(prices)-1]
	for _, p := range prices {
		if p.Price <= 0 {
			return nil, ErrInvalidPriceSeries
		}
		if p.Currency != latest.Currency || p.Unit != latest.Unit {
			return nil, ErrMixedCurrency
		}
	}
	in.Prices = prices

	horizonDays := e.horizons.Days(in.Horizon)
	now := e.now().UTC()

	pred, err := e.predictor.Predict(ctx, in, horizonDays, now)
	if err != nil {
		return nil, err
	}

	forecast := &models.Forecast{
		CommodityID:    in.CommodityID,
		Horizon:        in.Horizon,
		TargetDate:     now.AddDate(0, 0, horizonDays),
		PredictedPrice: pred.Price,
		ConfidenceInterval: models.ConfidenceInterval{
			Lower: math.Max(0, pred.Price-pred.Margin),
			Upper: pred.Price + pred.Margin,
		},
		ConfidenceScore: pred.ConfidenceScore,
		Factors:         e.explain(in, horizonDays, now, latest.Price),
		ModelVersion:    pred.Model,
		Currency:        latest.Currency,
		Unit:            latest.Unit,
		CreatedAt:       now,
	}

	e.log.Debug().
		Str("commodity_id", in.CommodityID).
		Str("horizon", in.Horizon).
		Str("model", pred.Model).
		Float64("predicted_price", pred.Price).
		Int("confidence_score", pred.ConfidenceScore).
		Msg("forecast generated")

	return forecast, nil
}

// explain builds the ordered factor list: each risk factor first, then a
// recent-trend entry when the trailing window shows sustained drift, then a
// seasonal entry for agricultural commodities.
func (e *Engine) explain(in Input, horizonDays int, now time.Time, latestPrice float64) []models.FactorExplanation {
	factors := make([]models.FactorExplanation, 0, len(in.Risks)+2)

	for _, r := range in.Risks {
		impact := clamp(float64(r.Severity)*severityImpactStep, -1, 1)
		if r.ImpactDirection != models.ImpactIncrease {
			impact = -impact
		}
		if impact == 0 {
			continue
		}
		factors = append(factors, models.FactorExplanation{
			Name:        r.Title,
			Impact:      impact,
			Description: r.Description,
		})
	}

	window := in.Prices
	if len(window) > trendWindow {
		window = window[len(window)-trendWindow:]
	}
	if slope, err := EstimateTrend(window); err == nil && latestPrice > 0 {
		monthlyDrift := slope * 30.0 / latestPrice
		switch {
		case monthlyDrift >= trendDriftThreshold:
			factors = append(factors, models.FactorExplanation{
				Name:        "Recent Price Trend",
				Impact:      trendFactorImpact,
				Description: fmt.Sprintf("Prices rose %.1f%% per month over the recent window", monthlyDrift*100),
			})
		case monthlyDrift <= -trendDriftThreshold:
			factors = append(factors, models.FactorExplanation{
				Name:        "Recent Price Trend",
				Impact:      -trendFactorImpact,
				Description: fmt.Sprintf("Prices fell %.1f%% per month over the recent window", -monthlyDrift*100),
			})
		}
	}

	if e.seasons.Agricultural(in.CommodityID) {
		adjustment := e.seasons.Adjustment(in.CommodityID, horizonDays, now)
		factors = append(factors, models.FactorExplanation{
			Name:        "Seasonal Pattern",
			Impact:      adjustment,
			Description: "Agricultural commodity subject to harvest-cycle seasonality",
		})
	}

	return factors
}
