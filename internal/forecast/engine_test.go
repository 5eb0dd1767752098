package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradecast/tradecast/internal/models"
)

func newTestEngine(t *testing.T, now time.Time) *Engine {
	t.Helper()
	seasons := NewHarvestSeasonality(DefaultAgriculturalPrefixes())
	engine := NewEngine(DefaultHorizonTable(), seasons, NewStatisticalPredictor(seasons), zerolog.Nop())
	return engine.WithClock(func() time.Time { return now })
}

func TestEngine_Generate_EndToEndAgricultural(t *testing.T) {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 30)
	engine := newTestEngine(t, now)

	// 30 daily points rising linearly 14.00 -> 15.00 with no risk factors.
	in := Input{
		CommodityID: "120190",
		Horizon:     HorizonMonth,
		Prices:      dailySeries(start, 30, 14.00, 15.00),
	}

	forecast, err := engine.Generate(context.Background(), in)
	require.NoError(t, err)

	latest := in.Prices[len(in.Prices)-1].Price
	assert.Greater(t, forecast.PredictedPrice, latest, "positive trend should dominate")
	assert.GreaterOrEqual(t, forecast.ConfidenceScore, 30)
	assert.LessOrEqual(t, forecast.ConfidenceScore, 90)
	assert.Equal(t, "USD", forecast.Currency)
	assert.Equal(t, "kg", forecast.Unit)
	assert.Equal(t, StatisticalModelVersion, forecast.ModelVersion)
	assert.Equal(t, now, forecast.CreatedAt)
	assert.Equal(t, now.AddDate(0, 0, 30), forecast.TargetDate)

	names := make([]string, len(forecast.Factors))
	for i, f := range forecast.Factors {
		names[i] = f.Name
	}
	assert.Contains(t, names, "Recent Price Trend")
	assert.Contains(t, names, "Seasonal Pattern")
}

func TestEngine_Generate_DeterministicOnStatisticalPath(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 60)
	engine := newTestEngine(t, now)

	pct := 15.0
	conf := 80.0
	in := Input{
		CommodityID: "100590",
		Horizon:     HorizonQuarter,
		Prices:      dailySeries(start, 60, 200, 215),
		Risks: []models.RiskFactor{{
			Title:            "La Nina outlook",
			Severity:         3,
			ImpactDirection:  models.ImpactIncrease,
			ImpactPercentage: &pct,
			ImpactConfidence: &conf,
			Description:      "Below-average rainfall forecast for the growing season",
		}},
	}

	first, err := engine.Generate(context.Background(), in)
	require.NoError(t, err)
	second, err := engine.Generate(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngine_Generate_SortsUnorderedInput(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 10)
	engine := newTestEngine(t, now)

	sorted := dailySeries(start, 10, 50, 55)
	shuffled := []models.PricePoint{sorted[7], sorted[2], sorted[9], sorted[0], sorted[4], sorted[1], sorted[8], sorted[3], sorted[6], sorted[5]}

	fromSorted, err := engine.Generate(context.Background(), Input{CommodityID: "270900", Horizon: HorizonWeek, Prices: sorted})
	require.NoError(t, err)
	fromShuffled, err := engine.Generate(context.Background(), Input{CommodityID: "270900", Horizon: HorizonWeek, Prices: shuffled})
	require.NoError(t, err)

	assert.Equal(t, fromSorted, fromShuffled)
}

func TestEngine_Generate_LowerBoundNeverNegative(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 30)
	engine := newTestEngine(t, now)

	// A collapse steep enough to extrapolate below zero over a year.
	in := Input{
		CommodityID: "270900",
		Horizon:     HorizonYear,
		Prices:      dailySeries(start, 30, 100, 4),
	}

	forecast, err := engine.Generate(context.Background(), in)
	require.NoError(t, err)

	assert.Less(t, forecast.PredictedPrice, 0.0, "fixture should extrapolate below zero")
	assert.Equal(t, 0.0, forecast.ConfidenceInterval.Lower)
	assert.GreaterOrEqual(t, forecast.ConfidenceInterval.Upper, forecast.PredictedPrice)
}

func TestEngine_Generate_ConfidenceScoreClampsUnderExtremeVolatility(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 6)
	engine := newTestEngine(t, now)

	// Wild swings push the raw score far below the floor.
	prices := []float64{10, 30, 8, 40, 9, 35}
	points := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = models.PricePoint{Timestamp: start.AddDate(0, 0, i), Price: p, Currency: "USD", Unit: "t"}
	}

	forecast, err := engine.Generate(context.Background(), Input{CommodityID: "270900", Horizon: HorizonMonth, Prices: points})
	require.NoError(t, err)
	assert.Equal(t, 30, forecast.ConfidenceScore)
}

func TestEngine_Generate_UnrecognizedHorizonBehavesLikeOneMonth(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 20)
	engine := newTestEngine(t, now)

	prices := dailySeries(start, 20, 80, 86)
	known, err := engine.Generate(context.Background(), Input{CommodityID: "270900", Horizon: HorizonMonth, Prices: prices})
	require.NoError(t, err)
	unknown, err := engine.Generate(context.Background(), Input{CommodityID: "270900", Horizon: "2y", Prices: prices})
	require.NoError(t, err)

	assert.Equal(t, known.PredictedPrice, unknown.PredictedPrice)
	assert.Equal(t, known.ConfidenceInterval, unknown.ConfidenceInterval)
	assert.Equal(t, known.ConfidenceScore, unknown.ConfidenceScore)
	assert.Equal(t, known.TargetDate, unknown.TargetDate)
	assert.Equal(t, "2y", unknown.Horizon)
}

func TestEngine_Generate_InputErrors(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	engine := newTestEngine(t, start)
	ctx := context.Background()

	_, err := engine.Generate(ctx, Input{CommodityID: "270900", Horizon: HorizonMonth})
	assert.ErrorIs(t, err, ErrInsufficientHistory)

	single := dailySeries(start, 2, 10, 11)[:1]
	_, err = engine.Generate(ctx, Input{CommodityID: "270900", Horizon: HorizonMonth, Prices: single})
	assert.ErrorIs(t, err, ErrInsufficientHistory)

	zeroed := dailySeries(start, 5, 10, 12)
	zeroed[2].Price = 0
	_, err = engine.Generate(ctx, Input{CommodityID: "270900", Horizon: HorizonMonth, Prices: zeroed})
	assert.ErrorIs(t, err, ErrInvalidPriceSeries)

	mixed := dailySeries(start, 5, 10, 12)
	mixed[1].Currency = "EUR"
	_, err = engine.Generate(ctx, Input{CommodityID: "270900", Horizon: HorizonMonth, Prices: mixed})
	assert.ErrorIs(t, err, ErrMixedCurrency)

	sameInstant := []models.PricePoint{
		{Timestamp: start, Price: 10, Currency: "USD", Unit: "kg"},
		{Timestamp: start, Price: 12, Currency: "USD", Unit: "kg"},
	}
	_, err = engine.Generate(ctx, Input{CommodityID: "270900", Horizon: HorizonMonth, Prices: sameInstant})
	assert.ErrorIs(t, err, ErrInsufficientVariance)
}

func TestEngine_Generate_MLPathNeverSurfacesExternalFailures(t *testing.T) {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 30)

	seasons := NewHarvestSeasonality(DefaultAgriculturalPrefixes())
	external := NewExternalModelPredictor(&stubModelClient{err: context.DeadlineExceeded}, seasons)
	chain := NewFallbackPredictor(external, NewStatisticalPredictor(seasons), zerolog.Nop())
	engine := NewEngine(DefaultHorizonTable(), seasons, chain, zerolog.Nop()).
		WithClock(func() time.Time { return now })

	forecast, err := engine.Generate(context.Background(), Input{
		CommodityID: "120190",
		Horizon:     HorizonMonth,
		Prices:      dailySeries(start, 30, 14, 15),
	})
	require.NoError(t, err)
	assert.Equal(t, StatisticalModelVersion, forecast.ModelVersion)
}
