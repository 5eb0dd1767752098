package forecast

import "errors"

// Input errors surfaced to the caller. These are non-retryable: the supplied
// series itself is unusable, so the caller should treat them as 4xx-equivalent
// conditions rather than transient failures.
var (
	// ErrInsufficientHistory means fewer than two price observations were
	// supplied to the engine.
	ErrInsufficientHistory = errors.New("not enough historical data to forecast")

	// ErrInsufficientData means the trend estimator was given fewer than two
	// observations.
	ErrInsufficientData = errors.New("trend estimation requires at least two observations")

	// ErrInsufficientVariance means all observations share one timestamp, so
	// the regression denominator is zero.
	ErrInsufficientVariance = errors.New("trend estimation requires more than one distinct timestamp")

	// ErrInvalidPriceSeries means the series contains a zero or negative
	// price. Valid series are strictly positive; the engine rejects bad
	// series at its boundary so the estimators stay total functions.
	ErrInvalidPriceSeries = errors.New("price series contains non-positive prices")

	// ErrMixedCurrency means the series mixes currencies or units, which can
	// never be combined in one forecast.
	ErrMixedCurrency = errors.New("price series mixes currencies or units")
)
