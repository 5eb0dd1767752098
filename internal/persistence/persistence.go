package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/tradecast/tradecast/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// PricesRepo stores observed commodity prices. Points are append-only.
type PricesRepo interface {
	InsertBatch(ctx context.Context, points []models.PricePoint) error
	// ListByCommodity returns points for one commodity and currency in the
	// time range, ordered by timestamp ascending.
	ListByCommodity(ctx context.Context, commodityID, currency string, from, to time.Time, limit int) ([]models.PricePoint, error)
	Latest(ctx context.Context, commodityID string) (*models.PricePoint, error)
}

// ForecastsRepo stores generated forecasts. Rows are never updated; a newer
// forecast for the same (commodity, horizon) supersedes by created_at.
type ForecastsRepo interface {
	Insert(ctx context.Context, forecast *models.Forecast) error
	Latest(ctx context.Context, commodityID, horizon string) (*models.Forecast, error)
}

// RisksRepo stores risk factors from the registry.
type RisksRepo interface {
	InsertBatch(ctx context.Context, factors []models.RiskFactor) error
	// ActiveByCommodity returns factors that are active and not expired as of
	// now, pre-filtered for the forecast engine.
	ActiveByCommodity(ctx context.Context, commodityID string, now time.Time) ([]models.RiskFactor, error)
}

// HSCodesRepo stores the tariff classification registry.
type HSCodesRepo interface {
	Upsert(ctx context.Context, code models.HSCode) error
	Get(ctx context.Context, code string) (*models.HSCode, error)
	Search(ctx context.Context, term string, limit, offset int) ([]models.HSCode, error)
}

// TariffsRepo stores duty rate schedules.
type TariffsRepo interface {
	Upsert(ctx context.Context, rate models.TariffRate) error
	// Lookup returns the rate effective as of the given date.
	Lookup(ctx context.Context, hsCode, originCountry string, asOf time.Time) (*models.TariffRate, error)
}
