package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tradecast/tradecast/internal/models"
	"github.com/tradecast/tradecast/internal/persistence"
)

// forecastsRepo implements persistence.ForecastsRepo for PostgreSQL.
type forecastsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewForecastsRepo(db *sqlx.DB, timeout time.Duration) persistence.ForecastsRepo {
	return &forecastsRepo{db: db, timeout: timeout}
}

// Insert stores a new forecast row. Rows are append-only: recomputes insert a
// newer row instead of updating, and Latest picks the winner by created_at.
func (r *forecastsRepo) Insert(ctx context.Context, forecast *models.Forecast) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	factorsJSON, err := json.Marshal(forecast.Factors)
	if err != nil {
		return fmt.Errorf("marshal factors: %w", err)
	}

	query := `
		INSERT INTO forecasts (
			commodity_id, horizon, target_date, predicted_price,
			ci_lower, ci_upper, confidence_score, factors,
			model_version, currency, unit, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	err = r.db.QueryRowxContext(ctx, query,
		forecast.CommodityID, forecast.Horizon, forecast.TargetDate, forecast.PredictedPrice,
		forecast.ConfidenceInterval.Lower, forecast.ConfidenceInterval.Upper,
		forecast.ConfidenceScore, factorsJSON,
		forecast.ModelVersion, forecast.Currency, forecast.Unit, forecast.CreatedAt).
		Scan(&forecast.ID)
	if err != nil {
		return fmt.Errorf("insert forecast: %w", err)
	}
	return nil
}

// Latest returns the most recently created forecast for the pair.
func (r *forecastsRepo) Latest(ctx context.Context, commodityID, horizon string) (*models.Forecast, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, commodity_id, horizon, target_date, predicted_price,
		       ci_lower, ci_upper, confidence_score, factors,
		       model_version, currency, unit, created_at
		FROM forecasts
		WHERE commodity_id = $1 AND horizon = $2
		ORDER BY created_at DESC
		LIMIT 1`

	row := r.db.QueryRowxContext(ctx, query, commodityID, horizon)

	var forecast models.Forecast
	var factorsJSON []byte
	err := row.Scan(
		&forecast.ID, &forecast.CommodityID, &forecast.Horizon, &forecast.TargetDate,
		&forecast.PredictedPrice, &forecast.ConfidenceInterval.Lower, &forecast.ConfidenceInterval.Upper,
		&forecast.ConfidenceScore, &factorsJSON,
		&forecast.ModelVersion, &forecast.Currency, &forecast.Unit, &forecast.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrNotFound
		}
		return nil, fmt.Errorf("latest forecast: %w", err)
	}

	if len(factorsJSON) > 0 {
		if err := json.Unmarshal(factorsJSON, &forecast.Factors); err != nil {
			return nil, fmt.Errorf("unmarshal factors: %w", err)
		}
	}
	return &forecast, nil
}
