package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tradecast/tradecast/internal/models"
	"github.com/tradecast/tradecast/internal/persistence"
)

// pricesRepo implements persistence.PricesRepo for PostgreSQL.
type pricesRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewPricesRepo(db *sqlx.DB, timeout time.Duration) persistence.PricesRepo {
	return &pricesRepo{db: db, timeout: timeout}
}

// InsertBatch stores price points, skipping rows that collide with an
// existing (commodity, ts, currency) observation. Prices are append-only.
func (r *pricesRepo) InsertBatch(ctx context.Context, points []models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO commodity_prices (commodity_id, ts, price, currency, unit)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (commodity_id, ts, currency) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if p.Price <= 0 {
			return fmt.Errorf("reject non-positive price %.4f for %s", p.Price, p.CommodityID)
		}
		if _, err := stmt.ExecContext(ctx, p.CommodityID, p.Timestamp, p.Price, p.Currency, p.Unit); err != nil {
			return fmt.Errorf("insert price point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit prices: %w", err)
	}
	return nil
}

func (r *pricesRepo) ListByCommodity(ctx context.Context, commodityID, currency string, from, to time.Time, limit int) ([]models.PricePoint, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT commodity_id, ts, price, currency, unit
		FROM commodity_prices
		WHERE commodity_id = $1 AND currency = $2 AND ts >= $3 AND ts <= $4
		ORDER BY ts ASC
		LIMIT $5`

	var points []models.PricePoint
	if err := r.db.SelectContext(ctx, &points, query, commodityID, currency, from, to, limit); err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	return points, nil
}

func (r *pricesRepo) Latest(ctx context.Context, commodityID string) (*models.PricePoint, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT commodity_id, ts, price, currency, unit
		FROM commodity_prices
		WHERE commodity_id = $1
		ORDER BY ts DESC
		LIMIT 1`

	var point models.PricePoint
	if err := r.db.GetContext(ctx, &point, query, commodityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrNotFound
		}
		return nil, fmt.Errorf("latest price: %w", err)
	}
	return &point, nil
}

// isUniqueViolation reports whether err is a PostgreSQL duplicate-key error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
