package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tradecast/tradecast/internal/models"
	"github.com/tradecast/tradecast/internal/persistence"
)

// risksRepo implements persistence.RisksRepo for PostgreSQL.
type risksRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewRisksRepo(db *sqlx.DB, timeout time.Duration) persistence.RisksRepo {
	return &risksRepo{db: db, timeout: timeout}
}

func (r *risksRepo) InsertBatch(ctx context.Context, factors []models.RiskFactor) error {
	if len(factors) == 0 {
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
		INSERT INTO risk_factors (
			commodity_id, title, severity, impact_direction,
			impact_percentage, impact_confidence, description, active, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range factors {
		if f.Severity < 1 || f.Severity > 5 {
			return fmt.Errorf("reject severity %d for %q: must be 1-5", f.Severity, f.Title)
		}
		_, err := stmt.ExecContext(ctx,
			f.CommodityID, f.Title, f.Severity, f.ImpactDirection,
			f.ImpactPercentage, f.ImpactConfidence, f.Description, f.Active, f.ExpiresAt)
		if err != nil {
			return fmt.Errorf("insert risk factor: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit risk factors: %w", err)
	}
	return nil
}

// ActiveByCommodity returns active, unexpired factors for one commodity,
// ready to hand to the forecast engine.
func (r *risksRepo) ActiveByCommodity(ctx context.Context, commodityID string, now time.Time) ([]models.RiskFactor, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, commodity_id, title, severity, impact_direction,
		       impact_percentage, impact_confidence, description, active, expires_at
		FROM risk_factors
		WHERE commodity_id = $1
		  AND active = TRUE
		  AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY severity DESC, id ASC`

	var factors []models.RiskFactor
	if err := r.db.SelectContext(ctx, &factors, query, commodityID, now); err != nil {
		return nil, fmt.Errorf("list active risk factors: %w", err)
	}
	return factors, nil
}
