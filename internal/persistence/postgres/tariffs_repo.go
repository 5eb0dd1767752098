package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tradecast/tradecast/internal/models"
	"github.com/tradecast/tradecast/internal/persistence"
)

// tariffsRepo implements persistence.TariffsRepo for PostgreSQL.
type tariffsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewTariffsRepo(db *sqlx.DB, timeout time.Duration) persistence.TariffsRepo {
	return &tariffsRepo{db: db, timeout: timeout}
}

func (r *tariffsRepo) Upsert(ctx context.Context, rate models.TariffRate) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if rate.AdValoremRate < 0 || rate.SpecificAmount < 0 {
		return fmt.Errorf("reject negative duty rate for %s/%s", rate.HSCode, rate.OriginCountry)
	}

	query := `
		INSERT INTO tariff_rates (
			hs_code, origin_country, ad_valorem_rate, specific_amount,
			specific_unit, effective_from, effective_to
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (hs_code, origin_country, effective_from) DO UPDATE
		SET ad_valorem_rate = EXCLUDED.ad_valorem_rate,
		    specific_amount = EXCLUDED.specific_amount,
		    specific_unit = EXCLUDED.specific_unit,
		    effective_to = EXCLUDED.effective_to`

	_, err := r.db.ExecContext(ctx, query,
		rate.HSCode, rate.OriginCountry, rate.AdValoremRate, rate.SpecificAmount,
		rate.SpecificUnit, rate.EffectiveFrom, rate.EffectiveTo)
	if err != nil {
		return fmt.Errorf("upsert tariff rate: %w", err)
	}
	return nil
}

// Lookup returns the rate in effect on asOf, preferring the most recently
// effective schedule.
func (r *tariffsRepo) Lookup(ctx context.Context, hsCode, originCountry string, asOf time.Time) (*models.TariffRate, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT hs_code, origin_country, ad_valorem_rate, specific_amount,
		       specific_unit, effective_from, effective_to
		FROM tariff_rates
		WHERE hs_code = $1 AND origin_country = $2
		  AND effective_from <= $3
		  AND (effective_to IS NULL OR effective_to >= $3)
		ORDER BY effective_from DESC
		LIMIT 1`

	var rate models.TariffRate
	if err := r.db.GetContext(ctx, &rate, query, hsCode, originCountry, asOf); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrNotFound
		}
		return nil, fmt.Errorf("lookup tariff rate: %w", err)
	}
	return &rate, nil
}
