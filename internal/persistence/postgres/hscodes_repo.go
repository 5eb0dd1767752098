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

// hsCodesRepo implements persistence.HSCodesRepo for PostgreSQL.
type hsCodesRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewHSCodesRepo(db *sqlx.DB, timeout time.Duration) persistence.HSCodesRepo {
	return &hsCodesRepo{db: db, timeout: timeout}
}

func (r *hsCodesRepo) Upsert(ctx context.Context, code models.HSCode) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if len(code.Code) < 2 {
		return fmt.Errorf("reject HS code %q: too short", code.Code)
	}

	query := `
		INSERT INTO hs_codes (code, description, chapter, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE
		SET description = EXCLUDED.description,
		    chapter = EXCLUDED.chapter,
		    updated_at = EXCLUDED.updated_at`

	chapter := code.Chapter
	if chapter == "" {
		chapter = code.Code[:2]
	}
	if _, err := r.db.ExecContext(ctx, query, code.Code, code.Description, chapter, code.UpdatedAt); err != nil {
		return fmt.Errorf("upsert hs code: %w", err)
	}
	return nil
}

func (r *hsCodesRepo) Get(ctx context.Context, code string) (*models.HSCode, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var hs models.HSCode
	err := r.db.GetContext(ctx, &hs,
		`SELECT code, description, chapter, updated_at FROM hs_codes WHERE code = $1`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrNotFound
		}
		return nil, fmt.Errorf("get hs code: %w", err)
	}
	return &hs, nil
}

// Search matches codes by prefix or descriptions by substring,
// case-insensitive, with offset pagination.
func (r *hsCodesRepo) Search(ctx context.Context, term string, limit, offset int) ([]models.HSCode, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT code, description, chapter, updated_at
		FROM hs_codes
		WHERE code LIKE $1 || '%' OR description ILIKE '%' || $1 || '%'
		ORDER BY code ASC
		LIMIT $2 OFFSET $3`

	var codes []models.HSCode
	if err := r.db.SelectContext(ctx, &codes, query, term, limit, offset); err != nil {
		return nil, fmt.Errorf("search hs codes: %w", err)
	}
	return codes, nil
}
