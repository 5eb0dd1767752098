package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradecast/tradecast/internal/models"
	"github.com/tradecast/tradecast/internal/persistence"
)

// TariffFeed is the slice of the tariff registry the resolver needs. The
// registry only serves the currently effective schedule.
type TariffFeed interface {
	Lookup(ctx context.Context, hsCode, originCountry string) (*models.TariffRate, error)
}

// TariffResolver answers rate lookups from the store, falling through to the
// registry for codes never seen before and caching what it learns.
type TariffResolver struct {
	repo     persistence.TariffsRepo
	registry TariffFeed
	log      zerolog.Logger
}

func NewTariffResolver(repo persistence.TariffsRepo, registry TariffFeed, log zerolog.Logger) *TariffResolver {
	return &TariffResolver{repo: repo, registry: registry, log: log}
}

// Lookup resolves a rate effective as of the given date. Registry fallback
// only applies to current lookups; historical queries are answered from the
// store alone.
func (r *TariffResolver) Lookup(ctx context.Context, hsCode, originCountry string, asOf time.Time) (*models.TariffRate, error) {
	rate, err := r.repo.Lookup(ctx, hsCode, originCountry, asOf)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return nil, fmt.Errorf("tariff store lookup: %w", err)
	}
	if r.registry == nil || asOf.Before(time.Now().UTC().AddDate(0, 0, -1)) {
		return nil, persistence.ErrNotFound
	}

	fetched, err := r.registry.Lookup(ctx, hsCode, originCountry)
	if err != nil {
		return nil, fmt.Errorf("tariff registry lookup: %w", err)
	}
	if err := r.repo.Upsert(ctx, *fetched); err != nil {
		r.log.Warn().Err(err).Str("hs_code", hsCode).Msg("tariff rate cache write failed")
	}
	return fetched, nil
}
