package application

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Refresher is the part of the service the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context, commodityID string) error
}

// RefreshScheduler re-pulls provider data and recomputes forecasts for the
// tracked commodities on a fixed cadence, so read paths mostly hit warm
// caches instead of paying provider latency.
type RefreshScheduler struct {
	service     Refresher
	commodities []string
	interval    time.Duration
	log         zerolog.Logger
}

func NewRefreshScheduler(service Refresher, commodities []string, interval time.Duration, log zerolog.Logger) *RefreshScheduler {
	return &RefreshScheduler{
		service:     service,
		commodities: commodities,
		interval:    interval,
		log:         log.With().Str("component", "refresh_scheduler").Logger(),
	}
}

// Run blocks until ctx is canceled. The first sweep happens immediately so a
// fresh deployment does not serve cold data for a full interval.
func (s *RefreshScheduler) Run(ctx context.Context) error {
	if len(s.commodities) == 0 {
		s.log.Info().Msg("no tracked commodities, scheduler idle")
		<-ctx.Done()
		return ctx.Err()
	}

	s.log.Info().
		Dur("interval", s.interval).
		Int("commodities", len(s.commodities)).
		Msg("refresh scheduler started")

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("refresh scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep refreshes each tracked commodity in turn. One failing commodity does
// not block the rest.
func (s *RefreshScheduler) sweep(ctx context.Context) {
	started := time.Now()
	var failed int
	for _, id := range s.commodities {
		if ctx.Err() != nil {
			return
		}
		if err := s.service.Refresh(ctx, id); err != nil {
			failed++
			s.log.Error().Err(err).Str("commodity_id", id).Msg("refresh failed")
		}
	}
	s.log.Info().
		Int("commodities", len(s.commodities)).
		Int("failed", failed).
		Dur("elapsed", time.Since(started)).
		Msg("refresh sweep complete")
}
