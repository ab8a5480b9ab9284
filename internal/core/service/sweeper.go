package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iradwatkins/steppers-inventory/internal/clock"
)

type holdExpirer interface {
	ExpiredHoldIDs(now time.Time) []string
	ExpireHold(holdID string) bool
}

// Sweeper reclaims abandoned reservations: each tick it expires every active
// hold whose deadline has passed. An abandoned checkout therefore frees its
// inventory within one sweep interval of the hold's deadline, not at the
// moment the caller disappears.
type Sweeper struct {
	svc      holdExpirer
	clock    clock.Clock
	interval time.Duration
	log      zerolog.Logger
}

func NewSweeper(svc holdExpirer, clk clock.Clock, interval time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		svc:      svc,
		clock:    clk,
		interval: interval,
		log:      log,
	}
}

// Run sweeps once per interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep expires every overdue hold and returns how many it expired. A hold
// that cannot be expired (already completed or released during the scan) is
// skipped; it never stops the rest of the sweep.
func (s *Sweeper) Sweep() int {
	now := s.clock.Now()
	expired := 0
	for _, id := range s.svc.ExpiredHoldIDs(now) {
		if s.svc.ExpireHold(id) {
			expired++
		} else {
			s.log.Debug().Str("hold_id", id).Msg("hold gone before expiry, skipping")
		}
	}
	if expired > 0 {
		s.log.Info().Int("expired", expired).Msg("expired stale holds")
	}
	return expired
}
