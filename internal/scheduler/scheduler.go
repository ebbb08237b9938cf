package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper drops entries that expired at the given time and reports how
// many it removed.
type Sweeper interface {
	Sweep(now time.Time) int
}

// Scheduler runs a Sweeper on a fixed interval until its context ends.
type Scheduler struct {
	sweeper  Sweeper
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewScheduler(sweeper Sweeper, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		now:      time.Now,
		logger:   logger.With("component", "scheduler"),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Debug("scheduler started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runSweep()
		}
	}
}

func (s *Scheduler) runSweep() {
	if removed := s.sweeper.Sweep(s.now()); removed > 0 {
		s.logger.Debug("expired notifications dismissed", "count", removed)
	}
}
