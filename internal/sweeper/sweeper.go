// Package sweeper removes stale shows so the seat ledger does not grow
// unbounded: a show whose start time has passed and that no booking
// references is deleted on the next sweep.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/cineseat/cineseat/internal/domain"
	"github.com/go-co-op/gocron/v2"
)

const sweepTimeout = 30 * time.Second

type Sweeper struct {
	shows     domain.ShowRepository
	logger    *slog.Logger
	interval  time.Duration
	scheduler gocron.Scheduler
}

func New(shows domain.ShowRepository, logger *slog.Logger, interval time.Duration) (*Sweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Sweeper{
		shows:     shows,
		logger:    logger,
		interval:  interval,
		scheduler: scheduler,
	}, nil
}

// Start schedules the sweep on the configured interval, with one run
// immediately at startup.
func (s *Sweeper) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.Sweep),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()

	return nil
}

func (s *Sweeper) Stop() error {
	return s.scheduler.Shutdown()
}

// Sweep deletes every show that has started and has zero referencing
// bookings. Safe to run arbitrarily often.
func (s *Sweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	count, err := s.shows.DeleteExpiredWithoutBookings(ctx, time.Now())
	if err != nil {
		s.logger.Error("show sweep failed", "error", err)
		return
	}

	if count > 0 {
		s.logger.Info("deleted expired shows without bookings", "count", count)
	}
}
