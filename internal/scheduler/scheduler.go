// Package scheduler runs the operator-configured NAV snapshot on a cron schedule.
// The ledger itself has no background loop; this is an external trigger started by the server.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// NAVSnapshotter is implemented by service.NAVService.
type NAVSnapshotter interface {
	SnapshotNAV(ctx context.Context) error
}

// snapshotTimeout bounds a single scheduled run.
const snapshotTimeout = 30 * time.Second

// Scheduler wraps a cron runner whose jobs log through zerolog.
type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

// New creates a Scheduler. Jobs skip a run if the previous one is still going.
func New(logger zerolog.Logger) *Scheduler {
	logger = logger.With().Str("component", "scheduler").Logger()
	cronLogger := cronLogAdapter{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger: logger,
	}
}

// ScheduleNAVSnapshot registers a NAV snapshot on spec, a standard five-field cron
// expression or descriptor such as "@daily".
func (s *Scheduler) ScheduleNAVSnapshot(spec string, snapshotter NAVSnapshotter) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.runSnapshot(snapshotter)
	})
	if err != nil {
		return fmt.Errorf("invalid nav snapshot schedule %q: %w", spec, err)
	}
	s.logger.Info().Str("schedule", spec).Msg("nav snapshot scheduled")
	return nil
}

func (s *Scheduler) runSnapshot(snapshotter NAVSnapshotter) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	start := time.Now()
	if err := snapshotter.SnapshotNAV(ctx); err != nil {
		s.logger.Error().Err(err).Msg("nav snapshot failed")
		return
	}
	s.logger.Info().Dur("duration", time.Since(start)).Msg("nav snapshot completed")
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("scheduler stopped before running job finished")
	}
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// cronLogAdapter implements cron.Logger on top of zerolog.
type cronLogAdapter struct {
	logger zerolog.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
