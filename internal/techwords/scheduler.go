package techwords

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"communitybot/pkg/utils"
)

// Scheduler runs a job once a day at a fixed local wall-clock time
type Scheduler struct {
	clock  utils.Clock
	loc    *time.Location
	hour   int
	minute int
	job    func(context.Context) error

	// after is swapped out in tests
	after func(time.Duration) <-chan time.Time
}

func NewScheduler(clock utils.Clock, loc *time.Location, hour, minute int, job func(context.Context) error) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{clock: clock, loc: loc, hour: hour, minute: minute, job: job, after: time.After}
}

// NextRun returns the first run time strictly after now
func (s *Scheduler) NextRun(now time.Time) time.Time {
	local := now.In(s.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, s.hour, s.minute, 0, 0, s.loc)
	}
	return next
}

// Run blocks until ctx is cancelled. A failed job is logged and the next
// day is scheduled as usual.
func (s *Scheduler) Run(ctx context.Context) {
	log := zerolog.Ctx(ctx)
	for {
		now := s.clock.Now()
		next := s.NextRun(now)
		wait := next.Sub(now)
		log.Info().Time("next", next).Str("in", utils.FormatDuration(int64(wait.Seconds()))).Msg("Next tech words post scheduled")

		select {
		case <-ctx.Done():
			log.Info().Msg("Tech words scheduler stopped")
			return
		case <-s.after(wait):
		}
		if ctx.Err() != nil {
			return
		}

		if err := s.job(ctx); err != nil {
			log.Error().Err(err).Msg("Error posting tech words")
		}
	}
}
