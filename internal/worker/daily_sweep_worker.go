package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/walletgate/vas-catalog/internal/models"
)

// DailySweepWorker fires the full catalog sweep once a day at a fixed
// wall-clock time in the configured timezone.
type DailySweepWorker struct {
	runner SweepRunner
	at     string // "15:04"
	loc    *time.Location
}

// NewDailySweepWorker constructs a DailySweepWorker. at is a "HH:MM" local
// time in loc.
func NewDailySweepWorker(runner SweepRunner, at string, loc *time.Location) *DailySweepWorker {
	return &DailySweepWorker{
		runner: runner,
		at:     at,
		loc:    loc,
	}
}

// Start schedules the next sweep and listens for context cancellation. The
// next fire time is recomputed after every run, so clock changes and DST
// shifts are picked up within one cycle.
func (w *DailySweepWorker) Start(ctx context.Context) {
	log.Info().Str("at", w.at).Str("timezone", w.loc.String()).Msg("Starting daily sweep worker")

	for {
		next := w.nextRun(time.Now().In(w.loc))
		timer := time.NewTimer(time.Until(next))

		select {
		case <-timer.C:
			w.run(ctx)
		case <-ctx.Done():
			timer.Stop()
			log.Info().Msg("Daily sweep worker stopped")
			return
		}
	}
}

// nextRun returns the next occurrence of the configured wall-clock time
// strictly after now.
func (w *DailySweepWorker) nextRun(now time.Time) time.Time {
	at, err := time.Parse("15:04", w.at)
	if err != nil {
		// Misconfigured time falls back to 02:00; validated again at startup.
		at = time.Date(0, 1, 1, 2, 0, 0, 0, time.UTC)
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, w.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (w *DailySweepWorker) run(ctx context.Context) {
	if _, err := w.runner.RunFullSweep(ctx, models.TriggerSchedule); err != nil {
		log.Error().Err(err).Msg("Scheduled full sweep failed")
	}
}
