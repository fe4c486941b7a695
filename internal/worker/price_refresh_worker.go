package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/walletgate/vas-catalog/internal/models"
)

// SweepRunner is the slice of the sync engine the schedule workers drive.
type SweepRunner interface {
	RunFullSweep(ctx context.Context, trigger models.TriggerSource) (*models.SweepStats, error)
	RunPriceRefresh(ctx context.Context, trigger models.TriggerSource) (*models.SweepStats, error)
}

// PriceRefreshWorker periodically refreshes pricing from all suppliers.
type PriceRefreshWorker struct {
	runner   SweepRunner
	interval time.Duration
}

// NewPriceRefreshWorker constructs a PriceRefreshWorker.
func NewPriceRefreshWorker(runner SweepRunner, interval time.Duration) *PriceRefreshWorker {
	return &PriceRefreshWorker{
		runner:   runner,
		interval: interval,
	}
}

// Start begins the periodic refresh loop and listens for context cancellation.
func (w *PriceRefreshWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting price refresh worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Price refresh worker stopped")
			return
		}
	}
}

func (w *PriceRefreshWorker) run(ctx context.Context) {
	if _, err := w.runner.RunPriceRefresh(ctx, models.TriggerSchedule); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		log.Error().Err(err).Msg("Scheduled price refresh failed")
	}
}
