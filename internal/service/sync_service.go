package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/walletgate/vas-catalog/internal/models"
	"github.com/walletgate/vas-catalog/internal/supplier"
	"github.com/walletgate/vas-catalog/internal/worker"
)

// ErrSweepInProgress is returned when a run is requested while another run of
// either kind is still executing. The caller should retry later; runs are
// never queued.
var ErrSweepInProgress = errors.New("a catalog sweep is already in progress")

// supplierStore lists the suppliers a run should visit.
type supplierStore interface {
	GetActiveSuppliers(ctx context.Context) ([]models.Supplier, error)
}

// recordSyncer persists one raw upstream record.
type recordSyncer interface {
	SyncOne(ctx context.Context, sup models.Supplier, raw models.RawProductRecord) (*UpsertResult, error)
	SyncPricing(ctx context.Context, sup models.Supplier, raw models.RawProductRecord) (bool, error)
}

// groupClassifier settles price types and suppression for touched groups.
type groupClassifier interface {
	ClassifyGroups(ctx context.Context, groups []GroupKey) (suppressed int, errs int)
}

// offerRebuilder republishes the best-offer table.
type offerRebuilder interface {
	Rebuild(ctx context.Context, trigger string) (*models.CatalogRefreshAudit, error)
}

// decommissioner retires products a supplier stopped listing.
type decommissioner interface {
	MarkMissingDiscontinued(ctx context.Context, supplierID int, vasType models.VasType, seen []string) (int64, error)
}

// SyncSchedule carries the two schedule parameters of the engine.
type SyncSchedule struct {
	DailySweepAt    string
	Location        *time.Location
	RefreshInterval time.Duration
}

// SyncStatus is the operator-facing snapshot of the engine.
type SyncStatus struct {
	Running          bool               `json:"running"`
	SchedulerActive  bool               `json:"schedulerActive"`
	LastFullSweep    *models.SweepStats `json:"lastFullSweep,omitempty"`
	LastPriceRefresh *models.SweepStats `json:"lastPriceRefresh,omitempty"`
}

// SyncService orchestrates the two sync schedules: the daily full sweep and
// the frequent price refresh. At most one run of either kind executes at a
// time; a concurrent trigger is rejected, never queued.
type SyncService struct {
	registry     *supplier.Registry
	suppliers    supplierStore
	syncer       recordSyncer
	classifier   groupClassifier
	materializer offerRebuilder
	products     decommissioner
	notifier     Notifier
	schedule     SyncSchedule

	running atomic.Bool

	mu          sync.Mutex
	lastFull    *models.SweepStats
	lastRefresh *models.SweepStats
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewSyncService constructs a SyncService. The notifier may be nil.
func NewSyncService(
	registry *supplier.Registry,
	suppliers supplierStore,
	syncer recordSyncer,
	classifier groupClassifier,
	materializer offerRebuilder,
	products decommissioner,
	notifier Notifier,
	schedule SyncSchedule,
) *SyncService {
	return &SyncService{
		registry:     registry,
		suppliers:    suppliers,
		syncer:       syncer,
		classifier:   classifier,
		materializer: materializer,
		products:     products,
		notifier:     notifier,
		schedule:     schedule,
	}
}

// Start launches the two background schedules. Calling Start on an already
// started service is a no-op.
func (s *SyncService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	daily := worker.NewDailySweepWorker(s, s.schedule.DailySweepAt, s.schedule.Location)
	refresh := worker.NewPriceRefreshWorker(s, s.schedule.RefreshInterval)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		daily.Start(ctx)
	}()
	go func() {
		defer s.wg.Done()
		refresh.Start(ctx)
	}()

	log.Info().
		Str("daily_sweep_at", s.schedule.DailySweepAt).
		Dur("refresh_interval", s.schedule.RefreshInterval).
		Msg("Catalog sync scheduler started")
}

// Stop halts the background schedules and waits for the workers to exit. An
// in-flight run finishes; only future scheduling stops.
func (s *SyncService) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	log.Info().Msg("Catalog sync scheduler stopped")
}

// Status reports whether a run is executing, whether the scheduler is active,
// and the stats of the last run of each kind.
func (s *SyncService) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SyncStatus{
		Running:          s.running.Load(),
		SchedulerActive:  s.cancel != nil,
		LastFullSweep:    s.lastFull,
		LastPriceRefresh: s.lastRefresh,
	}
}

// RunFullSweep executes the complete pipeline: fetch every supplier catalog,
// upsert, decommission missing products, classify touched groups, rebuild the
// best-offer table, and notify downstream on material change.
func (s *SyncService) RunFullSweep(ctx context.Context, trigger models.TriggerSource) (*models.SweepStats, error) {
	if !s.running.CompareAndSwap(false, true) {
		log.Warn().Str("trigger", string(trigger)).Msg("Full sweep rejected, another run is in progress")
		return nil, ErrSweepInProgress
	}
	defer s.running.Store(false)

	stats := &models.SweepStats{
		RunID:     uuid.New().String(),
		Kind:      models.SweepFull,
		Trigger:   trigger,
		StartedAt: time.Now().UTC(),
	}
	logger := log.With().Str("run_id", stats.RunID).Str("kind", string(stats.Kind)).Logger()
	logger.Info().Str("trigger", string(trigger)).Msg("Full sweep started")

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Full sweep panicked")
			s.reportError(ctx, stats.RunID, fmt.Errorf("full sweep panic: %v", r))
		}
	}()

	suppliers, err := s.suppliers.GetActiveSuppliers(ctx)
	if err != nil {
		err = fmt.Errorf("load active suppliers: %w", err)
		s.reportError(ctx, stats.RunID, err)
		return nil, err
	}

	touched := make(map[GroupKey]bool)
	for _, sup := range suppliers {
		s.sweepSupplier(ctx, logger, sup, stats, touched)
	}

	groups := make([]GroupKey, 0, len(touched))
	for key := range touched {
		groups = append(groups, key)
	}
	suppressed, classifyErrs := s.classifier.ClassifyGroups(ctx, groups)
	stats.Errors += classifyErrs

	if _, err := s.materializer.Rebuild(ctx, string(models.SweepFull)+":"+string(trigger)); err != nil {
		stats.Errors++
		logger.Error().Err(err).Msg("Best-offer rebuild failed")
		s.reportError(ctx, stats.RunID, err)
	}

	stats.FinishedAt = time.Now().UTC()
	s.recordStats(stats)

	if stats.Changed() && s.notifier != nil {
		s.notifier.CatalogChanged(ctx, *stats)
	}

	logger.Info().
		Int("total", stats.TotalProducts).
		Int("new", stats.NewProducts).
		Int("updated", stats.UpdatedProducts).
		Int("decommissioned", stats.DecommissionedProducts).
		Int("suppressed", suppressed).
		Int("errors", stats.Errors).
		Strs("suppliers_skipped", stats.SuppliersSkipped).
		Dur("duration", stats.FinishedAt.Sub(stats.StartedAt)).
		Msg("Full sweep finished")
	return stats, nil
}

// sweepSupplier runs the full pipeline for one supplier. A failing supplier
// is skipped without touching its previously synced data.
func (s *SyncService) sweepSupplier(ctx context.Context, logger zerolog.Logger, sup models.Supplier, stats *models.SweepStats, touched map[GroupKey]bool) {
	adapter := s.registry.Get(sup.Code)
	if adapter == nil {
		stats.Errors++
		stats.SuppliersSkipped = append(stats.SuppliersSkipped, string(sup.Code))
		logger.Error().Str("supplier", string(sup.Code)).Msg("No adapter registered for supplier")
		return
	}

	if err := adapter.HealthCheck(ctx); err != nil {
		stats.Errors++
		stats.SuppliersSkipped = append(stats.SuppliersSkipped, string(sup.Code))
		logger.Warn().Err(err).Str("supplier", string(sup.Code)).Msg("Supplier health check failed, skipping")
		return
	}

	for _, vasType := range models.AllVasTypes {
		records, err := adapter.FetchCatalog(ctx, vasType)
		if err != nil {
			stats.Errors++
			logger.Error().Err(err).
				Str("supplier", string(sup.Code)).
				Str("vas_type", string(vasType)).
				Msg("Catalog fetch failed")
			continue
		}

		seen := make([]string, 0, len(records))
		for _, raw := range records {
			// A record listed upstream stays listed even if its upsert
			// fails; the decommission pass only retires products the
			// supplier no longer returns.
			if raw.SupplierProductID != "" {
				seen = append(seen, raw.SupplierProductID)
			}
			res, err := s.syncer.SyncOne(ctx, sup, raw)
			if err != nil {
				stats.Errors++
				logger.Error().Err(err).
					Str("supplier", string(sup.Code)).
					Str("supplier_product_id", raw.SupplierProductID).
					Msg("Record sync failed")
				continue
			}
			stats.TotalProducts++
			if res.Created {
				stats.NewProducts++
			} else {
				stats.UpdatedProducts++
			}
			touched[GroupKey{BrandID: res.BrandID, VasType: res.VasType}] = true
		}

		n, err := s.products.MarkMissingDiscontinued(ctx, sup.ID, vasType, seen)
		if err != nil {
			stats.Errors++
			logger.Error().Err(err).
				Str("supplier", string(sup.Code)).
				Str("vas_type", string(vasType)).
				Msg("Decommission pass failed")
			continue
		}
		stats.DecommissionedProducts += int(n)
	}
}

// RunPriceRefresh executes the light pass: refresh pricing fields of known
// variants. No structural changes, no classification, no decommissioning,
// and no best-offer rebuild; the materialized table changes only on a full
// sweep.
func (s *SyncService) RunPriceRefresh(ctx context.Context, trigger models.TriggerSource) (*models.SweepStats, error) {
	if !s.running.CompareAndSwap(false, true) {
		log.Warn().Str("trigger", string(trigger)).Msg("Price refresh rejected, another run is in progress")
		return nil, ErrSweepInProgress
	}
	defer s.running.Store(false)

	stats := &models.SweepStats{
		RunID:     uuid.New().String(),
		Kind:      models.SweepRefresh,
		Trigger:   trigger,
		StartedAt: time.Now().UTC(),
	}
	logger := log.With().Str("run_id", stats.RunID).Str("kind", string(stats.Kind)).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Price refresh panicked")
			s.reportError(ctx, stats.RunID, fmt.Errorf("price refresh panic: %v", r))
		}
	}()

	suppliers, err := s.suppliers.GetActiveSuppliers(ctx)
	if err != nil {
		err = fmt.Errorf("load active suppliers: %w", err)
		s.reportError(ctx, stats.RunID, err)
		return nil, err
	}

	for _, sup := range suppliers {
		adapter := s.registry.Get(sup.Code)
		if adapter == nil {
			stats.Errors++
			stats.SuppliersSkipped = append(stats.SuppliersSkipped, string(sup.Code))
			logger.Error().Str("supplier", string(sup.Code)).Msg("No adapter registered for supplier")
			continue
		}
		if err := adapter.HealthCheck(ctx); err != nil {
			stats.Errors++
			stats.SuppliersSkipped = append(stats.SuppliersSkipped, string(sup.Code))
			logger.Warn().Err(err).Str("supplier", string(sup.Code)).Msg("Supplier health check failed, skipping refresh")
			continue
		}

		for _, vasType := range models.AllVasTypes {
			records, err := adapter.FetchCatalog(ctx, vasType)
			if err != nil {
				stats.Errors++
				logger.Error().Err(err).
					Str("supplier", string(sup.Code)).
					Str("vas_type", string(vasType)).
					Msg("Catalog fetch failed during refresh")
				continue
			}
			for _, raw := range records {
				found, err := s.syncer.SyncPricing(ctx, sup, raw)
				if err != nil {
					stats.Errors++
					continue
				}
				if found {
					stats.UpdatedProducts++
				}
			}
		}
	}

	stats.FinishedAt = time.Now().UTC()
	s.recordStats(stats)

	logger.Info().
		Int("updated", stats.UpdatedProducts).
		Int("errors", stats.Errors).
		Dur("duration", stats.FinishedAt.Sub(stats.StartedAt)).
		Msg("Price refresh finished")
	return stats, nil
}

// recordStats stores the finished run under its own schedule slot.
func (s *SyncService) recordStats(stats *models.SweepStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stats.Kind == models.SweepFull {
		s.lastFull = stats
	} else {
		s.lastRefresh = stats
	}
}

func (s *SyncService) reportError(ctx context.Context, runID string, err error) {
	if s.notifier != nil {
		s.notifier.SyncError(ctx, runID, err)
	}
}
