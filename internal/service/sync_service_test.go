package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/walletgate/vas-catalog/internal/models"
	"github.com/walletgate/vas-catalog/internal/supplier"
)

type fakeAdapter struct {
	code      models.SupplierCode
	healthErr error
	records   map[models.VasType][]models.RawProductRecord
	fetchErr  error
}

func (f *fakeAdapter) Code() models.SupplierCode { return f.code }

func (f *fakeAdapter) HealthCheck(ctx context.Context) error { return f.healthErr }

func (f *fakeAdapter) FetchCatalog(ctx context.Context, vasType models.VasType) ([]models.RawProductRecord, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.records[vasType], nil
}

type fakeSupplierStore struct {
	suppliers []models.Supplier
	err       error
}

func (f *fakeSupplierStore) GetActiveSuppliers(ctx context.Context) ([]models.Supplier, error) {
	return f.suppliers, f.err
}

type fakeSyncer struct {
	synced  []models.RawProductRecord
	created map[string]bool
	failFor map[string]bool
	pricing []models.RawProductRecord
}

func (f *fakeSyncer) SyncOne(ctx context.Context, sup models.Supplier, raw models.RawProductRecord) (*UpsertResult, error) {
	if f.failFor[raw.SupplierProductID] {
		return nil, errors.New("malformed record")
	}
	f.synced = append(f.synced, raw)
	return &UpsertResult{Created: f.created[raw.SupplierProductID], BrandID: 1, VasType: raw.VasType}, nil
}

func (f *fakeSyncer) SyncPricing(ctx context.Context, sup models.Supplier, raw models.RawProductRecord) (bool, error) {
	f.pricing = append(f.pricing, raw)
	return true, nil
}

type fakeGroupClassifier struct {
	groups []GroupKey
}

func (f *fakeGroupClassifier) ClassifyGroups(ctx context.Context, groups []GroupKey) (int, int) {
	f.groups = append(f.groups, groups...)
	return 0, 0
}

type fakeRebuilder struct {
	calls    int
	triggers []string
	block    chan struct{}
	started  chan struct{}
}

func (f *fakeRebuilder) Rebuild(ctx context.Context, trigger string) (*models.CatalogRefreshAudit, error) {
	f.calls++
	f.triggers = append(f.triggers, trigger)
	if f.started != nil {
		close(f.started)
		f.started = nil
	}
	if f.block != nil {
		<-f.block
	}
	return &models.CatalogRefreshAudit{RunID: "test"}, nil
}

type fakeDecommissioner struct {
	seen        map[string][]string
	discontinue map[string][]string
}

func (f *fakeDecommissioner) MarkMissingDiscontinued(ctx context.Context, supplierID int, vasType models.VasType, seen []string) (int64, error) {
	if f.seen == nil {
		f.seen = map[string][]string{}
	}
	key := string(vasType)
	f.seen[key] = append(f.seen[key], seen...)

	var n int64
	for _, id := range f.discontinue[key] {
		missing := true
		for _, s := range seen {
			if s == id {
				missing = false
				break
			}
		}
		if missing {
			n++
		}
	}
	return n, nil
}

type fakeNotifier struct {
	changed []models.SweepStats
	errs    []string
}

func (f *fakeNotifier) CatalogChanged(ctx context.Context, stats models.SweepStats) {
	f.changed = append(f.changed, stats)
}

func (f *fakeNotifier) SyncError(ctx context.Context, runID string, cause error) {
	f.errs = append(f.errs, runID)
}

func testSchedule() SyncSchedule {
	return SyncSchedule{
		DailySweepAt:    "02:00",
		Location:        time.UTC,
		RefreshInterval: time.Hour,
	}
}

func newTestSyncService(registry *supplier.Registry, store *fakeSupplierStore, syncer *fakeSyncer, rebuilder *fakeRebuilder, decom *fakeDecommissioner, notifier *fakeNotifier) *SyncService {
	return NewSyncService(registry, store, syncer, &fakeGroupClassifier{}, rebuilder, decom, notifier, testSchedule())
}

func airtimeRecord(id, name string) models.RawProductRecord {
	return models.RawProductRecord{
		SupplierProductID: id,
		SupplierVariantID: id,
		Name:              name,
		BrandName:         "MTN",
		VasType:           models.VasTypeAirtime,
		Provider:          "MTN",
		MinAmount:         1000,
		MaxAmount:         1000,
	}
}

func TestRunFullSweepRejectsConcurrentRun(t *testing.T) {
	registry := supplier.NewRegistry()
	registry.Register(&fakeAdapter{code: models.SupplierFlash})

	store := &fakeSupplierStore{suppliers: []models.Supplier{{ID: 1, Code: models.SupplierFlash, IsActive: true}}}
	rebuilder := &fakeRebuilder{block: make(chan struct{}), started: make(chan struct{})}
	started := rebuilder.started

	svc := newTestSyncService(registry, store, &fakeSyncer{}, rebuilder, &fakeDecommissioner{}, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := svc.RunFullSweep(context.Background(), models.TriggerSchedule); err != nil {
			t.Errorf("first sweep failed: %v", err)
		}
	}()

	<-started
	if _, err := svc.RunFullSweep(context.Background(), models.TriggerManual); !errors.Is(err, ErrSweepInProgress) {
		t.Errorf("concurrent sweep error = %v, want ErrSweepInProgress", err)
	}
	if _, err := svc.RunPriceRefresh(context.Background(), models.TriggerManual); !errors.Is(err, ErrSweepInProgress) {
		t.Errorf("concurrent refresh error = %v, want ErrSweepInProgress", err)
	}

	close(rebuilder.block)
	<-done

	// The guard must release once the run completes.
	if _, err := svc.RunPriceRefresh(context.Background(), models.TriggerManual); err != nil {
		t.Errorf("refresh after completed sweep failed: %v", err)
	}
}

func TestRunFullSweepSkipsUnhealthySupplier(t *testing.T) {
	registry := supplier.NewRegistry()
	registry.Register(&fakeAdapter{code: models.SupplierFlash, healthErr: errors.New("401 unauthorized")})
	registry.Register(&fakeAdapter{
		code: models.SupplierMobileMart,
		records: map[models.VasType][]models.RawProductRecord{
			models.VasTypeAirtime: {airtimeRecord("MM-1", "MTN R10")},
		},
	})

	store := &fakeSupplierStore{suppliers: []models.Supplier{
		{ID: 1, Code: models.SupplierFlash, IsActive: true},
		{ID: 2, Code: models.SupplierMobileMart, IsActive: true},
	}}
	syncer := &fakeSyncer{created: map[string]bool{"MM-1": true}}
	decom := &fakeDecommissioner{}
	notifier := &fakeNotifier{}

	svc := newTestSyncService(registry, store, syncer, &fakeRebuilder{}, decom, notifier)
	stats, err := svc.RunFullSweep(context.Background(), models.TriggerSchedule)
	if err != nil {
		t.Fatalf("RunFullSweep() error = %v", err)
	}

	if stats.Errors == 0 {
		t.Error("a skipped supplier must count as an error")
	}
	if len(stats.SuppliersSkipped) != 1 || stats.SuppliersSkipped[0] != "flash" {
		t.Errorf("SuppliersSkipped = %v, want [flash]", stats.SuppliersSkipped)
	}
	if len(syncer.synced) != 1 || syncer.synced[0].SupplierProductID != "MM-1" {
		t.Errorf("synced = %v, want only the healthy supplier's record", syncer.synced)
	}
	if stats.NewProducts != 1 {
		t.Errorf("NewProducts = %d, want 1", stats.NewProducts)
	}
	// The healthy supplier changed the catalog, so downstream is notified.
	if len(notifier.changed) != 1 {
		t.Errorf("CatalogChanged fired %d times, want 1", len(notifier.changed))
	}
}

func TestRunFullSweepMalformedRecordDoesNotAbort(t *testing.T) {
	registry := supplier.NewRegistry()
	registry.Register(&fakeAdapter{
		code: models.SupplierFlash,
		records: map[models.VasType][]models.RawProductRecord{
			models.VasTypeAirtime: {
				airtimeRecord("F-BAD", "Broken"),
				airtimeRecord("F-OK", "MTN R10"),
			},
		},
	})

	store := &fakeSupplierStore{suppliers: []models.Supplier{{ID: 1, Code: models.SupplierFlash, IsActive: true}}}
	syncer := &fakeSyncer{failFor: map[string]bool{"F-BAD": true}}
	decom := &fakeDecommissioner{}

	svc := newTestSyncService(registry, store, syncer, &fakeRebuilder{}, decom, nil)
	stats, err := svc.RunFullSweep(context.Background(), models.TriggerManual)
	if err != nil {
		t.Fatalf("RunFullSweep() error = %v", err)
	}

	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1 for the malformed record", stats.Errors)
	}
	if len(syncer.synced) != 1 {
		t.Errorf("synced %d records, want the good one", len(syncer.synced))
	}
	// The failed record is still listed upstream, so it must stay in the
	// seen list or the decommission pass would retire a live product over
	// one flaky transaction.
	seen := decom.seen["airtime"]
	if len(seen) != 2 {
		t.Fatalf("seen = %v, want both listed records", seen)
	}
	found := false
	for _, id := range seen {
		if id == "F-BAD" {
			found = true
		}
	}
	if !found {
		t.Error("record with a failed transaction missing from the seen list")
	}
}

func TestRunFullSweepFailedRecordIsNotDecommissioned(t *testing.T) {
	registry := supplier.NewRegistry()
	registry.Register(&fakeAdapter{
		code: models.SupplierFlash,
		records: map[models.VasType][]models.RawProductRecord{
			models.VasTypeAirtime: {
				airtimeRecord("F-GOOD", "MTN R10"),
				airtimeRecord("F-FLAKY", "MTN R20"),
			},
		},
	})

	store := &fakeSupplierStore{suppliers: []models.Supplier{{ID: 1, Code: models.SupplierFlash, IsActive: true}}}
	syncer := &fakeSyncer{failFor: map[string]bool{"F-FLAKY": true}}
	// Retire exactly the listed products missing from the seen slice, the
	// way the repository does.
	decom := &fakeDecommissioner{discontinue: map[string][]string{
		"airtime": {"F-GOOD", "F-FLAKY"},
	}}

	svc := newTestSyncService(registry, store, syncer, &fakeRebuilder{}, decom, nil)
	stats, err := svc.RunFullSweep(context.Background(), models.TriggerSchedule)
	if err != nil {
		t.Fatalf("RunFullSweep() error = %v", err)
	}

	if stats.DecommissionedProducts != 0 {
		t.Errorf("DecommissionedProducts = %d, want 0; a listed product must survive its own failed transaction", stats.DecommissionedProducts)
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
}

func TestRunFullSweepNoChangesNoNotification(t *testing.T) {
	registry := supplier.NewRegistry()
	registry.Register(&fakeAdapter{
		code: models.SupplierFlash,
		records: map[models.VasType][]models.RawProductRecord{
			models.VasTypeAirtime: {airtimeRecord("F-1", "MTN R10")},
		},
	})

	store := &fakeSupplierStore{suppliers: []models.Supplier{{ID: 1, Code: models.SupplierFlash, IsActive: true}}}
	notifier := &fakeNotifier{}

	// Nothing created, nothing decommissioned: an update-only run.
	svc := newTestSyncService(registry, store, &fakeSyncer{}, &fakeRebuilder{}, &fakeDecommissioner{}, notifier)
	stats, err := svc.RunFullSweep(context.Background(), models.TriggerSchedule)
	if err != nil {
		t.Fatalf("RunFullSweep() error = %v", err)
	}
	if stats.Changed() {
		t.Error("update-only run must not count as changed")
	}
	if len(notifier.changed) != 0 {
		t.Error("CatalogChanged must not fire for an update-only run")
	}
}

func TestRunPriceRefreshUsesLightPath(t *testing.T) {
	registry := supplier.NewRegistry()
	registry.Register(&fakeAdapter{
		code: models.SupplierFlash,
		records: map[models.VasType][]models.RawProductRecord{
			models.VasTypeAirtime: {airtimeRecord("F-1", "MTN R10")},
		},
	})

	store := &fakeSupplierStore{suppliers: []models.Supplier{{ID: 1, Code: models.SupplierFlash, IsActive: true}}}
	syncer := &fakeSyncer{}
	rebuilder := &fakeRebuilder{}

	svc := newTestSyncService(registry, store, syncer, rebuilder, &fakeDecommissioner{}, nil)
	stats, err := svc.RunPriceRefresh(context.Background(), models.TriggerSchedule)
	if err != nil {
		t.Fatalf("RunPriceRefresh() error = %v", err)
	}

	if len(syncer.pricing) != 1 {
		t.Errorf("pricing updates = %d, want 1", len(syncer.pricing))
	}
	if len(syncer.synced) != 0 {
		t.Error("refresh must never run the full upsert path")
	}
	if rebuilder.calls != 0 {
		t.Errorf("rebuild calls = %d, want 0; only a full sweep materializes", rebuilder.calls)
	}
	if stats.Kind != models.SweepRefresh {
		t.Errorf("Kind = %q, want %q", stats.Kind, models.SweepRefresh)
	}
}

func TestRunPriceRefreshCountsUnhealthySupplier(t *testing.T) {
	registry := supplier.NewRegistry()
	registry.Register(&fakeAdapter{code: models.SupplierFlash, healthErr: errors.New("timeout")})

	store := &fakeSupplierStore{suppliers: []models.Supplier{{ID: 1, Code: models.SupplierFlash, IsActive: true}}}

	svc := newTestSyncService(registry, store, &fakeSyncer{}, &fakeRebuilder{}, &fakeDecommissioner{}, nil)
	stats, err := svc.RunPriceRefresh(context.Background(), models.TriggerSchedule)
	if err != nil {
		t.Fatalf("RunPriceRefresh() error = %v", err)
	}

	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1 for the skipped supplier", stats.Errors)
	}
	if len(stats.SuppliersSkipped) != 1 || stats.SuppliersSkipped[0] != "flash" {
		t.Errorf("SuppliersSkipped = %v, want [flash]", stats.SuppliersSkipped)
	}
}

func TestStatusTracksSchedulesSeparately(t *testing.T) {
	registry := supplier.NewRegistry()
	registry.Register(&fakeAdapter{code: models.SupplierFlash})

	store := &fakeSupplierStore{suppliers: []models.Supplier{{ID: 1, Code: models.SupplierFlash, IsActive: true}}}

	svc := newTestSyncService(registry, store, &fakeSyncer{}, &fakeRebuilder{}, &fakeDecommissioner{}, nil)

	if _, err := svc.RunFullSweep(context.Background(), models.TriggerManual); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if _, err := svc.RunPriceRefresh(context.Background(), models.TriggerManual); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	status := svc.Status()
	if status.Running {
		t.Error("no run should be in progress")
	}
	if status.LastFullSweep == nil || status.LastFullSweep.Kind != models.SweepFull {
		t.Error("full sweep stats missing or mislabeled")
	}
	if status.LastPriceRefresh == nil || status.LastPriceRefresh.Kind != models.SweepRefresh {
		t.Error("price refresh stats missing or mislabeled")
	}
}
