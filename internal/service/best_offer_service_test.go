package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/walletgate/vas-catalog/internal/models"
)

type fakeOfferSource struct {
	variants []models.ProductVariant
	err      error
}

func (f *fakeOfferSource) GetMaterializable(ctx context.Context) ([]models.ProductVariant, error) {
	return f.variants, f.err
}

type fakeOfferSink struct {
	offers []models.BestOffer
	audit  *models.CatalogRefreshAudit
	err    error
	calls  int
}

func (f *fakeOfferSink) Rebuild(ctx context.Context, offers []models.BestOffer, audit *models.CatalogRefreshAudit) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.offers = offers
	f.audit = audit
	return nil
}

func TestSelectWinnersHighestCommissionWins(t *testing.T) {
	version := time.Now().UTC()

	// Input arrives sorted by commission descending, as the repository
	// guarantees.
	variants := []models.ProductVariant{
		{ID: 1, SupplierID: 2, VasType: models.VasTypeAirtime, Provider: "MTN", MinAmount: 1000, MaxAmount: 1000, Commission: 5.0},
		{ID: 2, SupplierID: 1, VasType: models.VasTypeAirtime, Provider: "MTN", MinAmount: 1000, MaxAmount: 1000, Commission: 3.5},
	}

	offers := selectWinners(variants, version)
	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1", len(offers))
	}
	if offers[0].VariantID != 1 || offers[0].SupplierID != 2 {
		t.Errorf("winner = variant %d supplier %d, want variant 1 supplier 2", offers[0].VariantID, offers[0].SupplierID)
	}
	if offers[0].Commission != 5.0 {
		t.Errorf("winner commission = %v, want 5.0", offers[0].Commission)
	}
	if !offers[0].CatalogVersion.Equal(version) {
		t.Error("offer must carry the run's catalog version")
	}
}

func TestSelectWinnersExpandsDenominations(t *testing.T) {
	variants := []models.ProductVariant{
		{ID: 1, VasType: models.VasTypeData, Provider: "Vodacom", Denominations: pq.Int64Array{1000, 2000, 5000}, Commission: 4.0},
	}

	offers := selectWinners(variants, time.Now())
	if len(offers) != 3 {
		t.Fatalf("got %d offers, want one per denomination", len(offers))
	}
	seen := map[int64]bool{}
	for _, o := range offers {
		seen[o.DenominationCents] = true
	}
	for _, want := range []int64{1000, 2000, 5000} {
		if !seen[want] {
			t.Errorf("missing offer for denomination %d", want)
		}
	}
}

func TestSelectWinnersSkipsVariableVariants(t *testing.T) {
	variants := []models.ProductVariant{
		{ID: 1, VasType: models.VasTypeAirtime, Provider: "MTN", PriceType: models.PriceTypeVariable, MinAmount: 500, MaxAmount: 100000, Commission: 9.0},
		{ID: 2, VasType: models.VasTypeAirtime, Provider: "MTN", MinAmount: 1000, MaxAmount: 1000, Commission: 1.0},
	}

	offers := selectWinners(variants, time.Now())
	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1", len(offers))
	}
	if offers[0].VariantID != 2 {
		t.Errorf("winner = variant %d, want the fixed variant 2", offers[0].VariantID)
	}
}

func TestSelectWinnersKeysAreProviderScoped(t *testing.T) {
	variants := []models.ProductVariant{
		{ID: 1, VasType: models.VasTypeAirtime, Provider: "MTN", MinAmount: 1000, MaxAmount: 1000, Commission: 5.0},
		{ID: 2, VasType: models.VasTypeAirtime, Provider: "Vodacom", MinAmount: 1000, MaxAmount: 1000, Commission: 3.0},
	}

	offers := selectWinners(variants, time.Now())
	if len(offers) != 2 {
		t.Fatalf("got %d offers, want one per provider", len(offers))
	}
}

func TestRebuildWritesAudit(t *testing.T) {
	source := &fakeOfferSource{variants: []models.ProductVariant{
		{ID: 1, SupplierID: 1, VasType: models.VasTypeAirtime, Provider: "MTN", MinAmount: 1000, MaxAmount: 1000, Commission: 5.0},
	}}
	sink := &fakeOfferSink{}

	svc := NewBestOfferService(source, sink, nil)
	audit, err := svc.Rebuild(context.Background(), "full_sweep:manual")
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if sink.calls != 1 {
		t.Fatalf("sink called %d times, want 1", sink.calls)
	}
	if audit.RunID == "" {
		t.Error("audit must carry a run id")
	}
	if audit.TriggeredBy != "full_sweep:manual" {
		t.Errorf("TriggeredBy = %q", audit.TriggeredBy)
	}
	if audit.RowsAffected != 1 {
		t.Errorf("RowsAffected = %d, want 1", audit.RowsAffected)
	}
	if len(sink.offers) != 1 {
		t.Errorf("published %d offers, want 1", len(sink.offers))
	}
}

func TestRebuildSinkFailurePropagates(t *testing.T) {
	source := &fakeOfferSource{variants: []models.ProductVariant{
		{ID: 1, VasType: models.VasTypeAirtime, Provider: "MTN", MinAmount: 1000, MaxAmount: 1000, Commission: 5.0},
	}}
	sink := &fakeOfferSink{err: errors.New("deadlock detected")}

	svc := NewBestOfferService(source, sink, nil)
	if _, err := svc.Rebuild(context.Background(), "schedule"); err == nil {
		t.Fatal("Rebuild() must propagate the sink error")
	}
	if sink.offers != nil {
		t.Error("no offers must be recorded when the sink fails")
	}
}
