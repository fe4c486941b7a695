package service

import (
	"context"
	"testing"

	"github.com/walletgate/vas-catalog/internal/models"
)

type fakeComparisonSource struct {
	variants []models.ProductVariant
}

func (f *fakeComparisonSource) GetActiveByVasType(ctx context.Context, vasType models.VasType) ([]models.ProductVariant, error) {
	if vasType == "" {
		return f.variants, nil
	}
	var out []models.ProductVariant
	for _, v := range f.variants {
		if v.VasType == vasType {
			out = append(out, v)
		}
	}
	return out, nil
}

func testRanking() map[models.SupplierCode]int {
	return map[models.SupplierCode]int{
		models.SupplierFlash:      0,
		models.SupplierMobileMart: 1,
	}
}

func TestNormalizeVoucherName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme R50", "acme"},
		{"Acme Gift Card", "acme"},
		{"Acme Gift Card R50", "acme"},
		{"Acme E-Voucher", "acme"},
		{"Takealot Voucher 100", "takealot"},
		{"Uber", "uber"},
		{"Voucher", "voucher"},
	}
	for _, tt := range tests {
		if got := normalizeVoucherName(tt.in); got != tt.want {
			t.Errorf("normalizeVoucherName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBestDealsCollapsesVoucherNames(t *testing.T) {
	source := &fakeComparisonSource{variants: []models.ProductVariant{
		{
			ID: 1, VasType: models.VasTypeVoucher, ProductName: "Acme R50",
			SupplierVariantID: "A-50", SupplierCode: models.SupplierFlash,
			MinAmount: 5000, MaxAmount: 5000, Commission: 3.0,
		},
		{
			ID: 2, VasType: models.VasTypeVoucher, ProductName: "Acme Gift Card",
			SupplierVariantID: "MM-ACME", SupplierCode: models.SupplierMobileMart,
			MinAmount: 5000, MaxAmount: 5000, Commission: 5.0,
		},
	}}

	svc := NewComparisonService(source, testRanking())
	deals, err := svc.BestDeals(context.Background(), models.VasTypeVoucher)
	if err != nil {
		t.Fatalf("BestDeals() error = %v", err)
	}
	if len(deals) != 1 {
		t.Fatalf("got %d deals, want the two listings collapsed into 1", len(deals))
	}
	deal := deals[0]
	if deal.Winner.ID != 2 {
		t.Errorf("winner = variant %d, want the 5%% commission listing", deal.Winner.ID)
	}
	if len(deal.Alternatives) != 1 || deal.Alternatives[0].ID != 1 {
		t.Errorf("alternatives = %+v, want the losing listing", deal.Alternatives)
	}
}

func TestBestDealsTieBreakChain(t *testing.T) {
	source := &fakeComparisonSource{variants: []models.ProductVariant{
		{
			ID: 1, VasType: models.VasTypeVoucher, ProductName: "Acme Voucher",
			SupplierCode: models.SupplierMobileMart, MinAmount: 5000, Commission: 3.0,
		},
		{
			ID: 2, VasType: models.VasTypeVoucher, ProductName: "Acme Voucher",
			SupplierCode: models.SupplierFlash, MinAmount: 5000, Commission: 3.0,
		},
	}}

	svc := NewComparisonService(source, testRanking())
	deals, err := svc.BestDeals(context.Background(), models.VasTypeVoucher)
	if err != nil {
		t.Fatalf("BestDeals() error = %v", err)
	}
	if len(deals) != 1 {
		t.Fatalf("got %d deals, want 1", len(deals))
	}
	// Equal commission and price: the configured ranking decides.
	if deals[0].Winner.SupplierCode != models.SupplierFlash {
		t.Errorf("winner supplier = %q, want flash by configured ranking", deals[0].Winner.SupplierCode)
	}
}

func TestBestDealsNonVoucherGroupsByVariantID(t *testing.T) {
	source := &fakeComparisonSource{variants: []models.ProductVariant{
		{
			ID: 1, VasType: models.VasTypeAirtime, ProductName: "MTN R10",
			SupplierVariantID: "MTN-10", SupplierCode: models.SupplierFlash,
			MinAmount: 1000, MaxAmount: 1000, Commission: 3.0,
		},
		{
			ID: 2, VasType: models.VasTypeAirtime, ProductName: "MTN R20",
			SupplierVariantID: "MTN-20", SupplierCode: models.SupplierFlash,
			MinAmount: 2000, MaxAmount: 2000, Commission: 3.0,
		},
	}}

	svc := NewComparisonService(source, testRanking())
	deals, err := svc.BestDeals(context.Background(), models.VasTypeAirtime)
	if err != nil {
		t.Fatalf("BestDeals() error = %v", err)
	}
	if len(deals) != 2 {
		t.Fatalf("got %d deals, want distinct airtime denominations kept apart", len(deals))
	}
}

func TestPromotionsSortedByDiscount(t *testing.T) {
	source := &fakeComparisonSource{variants: []models.ProductVariant{
		{ID: 1, VasType: models.VasTypeVoucher, ProductName: "A", IsPromotional: true, PromoDiscount: 5},
		{ID: 2, VasType: models.VasTypeVoucher, ProductName: "B"},
		{ID: 3, VasType: models.VasTypeVoucher, ProductName: "C", IsPromotional: true, PromoDiscount: 10},
	}}

	svc := NewComparisonService(source, testRanking())
	promos, err := svc.Promotions(context.Background())
	if err != nil {
		t.Fatalf("Promotions() error = %v", err)
	}
	if len(promos) != 2 {
		t.Fatalf("got %d promotions, want 2", len(promos))
	}
	if promos[0].ID != 3 {
		t.Errorf("first promotion = variant %d, want the deepest discount first", promos[0].ID)
	}
}

func TestRecommendationsCoverAllKinds(t *testing.T) {
	source := &fakeComparisonSource{variants: []models.ProductVariant{
		{ID: 1, VasType: models.VasTypeAirtime, ProductName: "MTN R10", SupplierCode: models.SupplierFlash, Commission: 6.0},
		{ID: 2, VasType: models.VasTypeVoucher, ProductName: "Acme", SupplierCode: models.SupplierMobileMart, Commission: 2.0, IsPromotional: true, PromoDiscount: 15},
		{ID: 3, VasType: models.VasTypeData, ProductName: "Vodacom 1GB", SupplierCode: models.SupplierMobileMart, Commission: 3.0},
	}}

	svc := NewComparisonService(source, testRanking())
	recs, err := svc.Recommendations(context.Background())
	if err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}

	kinds := map[string]models.SupplierCode{}
	for _, r := range recs {
		kinds[r.Kind] = r.Supplier
	}
	if kinds["best_value"] != models.SupplierFlash {
		t.Errorf("best_value = %q, want flash", kinds["best_value"])
	}
	if kinds["best_promotion"] != models.SupplierMobileMart {
		t.Errorf("best_promotion = %q, want mobilemart", kinds["best_promotion"])
	}
	if kinds["widest_selection"] != models.SupplierMobileMart {
		t.Errorf("widest_selection = %q, want mobilemart with two variants", kinds["widest_selection"])
	}
}
