package service

import (
	"testing"

	"github.com/walletgate/vas-catalog/internal/models"
)

func TestNormalizeRaw(t *testing.T) {
	base := models.RawProductRecord{
		SupplierProductID: "P-1",
		SupplierVariantID: "V-1",
		Name:              "MTN R10",
		BrandName:         "MTN",
		VasType:           models.VasTypeAirtime,
	}

	t.Run("swaps inverted amounts", func(t *testing.T) {
		raw := base
		raw.MinAmount = 5000
		raw.MaxAmount = 1000

		got, err := normalizeRaw(raw)
		if err != nil {
			t.Fatalf("normalizeRaw() error = %v", err)
		}
		if got.MinAmount != 1000 || got.MaxAmount != 5000 {
			t.Errorf("amounts = %d..%d, want 1000..5000", got.MinAmount, got.MaxAmount)
		}
	})

	t.Run("single denomination collapses to a price point", func(t *testing.T) {
		raw := base
		raw.Denominations = []int64{2500}

		got, err := normalizeRaw(raw)
		if err != nil {
			t.Fatalf("normalizeRaw() error = %v", err)
		}
		if got.MinAmount != 2500 || got.MaxAmount != 2500 {
			t.Errorf("amounts = %d..%d, want the collapsed point", got.MinAmount, got.MaxAmount)
		}
		if got.Denominations != nil {
			t.Error("collapsed denomination list must be dropped")
		}
	})

	t.Run("variable hint without a span is dropped", func(t *testing.T) {
		raw := base
		raw.PriceTypeHint = models.PriceTypeVariable
		raw.MinAmount = 1000
		raw.MaxAmount = 1000

		got, err := normalizeRaw(raw)
		if err != nil {
			t.Fatalf("normalizeRaw() error = %v", err)
		}
		if got.PriceTypeHint != "" {
			t.Errorf("hint = %q, want dropped", got.PriceTypeHint)
		}
	})

	t.Run("missing identifiers rejected", func(t *testing.T) {
		raw := base
		raw.SupplierVariantID = ""
		if _, err := normalizeRaw(raw); err == nil {
			t.Error("record without variant id must be rejected")
		}
	})

	t.Run("missing brand rejected", func(t *testing.T) {
		raw := base
		raw.BrandName = ""
		if _, err := normalizeRaw(raw); err == nil {
			t.Error("record without brand must be rejected")
		}
	})
}
