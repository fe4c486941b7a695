package models

import (
	"time"

	"github.com/lib/pq"
)

// PriceType says whether a variant is a fixed denomination or an open,
// user-entered amount.
type PriceType string

const (
	PriceTypeFixed    PriceType = "fixed"
	PriceTypeVariable PriceType = "variable"
)

// ProductVariant is the purchasable unit: one row per
// (product, supplier, supplier variant id). Amounts are integer cents.
// Invariants: MinAmount <= MaxAmount; fixed variants have MinAmount ==
// MaxAmount or a single-element denominations array; variable variants have
// MinAmount < MaxAmount.
type ProductVariant struct {
	ID                int           `db:"id" json:"id"`
	ProductID         int           `db:"product_id" json:"productId"`
	SupplierID        int           `db:"supplier_id" json:"supplierId"`
	SupplierVariantID string        `db:"supplier_variant_id" json:"supplierVariantId"`
	VasType           VasType       `db:"vas_type" json:"vasType"`
	Provider          string        `db:"provider" json:"provider"`
	PriceType         PriceType     `db:"price_type" json:"priceType"`
	PriceTypeHint     *PriceType    `db:"price_type_hint" json:"-"`
	PriceTypeOverride *PriceType    `db:"price_type_override" json:"priceTypeOverride,omitempty"`
	MinAmount         int64         `db:"min_amount" json:"minAmount"`
	MaxAmount         int64         `db:"max_amount" json:"maxAmount"`
	Denominations     pq.Int64Array `db:"denominations" json:"denominations,omitempty"`
	Commission        float64       `db:"commission" json:"commission"`
	IsPromotional     bool          `db:"is_promotional" json:"isPromotional"`
	PromoDiscount     float64       `db:"promo_discount" json:"promoDiscount,omitempty"`
	Status            ProductStatus `db:"status" json:"status"`
	LastSyncedAt      *time.Time    `db:"last_synced_at" json:"lastSyncedAt,omitempty"`
	CreatedAt         time.Time     `db:"created_at" json:"-"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updatedAt"`

	// Joined fields
	SupplierCode     SupplierCode `db:"supplier_code" json:"supplierCode,omitempty"`
	SupplierPriority int          `db:"supplier_priority" json:"-"`
	ProductName      string       `db:"product_name" json:"productName,omitempty"`
	BrandID          int          `db:"brand_id" json:"brandId,omitempty"`
	BrandName        string       `db:"brand_name" json:"brandName,omitempty"`
	BrandCategory    string       `db:"brand_category" json:"-"`
}

// EffectivePriceType returns the operator override when set, otherwise the
// derived price type. The override is authoritative and never re-derived.
func (v ProductVariant) EffectivePriceType() PriceType {
	if v.PriceTypeOverride != nil {
		return *v.PriceTypeOverride
	}
	return v.PriceType
}

// DenominationSet enumerates the discrete price points a fixed variant
// contributes to the best-offer table. Variable variants contribute none.
func (v ProductVariant) DenominationSet() []int64 {
	if v.EffectivePriceType() == PriceTypeVariable {
		return nil
	}
	if len(v.Denominations) > 0 {
		out := make([]int64, len(v.Denominations))
		copy(out, v.Denominations)
		return out
	}
	if v.MinAmount > 0 && v.MinAmount == v.MaxAmount {
		return []int64{v.MinAmount}
	}
	return nil
}
