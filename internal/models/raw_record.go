package models

// RawProductRecord is the common shape every supplier adapter maps its native
// catalog payload into before the upsert engine sees it. Amounts are integer
// cents; a zero MaxAmount means the supplier did not state one.
type RawProductRecord struct {
	SupplierProductID string
	SupplierVariantID string
	Name              string
	BrandName         string
	BrandCategory     string
	VasType           VasType
	Provider          string

	// PriceTypeHint carries explicit supplier metadata ("range", "open")
	// when present; empty means the classifier decides.
	PriceTypeHint PriceType

	MinAmount     int64
	MaxAmount     int64
	Denominations []int64
	Commission    float64
	IsPromotional bool
	PromoDiscount float64
}
