package models

import "time"

// BestOffer is one row of the materialized best-deal index: the winning
// variant for a (vasType, provider, denomination) key. The table is fully
// derived and only ever rebuilt wholesale, never hand-edited.
type BestOffer struct {
	ID                int       `db:"id" json:"id"`
	VasType           VasType   `db:"vas_type" json:"vasType"`
	Provider          string    `db:"provider" json:"provider"`
	DenominationCents int64     `db:"denomination_cents" json:"denominationCents"`
	VariantID         int       `db:"variant_id" json:"variantId"`
	SupplierID        int       `db:"supplier_id" json:"supplierId"`
	Commission        float64   `db:"commission" json:"commission"`
	CatalogVersion    time.Time `db:"catalog_version" json:"catalogVersion"`
	CreatedAt         time.Time `db:"created_at" json:"-"`

	// Joined fields
	SupplierCode SupplierCode `db:"supplier_code" json:"supplierCode,omitempty"`
	ProductName  string       `db:"product_name" json:"productName,omitempty"`
}
