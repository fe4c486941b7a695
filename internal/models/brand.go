package models

import "time"

// ProductBrand is a content owner/brand (mobile network, retailer, streaming
// service). Created on first sighting during a sweep and keyed by the
// normalized brand name so both suppliers resolve to the same row.
type ProductBrand struct {
	ID            int       `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	NormalizedKey string    `db:"normalized_key" json:"normalizedKey"`
	Category      string    `db:"category" json:"category"`
	CreatedAt     time.Time `db:"created_at" json:"-"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}
