package models

import "time"

// SupplierCode identifies an upstream catalog supplier.
type SupplierCode string

const (
	SupplierFlash      SupplierCode = "flash"
	SupplierMobileMart SupplierCode = "mobilemart"
)

// Supplier represents an upstream partner. Rows are seeded by migration and
// read-only to the sync engine.
type Supplier struct {
	ID        int          `db:"id" json:"id"`
	Code      SupplierCode `db:"code" json:"code"`
	Name      string       `db:"name" json:"name"`
	IsActive  bool         `db:"is_active" json:"isActive"`
	Priority  int          `db:"priority" json:"priority"`
	CreatedAt time.Time    `db:"created_at" json:"-"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
}
