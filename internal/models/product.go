package models

import "time"

// VasType enumerates the supported value-added service categories.
type VasType string

const (
	VasTypeAirtime     VasType = "airtime"
	VasTypeData        VasType = "data"
	VasTypeElectricity VasType = "electricity"
	VasTypeBillPayment VasType = "bill_payment"
	VasTypeVoucher     VasType = "voucher"
)

// AllVasTypes lists every category a sweep iterates per supplier.
var AllVasTypes = []VasType{
	VasTypeAirtime,
	VasTypeData,
	VasTypeElectricity,
	VasTypeBillPayment,
	VasTypeVoucher,
}

// ProductStatus enumerates product and variant lifecycle states.
type ProductStatus string

const (
	StatusActive       ProductStatus = "active"
	StatusInactive     ProductStatus = "inactive"
	StatusDiscontinued ProductStatus = "discontinued"
)

// Product is one logical offering from one supplier. The pair
// (supplier_id, supplier_product_id) is unique.
type Product struct {
	ID                int           `db:"id" json:"id"`
	SupplierID        int           `db:"supplier_id" json:"supplierId"`
	SupplierProductID string        `db:"supplier_product_id" json:"supplierProductId"`
	BrandID           int           `db:"brand_id" json:"brandId"`
	Name              string        `db:"name" json:"name"`
	VasType           VasType       `db:"vas_type" json:"vasType"`
	Status            ProductStatus `db:"status" json:"status"`
	CreatedAt         time.Time     `db:"created_at" json:"-"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updatedAt"`
}
