package supplier

import (
	"context"
	"fmt"
	"time"

	"github.com/walletgate/vas-catalog/internal/models"
	"github.com/walletgate/vas-catalog/pkg/flash"
)

// flashCategories maps our VAS types onto Flash's category codes.
var flashCategories = map[models.VasType]string{
	models.VasTypeAirtime:     "AIRTIME",
	models.VasTypeData:        "DATA",
	models.VasTypeElectricity: "ELECTRICITY",
	models.VasTypeBillPayment: "BILL_PAYMENT",
	models.VasTypeVoucher:     "VOUCHER",
}

// FlashAdapter maps the Flash catalog API onto the common adapter contract.
type FlashAdapter struct {
	client  *flash.Client
	timeout time.Duration
}

// NewFlashAdapter constructs a FlashAdapter with a bounded per-call timeout.
func NewFlashAdapter(client *flash.Client, timeout time.Duration) *FlashAdapter {
	return &FlashAdapter{client: client, timeout: timeout}
}

// Code returns the supplier code this adapter serves.
func (a *FlashAdapter) Code() models.SupplierCode {
	return models.SupplierFlash
}

// HealthCheck verifies authentication and reachability.
func (a *FlashAdapter) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.client.Ping(ctx)
}

// FetchCatalog pulls one category and maps Flash's native fields into the
// common raw-record shape.
func (a *FlashAdapter) FetchCatalog(ctx context.Context, vasType models.VasType) ([]models.RawProductRecord, error) {
	category, ok := flashCategories[vasType]
	if !ok {
		return nil, fmt.Errorf("flash does not serve category %q", vasType)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	products, err := a.client.GetCatalog(ctx, category)
	if err != nil {
		return nil, err
	}

	records := make([]models.RawProductRecord, 0, len(products))
	for _, p := range products {
		records = append(records, mapFlashProduct(p, vasType))
	}
	return records, nil
}

// mapFlashProduct normalizes one Flash product. Fixed products may carry only
// a single amount; open-range products state an explicit min/max pair.
func mapFlashProduct(p flash.Product, vasType models.VasType) models.RawProductRecord {
	rec := models.RawProductRecord{
		SupplierProductID: p.ProductCode,
		SupplierVariantID: p.ProductCode,
		Name:              p.ProductName,
		BrandName:         p.Vendor,
		BrandCategory:     p.VendorCategory,
		VasType:           vasType,
		Provider:          p.Vendor,
		MinAmount:         p.MinimumAmount,
		MaxAmount:         p.MaximumAmount,
		Denominations:     p.Denominations,
		Commission:        p.CommissionRate,
		IsPromotional:     p.Promotional,
		PromoDiscount:     p.PromoDiscount,
	}

	switch p.AmountType {
	case "RANGE":
		rec.PriceTypeHint = models.PriceTypeVariable
	case "FIXED":
		if rec.MaxAmount == 0 {
			rec.MaxAmount = rec.MinAmount
		}
	}
	return rec
}
