package supplier

import (
	"context"
	"fmt"
	"time"

	"github.com/walletgate/vas-catalog/internal/models"
	"github.com/walletgate/vas-catalog/pkg/mobilemart"
)

// mobilemartVasTypes maps our VAS types onto MobileMart's type codes.
var mobilemartVasTypes = map[models.VasType]string{
	models.VasTypeAirtime:     "airtime",
	models.VasTypeData:        "data",
	models.VasTypeElectricity: "electricity",
	models.VasTypeBillPayment: "billpay",
	models.VasTypeVoucher:     "voucher",
}

// MobileMartAdapter maps the MobileMart catalogue API onto the common adapter
// contract.
type MobileMartAdapter struct {
	client  *mobilemart.Client
	timeout time.Duration
}

// NewMobileMartAdapter constructs a MobileMartAdapter with a bounded per-call
// timeout.
func NewMobileMartAdapter(client *mobilemart.Client, timeout time.Duration) *MobileMartAdapter {
	return &MobileMartAdapter{client: client, timeout: timeout}
}

// Code returns the supplier code this adapter serves.
func (a *MobileMartAdapter) Code() models.SupplierCode {
	return models.SupplierMobileMart
}

// HealthCheck verifies the signed ping endpoint answers.
func (a *MobileMartAdapter) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.client.Ping(ctx)
}

// FetchCatalog pulls one category and maps MobileMart's native fields into
// the common raw-record shape.
func (a *MobileMartAdapter) FetchCatalog(ctx context.Context, vasType models.VasType) ([]models.RawProductRecord, error) {
	code, ok := mobilemartVasTypes[vasType]
	if !ok {
		return nil, fmt.Errorf("mobilemart does not serve category %q", vasType)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	items, err := a.client.GetCatalogue(ctx, code)
	if err != nil {
		return nil, err
	}

	records := make([]models.RawProductRecord, 0, len(items))
	for _, it := range items {
		records = append(records, mapMobileMartItem(it, vasType))
	}
	return records, nil
}

// mapMobileMartItem normalizes one MobileMart item. Fixed items carry a
// single Amount; open items carry a min/max pair and an explicit amount type.
func mapMobileMartItem(it mobilemart.Item, vasType models.VasType) models.RawProductRecord {
	rec := models.RawProductRecord{
		SupplierProductID: it.MerchantProductID,
		SupplierVariantID: it.VariantID,
		Name:              it.Name,
		BrandName:         it.ContentCreator,
		BrandCategory:     it.CreatorCategory,
		VasType:           vasType,
		Provider:          it.ContentCreator,
		MinAmount:         it.MinAmount,
		MaxAmount:         it.MaxAmount,
		Commission:        it.Commission,
		IsPromotional:     it.OnPromotion,
		PromoDiscount:     it.PromotionDiscount,
	}

	if rec.SupplierVariantID == "" {
		rec.SupplierVariantID = it.MerchantProductID
	}

	switch it.AmountType {
	case "open":
		rec.PriceTypeHint = models.PriceTypeVariable
	default:
		if it.Amount > 0 {
			rec.MinAmount = it.Amount
			rec.MaxAmount = it.Amount
		} else if rec.MaxAmount == 0 {
			rec.MaxAmount = rec.MinAmount
		}
	}
	return rec
}
