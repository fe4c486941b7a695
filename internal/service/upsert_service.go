package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/walletgate/vas-catalog/internal/models"
	"github.com/walletgate/vas-catalog/internal/repository"
)

// UpsertResult reports what one record sync did, so the orchestrator can
// maintain its counters and track touched classification groups.
type UpsertResult struct {
	Created bool
	BrandID int
	VasType models.VasType
}

// UpsertService converts one raw upstream record into the normalized
// Brand/Product/Variant entities and commits it idempotently. Each record
// runs inside its own database transaction so one malformed upstream record
// can never abort an entire sweep.
type UpsertService struct {
	db         *sqlx.DB
	brands     *repository.BrandRepository
	products   *repository.ProductRepository
	variants   *repository.VariantRepository
	classifier *Classifier
}

// NewUpsertService constructs an UpsertService.
func NewUpsertService(db *sqlx.DB, brands *repository.BrandRepository, products *repository.ProductRepository, variants *repository.VariantRepository, classifier *Classifier) *UpsertService {
	return &UpsertService{
		db:         db,
		brands:     brands,
		products:   products,
		variants:   variants,
		classifier: classifier,
	}
}

// SyncOne upserts one raw record inside its own transaction. A failure rolls
// back only this product.
func (s *UpsertService) SyncOne(ctx context.Context, sup models.Supplier, raw models.RawProductRecord) (*UpsertResult, error) {
	raw, err := normalizeRaw(raw)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	brand, err := s.brands.FindOrCreateTx(tx, raw.BrandName, raw.BrandCategory)
	if err != nil {
		return nil, fmt.Errorf("resolve brand %q: %w", raw.BrandName, err)
	}

	product, err := s.products.FindBySupplierKeyTx(tx, sup.ID, raw.SupplierProductID)
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", raw.SupplierProductID, err)
	}

	created := false
	if product == nil {
		product = &models.Product{
			SupplierID:        sup.ID,
			SupplierProductID: raw.SupplierProductID,
			BrandID:           brand.ID,
			Name:              raw.Name,
			VasType:           raw.VasType,
			Status:            models.StatusActive,
		}
		if err := s.products.CreateTx(tx, product); err != nil {
			return nil, fmt.Errorf("create product %s: %w", raw.SupplierProductID, err)
		}
		created = true
	} else {
		product.BrandID = brand.ID
		product.Name = raw.Name
		product.VasType = raw.VasType
		// A product listed upstream again is live, whatever it was before.
		product.Status = models.StatusActive
		if err := s.products.UpdateTx(tx, product); err != nil {
			return nil, fmt.Errorf("update product %s: %w", raw.SupplierProductID, err)
		}
	}

	if err := s.upsertVariantTx(tx, sup, product, raw); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit upsert tx: %w", err)
	}
	return &UpsertResult{Created: created, BrandID: brand.ID, VasType: raw.VasType}, nil
}

// SyncPricing refreshes only the fast-moving pricing fields of an already
// known variant. Used by the frequent refresh pass; unknown variants are left
// for the next full sweep. Returns false when the variant is not known yet.
func (s *UpsertService) SyncPricing(ctx context.Context, sup models.Supplier, raw models.RawProductRecord) (bool, error) {
	raw, err := normalizeRaw(raw)
	if err != nil {
		return false, err
	}
	return s.variants.UpdatePricingByKey(ctx,
		sup.ID,
		raw.SupplierVariantID,
		raw.MinAmount,
		raw.MaxAmount,
		pq.Int64Array(raw.Denominations),
		raw.Commission,
		raw.IsPromotional,
		raw.PromoDiscount,
	)
}

// upsertVariantTx creates the variant on first sighting or fully overwrites
// its pricing fields on update. The stored price type stays sticky on update;
// the group classification pass settles it afterwards.
func (s *UpsertService) upsertVariantTx(tx *sqlx.Tx, sup models.Supplier, product *models.Product, raw models.RawProductRecord) error {
	variant, err := s.variants.FindTx(tx, product.ID, sup.ID, raw.SupplierVariantID)
	if err != nil {
		return fmt.Errorf("find variant %s: %w", raw.SupplierVariantID, err)
	}

	var hint *models.PriceType
	if raw.PriceTypeHint != "" {
		h := raw.PriceTypeHint
		hint = &h
	}

	if variant == nil {
		variant = &models.ProductVariant{
			ProductID:         product.ID,
			SupplierID:        sup.ID,
			SupplierVariantID: raw.SupplierVariantID,
			VasType:           raw.VasType,
			Provider:          raw.Provider,
			PriceTypeHint:     hint,
			MinAmount:         raw.MinAmount,
			MaxAmount:         raw.MaxAmount,
			Denominations:     pq.Int64Array(raw.Denominations),
			Commission:        raw.Commission,
			IsPromotional:     raw.IsPromotional,
			PromoDiscount:     raw.PromoDiscount,
			Status:            models.StatusActive,
			ProductName:       raw.Name,
		}
		variant.PriceType = s.classifier.Classify(*variant)
		if err := s.variants.CreateTx(tx, variant); err != nil {
			return fmt.Errorf("create variant %s: %w", raw.SupplierVariantID, err)
		}
		return nil
	}

	variant.VasType = raw.VasType
	variant.Provider = raw.Provider
	variant.PriceTypeHint = hint
	variant.MinAmount = raw.MinAmount
	variant.MaxAmount = raw.MaxAmount
	variant.Denominations = pq.Int64Array(raw.Denominations)
	variant.Commission = raw.Commission
	variant.IsPromotional = raw.IsPromotional
	variant.PromoDiscount = raw.PromoDiscount
	variant.Status = models.StatusActive
	if err := s.variants.UpdateTx(tx, variant); err != nil {
		return fmt.Errorf("update variant %s: %w", raw.SupplierVariantID, err)
	}
	return nil
}

// normalizeRaw enforces the pricing invariant on the supplier-specific shape:
// min <= max always; a single-element denomination list collapses to a price
// point; a variable hint without a genuine span is dropped.
func normalizeRaw(raw models.RawProductRecord) (models.RawProductRecord, error) {
	if raw.SupplierProductID == "" || raw.SupplierVariantID == "" {
		return raw, fmt.Errorf("record %q missing supplier identifiers", raw.Name)
	}
	if raw.Name == "" || raw.BrandName == "" {
		return raw, fmt.Errorf("record %s missing name or brand", raw.SupplierProductID)
	}

	if raw.MaxAmount < raw.MinAmount {
		raw.MinAmount, raw.MaxAmount = raw.MaxAmount, raw.MinAmount
	}
	if len(raw.Denominations) == 1 {
		raw.MinAmount = raw.Denominations[0]
		raw.MaxAmount = raw.Denominations[0]
		raw.Denominations = nil
	}
	if raw.PriceTypeHint == models.PriceTypeVariable && raw.MinAmount >= raw.MaxAmount {
		raw.PriceTypeHint = ""
	}
	return raw, nil
}
