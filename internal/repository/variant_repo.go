package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/walletgate/vas-catalog/internal/models"
)

// VariantRepository handles data access for product variants.
type VariantRepository struct {
	db *sqlx.DB
}

// NewVariantRepository creates a new VariantRepository.
func NewVariantRepository(db *sqlx.DB) *VariantRepository {
	return &VariantRepository{db: db}
}

// FindTx looks up a variant by its supplier-scoped key inside the caller's
// transaction. Returns nil, nil when absent.
func (r *VariantRepository) FindTx(tx *sqlx.Tx, productID, supplierID int, supplierVariantID string) (*models.ProductVariant, error) {
	const q = `
		SELECT * FROM product_variants
		WHERE product_id = $1 AND supplier_id = $2 AND supplier_variant_id = $3
		LIMIT 1`

	var v models.ProductVariant
	if err := tx.Get(&v, q, productID, supplierID, supplierVariantID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// CreateTx inserts a variant inside the caller's transaction.
func (r *VariantRepository) CreateTx(tx *sqlx.Tx, v *models.ProductVariant) error {
	const q = `
		INSERT INTO product_variants
			(product_id, supplier_id, supplier_variant_id, vas_type, provider,
			 price_type, price_type_hint, min_amount, max_amount, denominations,
			 commission, is_promotional, promo_discount, status, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		RETURNING id, created_at, updated_at`

	return tx.QueryRowx(q,
		v.ProductID,
		v.SupplierID,
		v.SupplierVariantID,
		v.VasType,
		v.Provider,
		v.PriceType,
		v.PriceTypeHint,
		v.MinAmount,
		v.MaxAmount,
		v.Denominations,
		v.Commission,
		v.IsPromotional,
		v.PromoDiscount,
		v.Status,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

// UpdateTx fully overwrites the pricing fields of an existing variant inside
// the caller's transaction and stamps last_synced_at. The operator override
// column is deliberately untouched.
func (r *VariantRepository) UpdateTx(tx *sqlx.Tx, v *models.ProductVariant) error {
	const q = `
		UPDATE product_variants SET
			vas_type = $2,
			provider = $3,
			price_type = $4,
			price_type_hint = $5,
			min_amount = $6,
			max_amount = $7,
			denominations = $8,
			commission = $9,
			is_promotional = $10,
			promo_discount = $11,
			status = $12,
			last_synced_at = NOW(),
			updated_at = NOW()
		WHERE id = $1`

	_, err := tx.Exec(q,
		v.ID,
		v.VasType,
		v.Provider,
		v.PriceType,
		v.PriceTypeHint,
		v.MinAmount,
		v.MaxAmount,
		v.Denominations,
		v.Commission,
		v.IsPromotional,
		v.PromoDiscount,
		v.Status,
	)
	return err
}

// UpdatePricingByKey refreshes only the fast-moving pricing fields of a known
// variant. Used by the frequent refresh pass; unknown variants are left for
// the next full sweep. Returns false when no variant matched.
func (r *VariantRepository) UpdatePricingByKey(ctx context.Context, supplierID int, supplierVariantID string, min, max int64, denoms pq.Int64Array, commission float64, promotional bool, promoDiscount float64) (bool, error) {
	const q = `
		UPDATE product_variants SET
			min_amount = $3,
			max_amount = $4,
			denominations = $5,
			commission = $6,
			is_promotional = $7,
			promo_discount = $8,
			last_synced_at = NOW(),
			updated_at = NOW()
		WHERE supplier_id = $1 AND supplier_variant_id = $2`

	res, err := r.db.ExecContext(ctx, q, supplierID, supplierVariantID, min, max, denoms, commission, promotional, promoDiscount)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// GetGroup returns every variant in one (brand, vasType) group with brand and
// product fields joined, the unit the classifier evaluates.
func (r *VariantRepository) GetGroup(ctx context.Context, brandID int, vasType models.VasType) ([]models.ProductVariant, error) {
	const q = `
		SELECT
			v.*,
			p.brand_id,
			p.name AS product_name,
			b.name AS brand_name,
			b.category AS brand_category
		FROM product_variants v
		JOIN products p ON v.product_id = p.id
		JOIN product_brands b ON p.brand_id = b.id
		WHERE p.brand_id = $1 AND v.vas_type = $2
		AND p.status <> 'discontinued'
		ORDER BY v.id ASC`

	var variants []models.ProductVariant
	if err := r.db.SelectContext(ctx, &variants, q, brandID, vasType); err != nil {
		return nil, err
	}
	return variants, nil
}

// SetStatus updates the status of the given variants.
func (r *VariantRepository) SetStatus(ctx context.Context, ids []int, status models.ProductStatus) error {
	if len(ids) == 0 {
		return nil
	}
	const q = `UPDATE product_variants SET status = $2, updated_at = NOW() WHERE id = ANY($1)`
	_, err := r.db.ExecContext(ctx, q, pq.Array(ids), status)
	return err
}

// SetPriceType persists a classifier verdict for one variant.
func (r *VariantRepository) SetPriceType(ctx context.Context, id int, pt models.PriceType) error {
	const q = `UPDATE product_variants SET price_type = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, pt)
	return err
}

// SetPriceTypeOverride sets or clears the operator override. The classifier
// treats a set override as authoritative and never re-derives it.
func (r *VariantRepository) SetPriceTypeOverride(ctx context.Context, id int, pt *models.PriceType) error {
	const q = `UPDATE product_variants SET price_type_override = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, pt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetMaterializable loads every active variant of an active product belonging
// to an active supplier, sorted by commission descending so the materializer's
// first-seen-wins rule picks the highest earner per key.
func (r *VariantRepository) GetMaterializable(ctx context.Context) ([]models.ProductVariant, error) {
	const q = `
		SELECT
			v.*,
			s.code AS supplier_code,
			s.priority AS supplier_priority,
			p.brand_id,
			p.name AS product_name
		FROM product_variants v
		JOIN products p ON v.product_id = p.id
		JOIN suppliers s ON v.supplier_id = s.id
		WHERE v.status = 'active'
		AND p.status = 'active'
		AND s.is_active = true
		ORDER BY v.commission DESC, v.id ASC`

	var variants []models.ProductVariant
	if err := r.db.SelectContext(ctx, &variants, q); err != nil {
		return nil, err
	}
	return variants, nil
}

// GetActiveByVasType loads active variants for the comparison service with
// supplier and brand context joined. An empty vasType returns all categories.
func (r *VariantRepository) GetActiveByVasType(ctx context.Context, vasType models.VasType) ([]models.ProductVariant, error) {
	q := `
		SELECT
			v.*,
			s.code AS supplier_code,
			s.priority AS supplier_priority,
			p.brand_id,
			p.name AS product_name,
			b.name AS brand_name,
			b.category AS brand_category
		FROM product_variants v
		JOIN products p ON v.product_id = p.id
		JOIN suppliers s ON v.supplier_id = s.id
		JOIN product_brands b ON p.brand_id = b.id
		WHERE v.status = 'active'
		AND p.status = 'active'
		AND s.is_active = true`

	args := []any{}
	if vasType != "" {
		q += ` AND v.vas_type = $1`
		args = append(args, vasType)
	}
	q += ` ORDER BY v.commission DESC, v.min_amount ASC, v.id ASC`

	var variants []models.ProductVariant
	if err := r.db.SelectContext(ctx, &variants, q, args...); err != nil {
		return nil, err
	}
	return variants, nil
}
