package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/walletgate/vas-catalog/internal/models"
)

// ProductRepository handles data access for logical products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindBySupplierKeyTx looks up a product by its supplier-scoped key inside the
// caller's transaction. Returns nil, nil when absent.
func (r *ProductRepository) FindBySupplierKeyTx(tx *sqlx.Tx, supplierID int, supplierProductID string) (*models.Product, error) {
	const q = `SELECT * FROM products WHERE supplier_id = $1 AND supplier_product_id = $2 LIMIT 1`

	var p models.Product
	if err := tx.Get(&p, q, supplierID, supplierProductID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// CreateTx inserts a product inside the caller's transaction.
func (r *ProductRepository) CreateTx(tx *sqlx.Tx, p *models.Product) error {
	const q = `
		INSERT INTO products (supplier_id, supplier_product_id, brand_id, name, vas_type, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	return tx.QueryRowx(q,
		p.SupplierID,
		p.SupplierProductID,
		p.BrandID,
		p.Name,
		p.VasType,
		p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// UpdateTx refreshes the mutable product fields inside the caller's transaction.
func (r *ProductRepository) UpdateTx(tx *sqlx.Tx, p *models.Product) error {
	const q = `
		UPDATE products SET
			brand_id = $2,
			name = $3,
			vas_type = $4,
			status = $5,
			updated_at = NOW()
		WHERE id = $1`

	_, err := tx.Exec(q, p.ID, p.BrandID, p.Name, p.VasType, p.Status)
	return err
}

// GetByID returns a product by ID. Returns nil, nil when absent.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	const q = `SELECT * FROM products WHERE id = $1 LIMIT 1`

	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// MarkMissingDiscontinued marks products of one supplier and category that no
// longer appear upstream as discontinued and deactivates their variants.
// An empty seen list is a no-op: a supplier returning nothing looks like an
// outage, not a mass delisting.
func (r *ProductRepository) MarkMissingDiscontinued(ctx context.Context, supplierID int, vasType models.VasType, seen []string) (int64, error) {
	if len(seen) == 0 {
		return 0, nil
	}

	const q = `
		UPDATE products SET status = 'discontinued', updated_at = NOW()
		WHERE supplier_id = $1
		AND vas_type = $2
		AND status <> 'discontinued'
		AND NOT (supplier_product_id = ANY($3))`

	res, err := r.db.ExecContext(ctx, q, supplierID, vasType, pq.Array(seen))
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()

	const deactivateQ = `
		UPDATE product_variants v SET status = 'inactive', updated_at = NOW()
		FROM products p
		WHERE v.product_id = p.id
		AND p.status = 'discontinued'
		AND v.status = 'active'
		AND p.supplier_id = $1
		AND p.vas_type = $2`

	if _, err := r.db.ExecContext(ctx, deactivateQ, supplierID, vasType); err != nil {
		return n, err
	}
	return n, nil
}

// DeactivateWithoutActiveVariants marks active products whose variants are all
// inactive as inactive themselves. Runs after group classification.
func (r *ProductRepository) DeactivateWithoutActiveVariants(ctx context.Context) (int64, error) {
	const q = `
		UPDATE products p SET status = 'inactive', updated_at = NOW()
		WHERE p.status = 'active'
		AND NOT EXISTS (
			SELECT 1 FROM product_variants v
			WHERE v.product_id = p.id AND v.status = 'active'
		)`

	res, err := r.db.ExecContext(ctx, q)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
