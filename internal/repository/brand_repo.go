package repository

import (
	"context"
	"database/sql"

	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"

	"github.com/walletgate/vas-catalog/internal/models"
)

// BrandKey normalizes a brand display name into the lookup key shared by all
// suppliers, e.g. "DSTV  Compact" and "DStv Compact" both map to "dstv-compact".
func BrandKey(name string) string {
	return slug.Make(name)
}

// BrandRepository handles data access for product brands.
type BrandRepository struct {
	db *sqlx.DB
}

// NewBrandRepository creates a new BrandRepository.
func NewBrandRepository(db *sqlx.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

// FindOrCreateTx resolves a brand by normalized key inside the caller's
// transaction, creating it on first sighting. The category tag is only set on
// create; an existing brand keeps its tag.
func (r *BrandRepository) FindOrCreateTx(tx *sqlx.Tx, name, category string) (*models.ProductBrand, error) {
	key := BrandKey(name)

	const insertQ = `
		INSERT INTO product_brands (name, normalized_key, category)
		VALUES ($1, $2, $3)
		ON CONFLICT (normalized_key) DO UPDATE SET updated_at = NOW()
		RETURNING *`

	var b models.ProductBrand
	if err := tx.Get(&b, insertQ, name, key, category); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByID returns a brand by ID. Returns nil, nil when absent.
func (r *BrandRepository) GetByID(ctx context.Context, id int) (*models.ProductBrand, error) {
	const q = `SELECT * FROM product_brands WHERE id = $1 LIMIT 1`

	var b models.ProductBrand
	if err := r.db.GetContext(ctx, &b, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
