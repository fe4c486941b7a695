package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/walletgate/vas-catalog/internal/models"
)

// SupplierRepository handles read-only access to the suppliers table.
type SupplierRepository struct {
	db *sqlx.DB
}

// NewSupplierRepository creates a new SupplierRepository.
func NewSupplierRepository(db *sqlx.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// GetActiveSuppliers returns all active suppliers ordered by priority.
func (r *SupplierRepository) GetActiveSuppliers(ctx context.Context) ([]models.Supplier, error) {
	const q = `SELECT * FROM suppliers WHERE is_active = true ORDER BY priority ASC`

	var suppliers []models.Supplier
	if err := r.db.SelectContext(ctx, &suppliers, q); err != nil {
		return nil, err
	}
	return suppliers, nil
}

// GetAllSuppliers returns every supplier regardless of status.
func (r *SupplierRepository) GetAllSuppliers(ctx context.Context) ([]models.Supplier, error) {
	const q = `SELECT * FROM suppliers ORDER BY priority ASC`

	var suppliers []models.Supplier
	if err := r.db.SelectContext(ctx, &suppliers, q); err != nil {
		return nil, err
	}
	return suppliers, nil
}

// GetByCode returns a supplier by code. Returns nil, nil when absent.
func (r *SupplierRepository) GetByCode(ctx context.Context, code models.SupplierCode) (*models.Supplier, error) {
	const q = `SELECT * FROM suppliers WHERE code = $1 LIMIT 1`

	var s models.Supplier
	if err := r.db.GetContext(ctx, &s, q, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
