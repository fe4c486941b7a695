package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/walletgate/vas-catalog/internal/models"
)

// AuditRepository reads the append-only catalog refresh audit log. Rows are
// written by the materializer inside its rebuild transaction and never
// updated or deleted here.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// List returns audit rows newest first with pagination.
func (r *AuditRepository) List(ctx context.Context, page, limit int) ([]models.CatalogRefreshAudit, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	offset := (page - 1) * limit

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM catalog_refresh_audit`); err != nil {
		return nil, 0, err
	}

	const q = `
		SELECT * FROM catalog_refresh_audit
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	var rows []models.CatalogRefreshAudit
	if err := r.db.SelectContext(ctx, &rows, q, limit, offset); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
