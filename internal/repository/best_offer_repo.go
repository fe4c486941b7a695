package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/walletgate/vas-catalog/internal/models"
)

// BestOfferRepository handles the materialized best-offer table and its audit
// log. The materializer never mutates any other table.
type BestOfferRepository struct {
	db *sqlx.DB
}

// NewBestOfferRepository creates a new BestOfferRepository.
func NewBestOfferRepository(db *sqlx.DB) *BestOfferRepository {
	return &BestOfferRepository{db: db}
}

// Rebuild atomically replaces the best-offer table with the given winners and
// appends one audit row, all inside a single transaction. A reader sees
// either the old complete table or the new complete table, never an empty or
// half-populated one. On any failure the previous rows stay published.
func (r *BestOfferRepository) Rebuild(ctx context.Context, offers []models.BestOffer, audit *models.CatalogRefreshAudit) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rebuild tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `TRUNCATE TABLE vas_best_offers`); err != nil {
		return fmt.Errorf("truncate best offers: %w", err)
	}

	const insertQ = `
		INSERT INTO vas_best_offers
			(vas_type, provider, denomination_cents, variant_id, supplier_id, commission, catalog_version)
		VALUES (:vas_type, :provider, :denomination_cents, :variant_id, :supplier_id, :commission, :catalog_version)`

	// NamedExec expands to a multi-row insert; chunk to stay under the
	// Postgres parameter limit.
	const chunkSize = 1000
	for start := 0; start < len(offers); start += chunkSize {
		end := start + chunkSize
		if end > len(offers) {
			end = len(offers)
		}
		if _, err := tx.NamedExecContext(ctx, insertQ, offers[start:end]); err != nil {
			return fmt.Errorf("insert best offers: %w", err)
		}
	}

	const auditQ = `
		INSERT INTO catalog_refresh_audit
			(run_id, triggered_by, rows_affected, catalog_version, duration_ms)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	if err := tx.QueryRowxContext(ctx, auditQ,
		audit.RunID,
		audit.TriggeredBy,
		audit.RowsAffected,
		audit.CatalogVersion,
		audit.DurationMs,
	).Scan(&audit.ID, &audit.CreatedAt); err != nil {
		return fmt.Errorf("insert audit row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rebuild tx: %w", err)
	}
	return nil
}

// List returns the published offers for one category, or all categories when
// vasType is empty. The table is small enough to return whole; callers
// paginate in memory against the cached copy.
func (r *BestOfferRepository) List(ctx context.Context, vasType models.VasType) ([]models.BestOffer, error) {
	const q = `
		SELECT
			o.*,
			s.code AS supplier_code,
			p.name AS product_name
		FROM vas_best_offers o
		JOIN suppliers s ON o.supplier_id = s.id
		JOIN product_variants v ON o.variant_id = v.id
		JOIN products p ON v.product_id = p.id
		WHERE ($1 = '' OR o.vas_type = $1)
		ORDER BY o.vas_type, o.provider, o.denomination_cents`

	var offers []models.BestOffer
	if err := r.db.SelectContext(ctx, &offers, q, string(vasType)); err != nil {
		return nil, err
	}
	return offers, nil
}

// CurrentVersion returns the catalog version of the published table, or the
// zero time when the table has never been materialized.
func (r *BestOfferRepository) CurrentVersion(ctx context.Context) (string, error) {
	const q = `SELECT COALESCE(MAX(catalog_version)::TEXT, '') FROM vas_best_offers`

	var version string
	if err := r.db.GetContext(ctx, &version, q); err != nil {
		return "", err
	}
	return version, nil
}
