package models

import "time"

// CatalogRefreshAudit is one append-only log row per materializer run.
// Rows are never updated or deleted.
type CatalogRefreshAudit struct {
	ID             int       `db:"id" json:"id"`
	RunID          string    `db:"run_id" json:"runId"`
	TriggeredBy    string    `db:"triggered_by" json:"triggeredBy"`
	RowsAffected   int64     `db:"rows_affected" json:"rowsAffected"`
	CatalogVersion time.Time `db:"catalog_version" json:"catalogVersion"`
	DurationMs     int64     `db:"duration_ms" json:"durationMs"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}
