package models

import "time"

// SweepKind distinguishes the two schedules driving the sync pipeline.
type SweepKind string

const (
	SweepFull    SweepKind = "full_sweep"
	SweepRefresh SweepKind = "price_refresh"
)

// TriggerSource records what started a sweep.
type TriggerSource string

const (
	TriggerSchedule TriggerSource = "schedule"
	TriggerManual   TriggerSource = "manual"
)

// SweepStats holds the run-scoped counters for one sweep. Each schedule kind
// keeps its own stats so a refresh run never muddies full-sweep numbers.
type SweepStats struct {
	RunID                  string        `json:"runId"`
	Kind                   SweepKind     `json:"kind"`
	Trigger                TriggerSource `json:"trigger"`
	StartedAt              time.Time     `json:"startedAt"`
	FinishedAt             time.Time     `json:"finishedAt"`
	TotalProducts          int           `json:"totalProducts"`
	NewProducts            int           `json:"newProducts"`
	UpdatedProducts        int           `json:"updatedProducts"`
	DecommissionedProducts int           `json:"decommissionedProducts"`
	Errors                 int           `json:"errors"`
	SuppliersSkipped       []string      `json:"suppliersSkipped,omitempty"`
}

// Changed reports whether the catalog materially changed during the run,
// which gates the change notification.
func (s SweepStats) Changed() bool {
	return s.NewProducts+s.DecommissionedProducts > 0
}
