// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/okian/licmaster/internal/domain/model"
)

// View selects which master list a query reads.
type View string

// Master list views.
const (
	ViewAll    View = "all"
	ViewActive View = "active"
)

// Views lists every view in build order.
var Views = []View{ViewAll, ViewActive}

// ParseView maps a query value to a View; empty means all.
func ParseView(s string) (View, bool) {
	switch View(s) {
	case "", ViewAll:
		return ViewAll, true
	case ViewActive:
		return ViewActive, true
	}
	return "", false
}

// StateCount is the number of licenses issued by one state.
type StateCount struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

// LicenseeCount is how many identities hold exactly Licenses licenses.
type LicenseeCount struct {
	Licenses   int `json:"licenses"`
	Identities int `json:"identities"`
}

// LicenseAgeBucket counts licenses first issued in Year by activity status.
type LicenseAgeBucket struct {
	Year   int    `json:"year"`
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// ConfidenceShare is the number and share of rows at one confidence tier.
type ConfidenceShare struct {
	Confidence model.Confidence `json:"confidence"`
	Count      int              `json:"count"`
	Percent    float64          `json:"percent"`
}

// Summary describes one master list.
type Summary struct {
	View                View              `json:"view"`
	UniqueIdentities    int               `json:"unique_identities"`
	TotalLicenses       int               `json:"total_licenses"`
	LicensesPerIdentity float64           `json:"licenses_per_identity"`
	Confidence          []ConfidenceShare `json:"confidence"`
	MultiLicenseHolders int               `json:"multi_license_holders"`
}

// Page is a slice of the master list.
type Page struct {
	View   View                 `json:"view"`
	Offset int                  `json:"offset"`
	Limit  int                  `json:"limit"`
	Total  int                  `json:"total"`
	Rows   []model.MasterRecord `json:"rows"`
}

// StageResult reports what happened to one submitted batch.
type StageResult struct {
	BatchID   string         `json:"batch_id"`
	Duplicate bool           `json:"duplicate"`
	Accepted  int            `json:"accepted"`
	Rejected  map[string]int `json:"rejected,omitempty"`
}

// SourceStats counts the rows read from one configured source.
type SourceStats struct {
	State    string         `json:"state"`
	Read     int            `json:"read"`
	Accepted int            `json:"accepted"`
	Rejected map[string]int `json:"rejected,omitempty"`
}

// ViewRun describes the list one reconcile run built for a view.
type ViewRun struct {
	View       View `json:"view"`
	Records    int  `json:"records"`
	Groups     int  `json:"groups"`
	Rows       int  `json:"rows"`
	Identities int  `json:"identities"`
}

// RunInfo describes one reconcile run.
type RunInfo struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	DurationMs int64         `json:"duration_ms"`
	Staged     int           `json:"staged"`
	Sources    []SourceStats `json:"sources,omitempty"`
	Views      []ViewRun     `json:"views"`
}

// ServiceStats is the service snapshot served on /stats.
type ServiceStats struct {
	Started     bool      `json:"started"`
	WorkerCount int       `json:"worker_count"`
	QueueSize   int       `json:"queue_size"`
	DedupeSize  int       `json:"dedupe_size"`
	Staged      int       `json:"staged"`
	BatchesSeen int64     `json:"batches_seen"`
	LastRun     *RunInfo  `json:"last_run,omitempty"`
	Summaries   []Summary `json:"summaries"`
}
