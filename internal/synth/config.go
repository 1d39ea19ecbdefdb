// Package synth generates synthetic multi-state license records, submits them
// to a running service and checks that reconciliation accounted for every one.
package synth

import (
	"time"

	"github.com/okian/licmaster/internal/domain/types"
)

// Config holds configuration for a synthetic run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Identities int           // Number of people to generate
	BatchSize  int           // Records per POST /records
	Duplicates int           // Batches submitted a second time
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Generator seed; equal seeds give equal records
	OutputFile string        // Where generated batches are saved; empty skips saving
	Verbose    bool          // Log every batch
}

// Record mirrors the body of one record in POST /records.
type Record struct {
	FirstName      string `json:"first_name"`
	MiddleName     string `json:"middle_name,omitempty"`
	LastName       string `json:"last_name"`
	SourceState    string `json:"source_state"`
	OriginState    string `json:"origin_state,omitempty"`
	LicenseDate    string `json:"license_date,omitempty"`
	ExpirationDate string `json:"expiration_date,omitempty"`
	LicenseActive  bool   `json:"license_active"`
}

// Batch is one POST /records request.
type Batch struct {
	BatchID string   `json:"batch_id"`
	Records []Record `json:"records"`
}

// Stats holds run statistics.
type Stats struct {
	Identities       int
	RecordsGenerated int
	Batches          int
	Accepted         int
	Duplicates       int
	Failed           int
	StagedBefore     int
	StagedAfter      int
	Run              *types.RunInfo
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
