// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// NormalizedRecord is one license from one state registry after the per-state
// adapter has mapped it to the common shape. Empty strings stand for missing
// optional values.
type NormalizedRecord struct {
	FirstName      string     `json:"first_name"`
	MiddleName     string     `json:"middle_name,omitempty"` // comma separated when a state lists several
	LastName       string     `json:"last_name"`
	Suffix         string     `json:"suffix,omitempty"`
	SourceState    string     `json:"source_state"`           // issuing state
	OriginState    string     `json:"origin_state,omitempty"` // self-declared home state
	LicenseDate    *time.Time `json:"license_date,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	LicenseActive  bool       `json:"license_active"`
}

// LastNameWithSuffix folds the suffix into the last name the way the grouping key expects.
func (r *NormalizedRecord) LastNameWithSuffix() string {
	if r.Suffix == "" {
		return strings.TrimSpace(r.LastName)
	}
	return strings.TrimSpace(r.LastName + " " + r.Suffix)
}

// HasMiddleName reports whether the record carries any middle name text.
func (r *NormalizedRecord) HasMiddleName() bool {
	return r.MiddleName != ""
}

// NameKey identifies a NameGroup.
type NameKey struct {
	FirstName          string
	LastNameWithSuffix string
}

// Key returns the NameKey a record is grouped under.
func (r *NormalizedRecord) Key() NameKey {
	return NameKey{FirstName: r.FirstName, LastNameWithSuffix: r.LastNameWithSuffix()}
}

// Less orders name keys by first name, then last name.
func (k NameKey) Less(other NameKey) bool {
	if k.FirstName != other.FirstName {
		return k.FirstName < other.FirstName
	}
	return k.LastNameWithSuffix < other.LastNameWithSuffix
}

// String renders the key for logs.
func (k NameKey) String() string {
	return k.FirstName + " " + k.LastNameWithSuffix
}

// NameGroup holds every record sharing an exact NameKey.
type NameGroup struct {
	Key     NameKey
	Records []*NormalizedRecord
}

// Cluster is a subset of a NameGroup judged to be a single identity candidate.
// Records are shared with the owning group, never copied.
type Cluster struct {
	Key             NameKey
	ConsensusOrigin string // "" when no origin information exists
	Records         []*NormalizedRecord
}

// MatchResult is the matcher's verdict for one Cluster.
type MatchResult struct {
	MiddleName      string
	States          []string
	Confidence      Confidence
	ConsensusOrigin string
	Records         []*NormalizedRecord
}
