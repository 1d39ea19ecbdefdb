package model

import (
	"encoding/json"
	"errors"
	"time"
)

// Confidence expresses how strongly the evidence supports merging records.
type Confidence string

// Confidence tiers.
const (
	ConfidenceHigh      Confidence = "HIGH"
	ConfidenceMedium    Confidence = "MEDIUM"
	ConfidenceLow       Confidence = "LOW"
	ConfidenceSingleton Confidence = "SINGLETON"
)

// Confidences lists the tiers in reporting order.
var Confidences = []Confidence{ConfidenceSingleton, ConfidenceLow, ConfidenceMedium, ConfidenceHigh}

// ActiveFlag is the oldest-active-license marker. It is a boolean except when
// the identity holds no active license at all.
type ActiveFlag int8

// ActiveFlag values.
const (
	ActiveNotApplicable ActiveFlag = iota
	ActiveFalse
	ActiveTrue
)

// NotApplicable is the textual form of ActiveNotApplicable.
const NotApplicable = "N/A"

// ErrInvalidActiveFlag is returned when decoding an unknown flag value.
var ErrInvalidActiveFlag = errors.New("invalid oldest_active_license value")

// FlagOf converts a boolean to an ActiveFlag.
func FlagOf(b bool) ActiveFlag {
	if b {
		return ActiveTrue
	}
	return ActiveFalse
}

// String renders True, False or N/A.
func (f ActiveFlag) String() string {
	switch f {
	case ActiveTrue:
		return "True"
	case ActiveFalse:
		return "False"
	default:
		return NotApplicable
	}
}

// MarshalJSON encodes the flag as a JSON boolean or the "N/A" string.
func (f ActiveFlag) MarshalJSON() ([]byte, error) {
	switch f {
	case ActiveTrue:
		return []byte("true"), nil
	case ActiveFalse:
		return []byte("false"), nil
	default:
		return json.Marshal(NotApplicable)
	}
}

// UnmarshalJSON accepts true, false or "N/A".
func (f *ActiveFlag) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true":
		*f = ActiveTrue
	case "false":
		*f = ActiveFalse
	case `"` + NotApplicable + `"`, "null":
		*f = ActiveNotApplicable
	default:
		return ErrInvalidActiveFlag
	}
	return nil
}

// ParseActiveFlag is the inverse of ActiveFlag.String.
func ParseActiveFlag(s string) (ActiveFlag, error) {
	switch s {
	case "True", "true":
		return ActiveTrue, nil
	case "False", "false":
		return ActiveFalse, nil
	case NotApplicable, "":
		return ActiveNotApplicable, nil
	}
	return ActiveNotApplicable, ErrInvalidActiveFlag
}

// MasterRecord is one output row per (identity, license) pair.
type MasterRecord struct {
	IdentityKey           string     `json:"identity_key"`
	LicenseState          string     `json:"license_state"`
	FirstName             string     `json:"first_name"`
	MiddleName            string     `json:"middle_name"`
	LastName              string     `json:"last_name"`
	MatchConfidence       Confidence `json:"match_confidence"`
	LicenseDate           *time.Time `json:"license_date"`
	LicenseYear           *int       `json:"license_year"`
	OriginState           string     `json:"origin_state"`
	LicenseActive         bool       `json:"license_active"`
	LicenseExpirationDate *time.Time `json:"license_expiration_date"`
	FirstLicense          bool       `json:"first_license"`
	OldestActiveLicense   ActiveFlag `json:"oldest_active_license"`
}

// Less orders rows by identity key and license state, breaking remaining ties
// so the output is reproducible regardless of input order.
func (m *MasterRecord) Less(o *MasterRecord) bool {
	if m.IdentityKey != o.IdentityKey {
		return m.IdentityKey < o.IdentityKey
	}
	if m.LicenseState != o.LicenseState {
		return m.LicenseState < o.LicenseState
	}
	if c := compareDates(m.LicenseDate, o.LicenseDate); c != 0 {
		return c < 0
	}
	if c := compareDates(m.LicenseExpirationDate, o.LicenseExpirationDate); c != 0 {
		return c < 0
	}
	if m.MiddleName != o.MiddleName {
		return m.MiddleName < o.MiddleName
	}
	return !m.LicenseActive && o.LicenseActive
}

// compareDates orders nil before any date.
func compareDates(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}
