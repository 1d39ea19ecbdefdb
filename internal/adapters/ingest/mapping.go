package ingest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/licmaster/internal/domain/model"
)

// Mapping describes how one state's registry export maps onto NormalizedRecord.
// Either FullName is set, in which case the name is split, or the separate
// name columns are used.
type Mapping struct {
	State string

	FullName string
	First    string
	Middle   string
	Last     string
	Suffix   string

	LicenseDate string
	Expiration  string
	Origin      string
	Status      string

	ActiveStatuses []string
	Dates          DateStyle
	Origins        OriginStyle
}

var mappings = map[string]Mapping{ //nolint:gochecknoglobals // registry layouts
	"IL": {
		State: "IL", First: "First Name", Middle: "Middle", Last: "Last Name", Suffix: "Suffix",
		LicenseDate: "Original Issue Date", Expiration: "Expiration Date", Origin: "State", Status: "License Status",
		ActiveStatuses: []string{"ACTIVE"}, Dates: DateMDY, Origins: OriginLookup,
	},
	"CA": {
		State: "CA", First: "First Name", Middle: "Middle Name", Last: "Org/Last Name",
		LicenseDate: "Original Issue Date", Expiration: "Expiration Date", Origin: "State", Status: "License Status",
		ActiveStatuses: []string{"Active"}, Dates: DateMDYShort, Origins: OriginLookup,
	},
	"GA": {
		State: "GA", FullName: "fullName",
		LicenseDate: "issueDate", Expiration: "expirationDate", Origin: "location", Status: "licenseStatus",
		ActiveStatuses: []string{"Active", "Active-Renewal Pending"}, Dates: DateISO, Origins: OriginLocation,
	},
	"NV": {
		State: "NV", FullName: "full_name",
		Expiration: "expiration_date", Origin: "state", Status: "status",
		ActiveStatuses: []string{"ACTIVE"}, Dates: DateNone, Origins: OriginLookup,
	},
	"HI": {
		State: "HI", FullName: "full_name",
		LicenseDate: "original_license_date", Expiration: "expiration_date", Status: "status",
		ActiveStatuses: []string{"Current, Valid & In Good Standing"}, Dates: DateMDY, Origins: OriginNone,
	},
	"UT": {
		State: "UT", FullName: "FULL NAME",
		LicenseDate: "ISSUE DATE", Expiration: "EXPIRATION DATE", Origin: "STATE", Status: "LICENSE STATUS",
		ActiveStatuses: []string{"Active"}, Dates: DateISO, Origins: OriginLookup,
	},
	"WA": {
		State: "WA", FullName: "license_printable_name",
		LicenseDate: "original_issue_date", Expiration: "expiration_date", Origin: "state", Status: "status",
		ActiveStatuses: []string{"Active"}, Dates: DateISO, Origins: OriginLookup,
	},
	"OK": {
		State: "OK", First: "FirstName", Middle: "MiddleName", Last: "LastName",
		LicenseDate: "OriginalLicenseDate", Expiration: "LicenseExpirationDate", Origin: "State", Status: "LicenseStatusTypeName",
		ActiveStatuses: []string{"Active"}, Dates: DateISODateTime, Origins: OriginLookup,
	},
	"OR": {
		State: "OR", First: "First Name", Last: "Last Name",
		LicenseDate: "License Date", Expiration: "Expiration Date", Origin: "State", Status: "Status",
		ActiveStatuses: []string{"Active"}, Dates: DateMDYPadded, Origins: OriginLookup,
	},
	"AK": {
		State: "AK", FullName: "Owners",
		LicenseDate: "DateIssued", Expiration: "DateExpired", Origin: "STATE", Status: "Status",
		ActiveStatuses: []string{"Active"}, Dates: DateMDY, Origins: OriginLookup,
	},
}

// MappingFor returns the layout of a state's registry export.
func MappingFor(state string) (Mapping, error) {
	m, ok := mappings[strings.ToUpper(strings.TrimSpace(state))]
	if !ok {
		return Mapping{}, fmt.Errorf("%w: %q", ErrUnknownState, state)
	}
	return m, nil
}

// States lists the supported source states in alphabetical order.
func States() []string {
	out := make([]string, 0, len(mappings))
	for s := range mappings {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// IsActive reports whether a raw status value counts as active in this state.
func (m *Mapping) IsActive(status string) bool {
	for _, s := range m.ActiveStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// Normalize maps one raw row to a NormalizedRecord.
func (m *Mapping) Normalize(row Row) model.NormalizedRecord {
	r := model.NormalizedRecord{SourceState: m.State}

	if m.FullName != "" {
		p := SplitFullName(CleanName(row.Get(m.FullName)))
		r.FirstName, r.MiddleName, r.LastName, r.Suffix = p.First, p.Middle, p.Last, p.Suffix
	} else {
		r.FirstName = CleanName(row.Get(m.First))
		r.MiddleName = CleanName(row.Get(m.Middle))
		r.LastName = CleanName(row.Get(m.Last))
		r.Suffix = CleanName(row.Get(m.Suffix))
	}

	r.LicenseDate = ParseDate(row.Get(m.LicenseDate), m.Dates)
	r.ExpirationDate = ParseDate(row.Get(m.Expiration), m.Dates)
	if m.Origins != OriginNone {
		r.OriginState = NormalizeOrigin(row.Get(m.Origin), m.Origins)
	}
	r.LicenseActive = m.IsActive(row.Get(m.Status))
	return r
}
