package ingest

import (
	"regexp"
	"strings"
)

// stateNames maps full state names and known junk codes found in registry
// location columns to two-letter codes. An empty value means "not a US state".
var stateNames = map[string]string{ //nolint:gochecknoglobals // lookup table
	"Wyoming":        "WY",
	"Wisconsin":      "WI",
	"Washington":     "WA",
	"Virginia":       "VA",
	"Texas":          "TX",
	"Tennessee":      "TN",
	"South Dakota":   "SD",
	"Pennsylvania":   "PA",
	"Oregon":         "OR",
	"Oklahoma":       "OK",
	"OUT OF COUNTRY": "",
	"North Carolina": "NC",
	"New York":       "NY",
	"Nebraska":       "NE",
	"Minnesota":      "MN",
	"Michigan":       "MI",
	"Massachusetts":  "MA",
	"Louisiana":      "LA",
	"Kentucky":       "KY",
	"Kansas":         "KS",
	"Iowa":           "IA",
	"Illinois":       "IL",
	"Georgia":        "GA",
	"Colorado":       "CO",
	"California":     "CA",
	"Arkansas":       "AR",
	"00":             "",
	"-1":             "",
	"AA":             "",
	"AB":             "",
	"AP":             "",
	"BC":             "",
	"FO":             "",
	"QC":             "",
	"PQ":             "",
	"ON":             "",
	"NA":             "",
	"  ":             "",
}

// locationState finds the state code in strings like "ATLANTA, GA 30301".
var locationState = regexp.MustCompile(`,\s*([A-Z]{2})\s`)

// OriginStyle selects how an origin column is interpreted.
type OriginStyle int

// Origin styles.
const (
	OriginNone     OriginStyle = iota // the registry publishes no origin
	OriginLookup                      // a state name or code, mapped through stateNames
	OriginLocation                    // a free-form address containing ", XX "
)

// NormalizeOrigin converts a raw location value to a state code or "".
func NormalizeOrigin(raw string, style OriginStyle) string {
	if raw == "" {
		return ""
	}
	switch style {
	case OriginLookup:
		if code, ok := stateNames[raw]; ok {
			return code
		}
		return strings.TrimSpace(raw)
	case OriginLocation:
		if m := locationState.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}
	return ""
}
