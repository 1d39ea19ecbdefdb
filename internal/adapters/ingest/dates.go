package ingest

import (
	"strconv"
	"strings"
	"time"
)

// DateStyle names the date layout a registry publishes.
type DateStyle int

// Date styles.
const (
	DateNone       DateStyle = iota // no dates published
	DateMDY                         // M/D/YYYY
	DateMDYShort                    // M/D/YY or M/D/YYYY, two-digit years pivot at 24
	DateISO                         // YYYY-MM-DD
	DateISODateTime                 // YYYY-MM-DDTHH:MM:SS
	DateMDYPadded                   // MM/DD/YYYY
)

const (
	centuryPivot = 24
	shortYearMax = 100
)

// ParseDate parses raw in the given style. Unparseable or empty input yields nil.
func ParseDate(raw string, style DateStyle) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var (
		t   time.Time
		err error
	)
	switch style {
	case DateMDY:
		t, err = parseSlashed(raw, false)
	case DateMDYShort:
		t, err = parseSlashed(raw, true)
	case DateISO:
		t, err = time.Parse(time.DateOnly, raw)
	case DateISODateTime:
		t, err = time.Parse("2006-01-02T15:04:05", raw)
	case DateMDYPadded:
		t, err = time.Parse("01/02/2006", raw)
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return &t
}

// parseSlashed accepts unpadded M/D/Y values.
func parseSlashed(raw string, shortYears bool) (time.Time, error) {
	fields := strings.Split(raw, "/")
	if len(fields) != 3 { //nolint:mnd // month, day, year
		return time.Time{}, strconv.ErrSyntax
	}
	month, err := strconv.Atoi(fields[0])
	if err != nil {
		return time.Time{}, err
	}
	day, err := strconv.Atoi(fields[1])
	if err != nil {
		return time.Time{}, err
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil {
		return time.Time{}, err
	}
	if shortYears && year <= shortYearMax {
		if year <= centuryPivot {
			year += 2000
		} else {
			year += 1900
		}
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range values; reject them instead.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, strconv.ErrRange
	}
	return t, nil
}
