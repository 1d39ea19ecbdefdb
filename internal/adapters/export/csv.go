// Package export writes master lists as CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/okian/licmaster/internal/domain/model"
)

// Header is the column order of a master list file.
var Header = []string{ //nolint:gochecknoglobals // fixed file layout
	"name_hash",
	"license_state",
	"first_name",
	"middle_name",
	"last_name",
	"match_confidence",
	"license_date",
	"license_year",
	"origin_state",
	"license_active",
	"license_expiration_date",
	"first_license",
	"oldest_active_license",
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []model.MasterRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range rows {
		if err := cw.Write(Record(&rows[i])); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes rows to path, creating parent directories.
func WriteFile(path string, rows []model.MasterRecord) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:mnd // directory permissions
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteCSV(f, rows)
}

// Record renders one row in Header order.
func Record(m *model.MasterRecord) []string {
	return []string{
		m.IdentityKey,
		m.LicenseState,
		m.FirstName,
		m.MiddleName,
		m.LastName,
		string(m.MatchConfidence),
		formatDate(m.LicenseDate),
		formatYear(m.LicenseYear),
		m.OriginState,
		formatBool(m.LicenseActive),
		formatDate(m.LicenseExpirationDate),
		formatBool(m.FirstLicense),
		m.OldestActiveLicense.String(),
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func formatYear(y *int) string {
	if y == nil {
		return ""
	}
	return strconv.Itoa(*y)
}

func formatBool(b bool) string {
	return model.FlagOf(b).String()
}
