package export_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/licmaster/internal/adapters/export"
	"github.com/okian/licmaster/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleRows() []model.MasterRecord {
	d := time.Date(2001, time.March, 5, 0, 0, 0, 0, time.UTC)
	exp := time.Date(2030, time.March, 5, 0, 0, 0, 0, time.UTC)
	year := 2001
	return []model.MasterRecord{
		{
			IdentityKey: "0cbb84f3c7217132", LicenseState: "CA", FirstName: "JOHN", MiddleName: "JAMES",
			LastName: "SMITH", MatchConfidence: model.ConfidenceHigh, LicenseDate: &d, LicenseYear: &year,
			OriginState: "IL", LicenseActive: true, LicenseExpirationDate: &exp,
			FirstLicense: true, OldestActiveLicense: model.ActiveTrue,
		},
		{
			IdentityKey: "aa37918e06c75e1b", LicenseState: "NV", FirstName: "JANE", LastName: "DOE",
			MatchConfidence: model.ConfidenceSingleton, FirstLicense: true,
			OldestActiveLicense: model.ActiveNotApplicable,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	Convey("Given master rows", t, func() {
		var buf bytes.Buffer
		err := export.WriteCSV(&buf, sampleRows())
		So(err, ShouldBeNil)

		records, err := csv.NewReader(&buf).ReadAll()
		So(err, ShouldBeNil)

		Convey("Then the header comes first", func() {
			So(records[0], ShouldResemble, export.Header)
		})

		Convey("Then values use the file conventions", func() {
			So(records[1], ShouldResemble, []string{
				"0cbb84f3c7217132", "CA", "JOHN", "JAMES", "SMITH", "HIGH",
				"2001-03-05", "2001", "IL", "True", "2030-03-05", "True", "True",
			})
		})

		Convey("Then missing values are empty and the sentinel is N/A", func() {
			So(records[2], ShouldResemble, []string{
				"aa37918e06c75e1b", "NV", "JANE", "", "DOE", "SINGLETON",
				"", "", "", "False", "", "True", "N/A",
			})
		})
	})
}

func TestWriteFile(t *testing.T) {
	Convey("Given an output path in a missing directory", t, func() {
		path := filepath.Join(t.TempDir(), "out", "master_all_licenses.csv")

		Convey("When the file is written", func() {
			err := export.WriteFile(path, sampleRows())

			Convey("Then it holds the header and every row", func() {
				So(err, ShouldBeNil)
				f, err := os.Open(path)
				So(err, ShouldBeNil)
				defer f.Close()
				records, err := csv.NewReader(f).ReadAll()
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 3)
			})
		})
	})
}
