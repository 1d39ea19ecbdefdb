package ingest_test

import (
	"testing"

	"github.com/okian/licmaster/internal/adapters/ingest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCleanName(t *testing.T) {
	Convey("Given raw registry names", t, func() {
		Convey("Then titles are dropped and punctuation becomes spaces", func() {
			So(ingest.CleanName("Dr. John  o'Brien"), ShouldEqual, "JOHN O BRIEN")
			So(ingest.CleanName("mrs jane doe-smith"), ShouldEqual, "JANE DOE SMITH")
			So(ingest.CleanName("M/S Ana Lopez"), ShouldEqual, "ANA LOPEZ")
		})

		Convey("Then periods survive for suffixes", func() {
			So(ingest.CleanName("john smith jr."), ShouldEqual, "JOHN SMITH JR.")
		})

		Convey("Then a title glued to the name is kept", func() {
			So(ingest.CleanName("MR.SMITH"), ShouldEqual, "MR.SMITH")
		})

		Convey("Then non-ASCII letters are upper-cased and kept", func() {
			So(ingest.CleanName("  josé   núñez "), ShouldEqual, "JOSÉ NÚÑEZ")
		})

		Convey("Then empty input stays empty", func() {
			So(ingest.CleanName(""), ShouldEqual, "")
		})
	})
}

func TestSplitFullName(t *testing.T) {
	Convey("Given cleaned full names", t, func() {
		Convey("When the name ends in a suffix", func() {
			p := ingest.SplitFullName("JOHN A SMITH JR.")

			Convey("Then the suffix is peeled off before splitting", func() {
				So(p, ShouldResemble, ingest.NameParts{First: "JOHN", Middle: "A", Last: "SMITH", Suffix: "JR"})
			})
		})

		Convey("When the name has several middle words", func() {
			p := ingest.SplitFullName("JOHN MARY ANN SMITH")

			Convey("Then they are joined as the middle name", func() {
				So(p, ShouldResemble, ingest.NameParts{First: "JOHN", Middle: "MARY ANN", Last: "SMITH"})
			})
		})

		Convey("Then short names fill first and last only", func() {
			So(ingest.SplitFullName("JOHN SMITH"), ShouldResemble, ingest.NameParts{First: "JOHN", Last: "SMITH"})
			So(ingest.SplitFullName("CHER"), ShouldResemble, ingest.NameParts{First: "CHER"})
			So(ingest.SplitFullName("JR"), ShouldResemble, ingest.NameParts{First: "JR"})
			So(ingest.SplitFullName("JOHN III"), ShouldResemble, ingest.NameParts{First: "JOHN", Suffix: "III"})
			So(ingest.SplitFullName(""), ShouldResemble, ingest.NameParts{})
		})
	})
}

func TestNormalizeOrigin(t *testing.T) {
	Convey("Given origin values", t, func() {
		Convey("Then state names map to codes", func() {
			So(ingest.NormalizeOrigin("Illinois", ingest.OriginLookup), ShouldEqual, "IL")
			So(ingest.NormalizeOrigin("TX", ingest.OriginLookup), ShouldEqual, "TX")
		})

		Convey("Then foreign and junk values become empty", func() {
			So(ingest.NormalizeOrigin("OUT OF COUNTRY", ingest.OriginLookup), ShouldEqual, "")
			So(ingest.NormalizeOrigin("QC", ingest.OriginLookup), ShouldEqual, "")
			So(ingest.NormalizeOrigin("", ingest.OriginLookup), ShouldEqual, "")
		})

		Convey("Then addresses yield their state code", func() {
			So(ingest.NormalizeOrigin("100 MAIN ST, ATLANTA, GA 30301", ingest.OriginLocation), ShouldEqual, "GA")
			So(ingest.NormalizeOrigin("ATLANTA GA", ingest.OriginLocation), ShouldEqual, "")
		})

		Convey("Then registries without origins yield nothing", func() {
			So(ingest.NormalizeOrigin("Illinois", ingest.OriginNone), ShouldEqual, "")
		})
	})
}
