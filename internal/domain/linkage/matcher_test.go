package linkage_test

import (
	"testing"

	"github.com/okian/licmaster/internal/domain/linkage"
	"github.com/okian/licmaster/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMatchMiddleNames(t *testing.T) {
	Convey("Given an origin-consistent cluster", t, func() {
		Convey("When a full name and its initial come from two states", func() {
			m, ok := linkage.MatchMiddleNames(clusterOf(
				rec("JOHN", "SMITH", "IL", middle("JAMES")),
				rec("JOHN", "SMITH", "CA", middle("J")),
			))

			Convey("Then both tokens are compatible with medium confidence", func() {
				So(ok, ShouldBeTrue)
				So(m.MiddleName, ShouldEqual, "J, JAMES")
				So(m.States, ShouldResemble, []string{"CA", "IL"})
				So(m.Confidence, ShouldEqual, model.ConfidenceMedium)
			})
		})

		Convey("When both states report the same middle name", func() {
			m, ok := linkage.MatchMiddleNames(clusterOf(
				rec("JOHN", "SMITH", "IL", middle("JAMES")),
				rec("JOHN", "SMITH", "CA", middle("JAMES")),
			))

			Convey("Then the confidence is high", func() {
				So(ok, ShouldBeTrue)
				So(m.MiddleName, ShouldEqual, "JAMES")
				So(m.Confidence, ShouldEqual, model.ConfidenceHigh)
			})
		})

		Convey("When two full middle names disagree", func() {
			m, ok := linkage.MatchMiddleNames(clusterOf(
				rec("JOHN", "SMITH", "IL", middle("JAMES")),
				rec("JOHN", "SMITH", "CA", middle("ROBERT")),
			))

			Convey("Then both full names are still kept as compatible", func() {
				So(ok, ShouldBeTrue)
				So(m.MiddleName, ShouldEqual, "JAMES, ROBERT")
				So(m.Confidence, ShouldEqual, model.ConfidenceMedium)
			})
		})

		Convey("When only mismatched initials exist across two states", func() {
			m, ok := linkage.MatchMiddleNames(clusterOf(
				rec("JOHN", "SMITH", "IL", middle("J")),
				rec("JOHN", "SMITH", "CA", middle("R")),
			))

			Convey("Then nothing is compatible and the match is low confidence", func() {
				So(ok, ShouldBeTrue)
				So(m.MiddleName, ShouldEqual, "")
				So(m.States, ShouldResemble, []string{"CA", "IL"})
				So(m.Confidence, ShouldEqual, model.ConfidenceLow)
			})
		})

		Convey("When nobody has a middle name but two states are involved", func() {
			m, ok := linkage.MatchMiddleNames(clusterOf(
				rec("JOHN", "SMITH", "IL"),
				rec("JOHN", "SMITH", "CA"),
				rec("JOHN", "SMITH", "CA"),
			))

			Convey("Then the match is low confidence over every source state", func() {
				So(ok, ShouldBeTrue)
				So(m.Confidence, ShouldEqual, model.ConfidenceLow)
				So(m.States, ShouldResemble, []string{"CA", "IL"})
				So(m.Records, ShouldHaveLength, 3)
			})
		})

		Convey("When a single state has no usable middle name", func() {
			_, ok := linkage.MatchMiddleNames(clusterOf(
				rec("JOHN", "SMITH", "IL"),
				rec("JOHN", "SMITH", "IL", middle("Q")),
			))

			Convey("Then it signals a singleton", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When one state lists two different full middle names", func() {
			m, ok := linkage.MatchMiddleNames(clusterOf(
				rec("ANA", "LOPEZ", "OK", middle("MARIA")),
				rec("ANA", "LOPEZ", "OK", middle("ROSA")),
			))

			Convey("Then full names alone are enough evidence for a match", func() {
				So(ok, ShouldBeTrue)
				So(m.MiddleName, ShouldEqual, "MARIA, ROSA")
				So(m.States, ShouldResemble, []string{"OK"})
				So(m.Confidence, ShouldEqual, model.ConfidenceMedium)
			})
		})

		Convey("When records without a middle name sit next to a full name", func() {
			m, ok := linkage.MatchMiddleNames(clusterOf(
				rec("JOHN", "SMITH", "IL", middle("JAMES")),
				rec("JOHN", "SMITH", "OR"),
			))

			Convey("Then their states count as compatible", func() {
				So(ok, ShouldBeTrue)
				So(m.Confidence, ShouldEqual, model.ConfidenceHigh)
				So(m.States, ShouldResemble, []string{"IL", "OR"})
			})
		})

		Convey("When a record lists several comma separated middle names", func() {
			m, ok := linkage.MatchMiddleNames(clusterOf(
				rec("MARY", "JONES", "GA", middle("ANN, LOUISE")),
				rec("MARY", "JONES", "UT", middle("L")),
				rec("MARY", "JONES", "WA", middle("Z")),
			))

			Convey("Then every token is paired with its state and unmatched initials are dropped", func() {
				So(ok, ShouldBeTrue)
				So(m.MiddleName, ShouldEqual, "ANN, L, LOUISE")
				So(m.States, ShouldResemble, []string{"GA", "UT"})
				So(m.Confidence, ShouldEqual, model.ConfidenceMedium)
			})
		})

		Convey("When an initial only matches in another case", func() {
			m, ok := linkage.MatchMiddleNames(clusterOf(
				rec("JOHN", "SMITH", "IL", middle("JAMES")),
				rec("JOHN", "SMITH", "CA", middle("j")),
			))

			Convey("Then the prefix match is case sensitive", func() {
				So(ok, ShouldBeTrue)
				So(m.MiddleName, ShouldEqual, "JAMES")
				So(m.States, ShouldResemble, []string{"IL"})
				So(m.Confidence, ShouldEqual, model.ConfidenceHigh)
			})
		})
	})
}
