package linkage_test

import (
	"testing"

	"github.com/okian/licmaster/internal/domain/linkage"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolveOrigin(t *testing.T) {
	Convey("Given a name group", t, func() {
		Convey("When no record declares an origin state", func() {
			g := groupOf(rec("JOHN", "SMITH", "IL"), rec("JOHN", "SMITH", "CA"))
			clusters, excluded := linkage.ResolveOrigin(g)

			Convey("Then the whole group is one cluster without consensus", func() {
				So(clusters, ShouldHaveLength, 1)
				So(clusters[0].ConsensusOrigin, ShouldEqual, "")
				So(clusters[0].Records, ShouldHaveLength, 2)
				So(excluded, ShouldBeEmpty)
			})
		})

		Convey("When the declared origins agree", func() {
			g := groupOf(
				rec("JOHN", "SMITH", "IL", origin("IL")),
				rec("JOHN", "SMITH", "CA", origin("IL")),
				rec("JOHN", "SMITH", "WA"),
			)
			clusters, excluded := linkage.ResolveOrigin(g)

			Convey("Then records without an origin stay in the single cluster", func() {
				So(clusters, ShouldHaveLength, 1)
				So(clusters[0].ConsensusOrigin, ShouldEqual, "IL")
				So(clusters[0].Records, ShouldHaveLength, 3)
				So(excluded, ShouldBeEmpty)
			})
		})

		Convey("When the declared origins conflict", func() {
			g := groupOf(
				rec("JOHN", "SMITH", "IL", origin("NY")),
				rec("JOHN", "SMITH", "CA", origin("CA")),
				rec("JOHN", "SMITH", "OR", origin("CA")),
				rec("JOHN", "SMITH", "WA"),
			)
			clusters, excluded := linkage.ResolveOrigin(g)

			Convey("Then the group is split by origin in sorted order", func() {
				So(clusters, ShouldHaveLength, 2)
				So(clusters[0].ConsensusOrigin, ShouldEqual, "CA")
				So(clusters[0].Records, ShouldHaveLength, 2)
				So(clusters[1].ConsensusOrigin, ShouldEqual, "NY")
				So(clusters[1].Records, ShouldHaveLength, 1)
			})

			Convey("And records without origin are left out of every partition", func() {
				So(excluded, ShouldHaveLength, 1)
				So(excluded[0].SourceState, ShouldEqual, "WA")
			})
		})
	})
}
