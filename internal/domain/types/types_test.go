package types_test

import (
	"testing"

	types "github.com/okian/licmaster/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseView(t *testing.T) {
	Convey("Given view query values", t, func() {
		Convey("When the value is empty", func() {
			v, ok := types.ParseView("")

			Convey("Then the full list is selected", func() {
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, types.ViewAll)
			})
		})

		Convey("When the value names the active list", func() {
			v, ok := types.ParseView("active")

			Convey("Then the active list is selected", func() {
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, types.ViewActive)
			})
		})

		Convey("When the value is unknown", func() {
			_, ok := types.ParseView("inactive")

			Convey("Then it is rejected", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}
