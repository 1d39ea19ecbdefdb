package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/licmaster/internal/adapters/ingest"
	"github.com/okian/licmaster/internal/adapters/repository"
	service "github.com/okian/licmaster/internal/app"
	"github.com/okian/licmaster/internal/domain/model"
	"github.com/okian/licmaster/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

const johnKey = "0cbb84f3c7217132"

const illinoisExport = `First Name,Middle,Last Name,Suffix,Original Issue Date,Expiration Date,State,License Status
John,James,Smith,,1/1/2001,3/5/2030,Illinois,ACTIVE
Mary,,Jones,Jr,1/2/1999,,QC,EXPIRED
Ana,,Lopez,,,,TX,ACTIVE
`

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service with staged records", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(16),
			service.WithDedupeSize(50),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		_, err := svc.Stage(ctx, "batch-1", johnSmith())
		So(err, ShouldBeNil)

		Convey("When reconciling", func() {
			run, err := svc.Reconcile(ctx)
			So(err, ShouldBeNil)

			Convey("Then both views are built", func() {
				So(run.RunID, ShouldNotBeEmpty)
				So(run.Staged, ShouldEqual, 2)
				So(run.Views, ShouldHaveLength, 2)
				So(run.Views[0], ShouldResemble, types.ViewRun{View: types.ViewAll, Records: 2, Groups: 1, Rows: 2, Identities: 1})
				So(run.Views[1], ShouldResemble, types.ViewRun{View: types.ViewActive, Records: 1, Groups: 1, Rows: 1, Identities: 1})
				So(svc.GetStats(ctx).LastRun.RunID, ShouldEqual, run.RunID)
			})

			Convey("Then the two licenses are linked to one identity", func() {
				rows, err := svc.Identity(ctx, types.ViewAll, johnKey)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)

				ca, il := rows[0], rows[1]
				So(ca.LicenseState, ShouldEqual, "CA")
				So(il.LicenseState, ShouldEqual, "IL")
				for _, r := range rows {
					So(r.MatchConfidence, ShouldEqual, model.ConfidenceHigh)
					So(r.MiddleName, ShouldEqual, "JAMES")
					So(r.OriginState, ShouldEqual, "IL")
				}
				So(ca.FirstLicense, ShouldBeTrue)
				So(il.FirstLicense, ShouldBeFalse)
				So(ca.OldestActiveLicense, ShouldEqual, model.ActiveFalse)
				So(il.OldestActiveLicense, ShouldEqual, model.ActiveTrue)
				So(*ca.LicenseYear, ShouldEqual, 1999)
			})

			Convey("Then the active view holds only the active license", func() {
				rows, err := svc.Identity(ctx, types.ViewActive, johnKey)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 1)
				So(rows[0].LicenseState, ShouldEqual, "IL")
				So(rows[0].MatchConfidence, ShouldEqual, model.ConfidenceHigh)
				So(rows[0].FirstLicense, ShouldBeTrue)
				So(rows[0].OldestActiveLicense, ShouldEqual, model.ActiveTrue)
			})

			Convey("Then reports describe the lists", func() {
				sum, err := svc.Summary(ctx, types.ViewAll)
				So(err, ShouldBeNil)
				So(sum.UniqueIdentities, ShouldEqual, 1)
				So(sum.TotalLicenses, ShouldEqual, 2)
				So(sum.MultiLicenseHolders, ShouldEqual, 1)

				counts, err := svc.StateCounts(ctx, types.ViewAll)
				So(err, ShouldBeNil)
				So(counts, ShouldResemble, []types.StateCount{{State: "CA", Count: 1}, {State: "IL", Count: 1}})

				holders, err := svc.LicenseeCounts(ctx, types.ViewAll)
				So(err, ShouldBeNil)
				So(holders, ShouldResemble, []types.LicenseeCount{{Licenses: 2, Identities: 1}})

				age, err := svc.LicenseAge(ctx, types.ViewActive)
				So(err, ShouldBeNil)
				So(age, ShouldResemble, []types.LicenseAgeBucket{{Year: 2001, Status: "active", Count: 1}})
			})

			Convey("Then pages are served from the store", func() {
				page, err := svc.Page(ctx, types.ViewAll, 1, 10)
				So(err, ShouldBeNil)
				So(page.Total, ShouldEqual, 2)
				So(page.Rows, ShouldHaveLength, 1)
				So(page.Rows[0].LicenseState, ShouldEqual, "IL")
			})

			Convey("And an unknown identity is looked up", func() {
				_, err := svc.Identity(ctx, types.ViewAll, "ffffffffffffffff")

				Convey("Then it is not found", func() {
					So(err, ShouldEqual, repository.ErrNotFound)
				})
			})
		})

		Convey("When a later run is made after another batch", func() {
			_, err := svc.Reconcile(ctx)
			So(err, ShouldBeNil)
			_, err = svc.Stage(ctx, "batch-2", []model.NormalizedRecord{
				{FirstName: "JANE", LastName: "DOE", SourceState: "WA", LicenseDate: date(2005, 1, 1), LicenseActive: true},
			})
			So(err, ShouldBeNil)
			run, err := svc.Reconcile(ctx)

			Convey("Then every staged record still appears exactly once", func() {
				So(err, ShouldBeNil)
				So(run.Staged, ShouldEqual, 3)
				page, err := svc.Page(ctx, types.ViewAll, 0, 10)
				So(err, ShouldBeNil)
				So(page.Total, ShouldEqual, 3)
				active, err := svc.Page(ctx, types.ViewActive, 0, 10)
				So(err, ShouldBeNil)
				So(active.Total, ShouldEqual, 2)
			})
		})
	})
}

func TestServiceWithSourcesAndSQLite(t *testing.T) {
	Convey("Given a registry export on disk and a SQLite store", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "il.csv")
		So(os.WriteFile(path, []byte(illinoisExport), 0o600), ShouldBeNil)

		ctx := context.Background()
		store, err := repository.NewSQLiteStore(ctx, filepath.Join(dir, "master.db"))
		So(err, ShouldBeNil)

		svc := service.New(
			service.WithStore(store),
			service.WithSources([]ingest.Source{{State: "IL", Path: path}}),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the remaining license is staged and reconciled", func() {
			_, err := svc.Stage(ctx, "ca", johnSmith()[1:])
			So(err, ShouldBeNil)
			run, err := svc.Reconcile(ctx)
			So(err, ShouldBeNil)

			Convey("Then the export is read with its rejections counted", func() {
				So(run.Sources, ShouldHaveLength, 1)
				So(run.Sources[0].Read, ShouldEqual, 3)
				So(run.Sources[0].Accepted, ShouldEqual, 2)
				So(run.Sources[0].Rejected, ShouldResemble, map[string]int{ingest.ReasonMissingDate: 1})
			})

			Convey("Then the linked identity is persisted", func() {
				rows, err := svc.Identity(ctx, types.ViewAll, johnKey)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[0].FirstLicense, ShouldBeTrue)
				So(rows[1].OldestActiveLicense, ShouldEqual, model.ActiveTrue)

				sum, err := svc.Summary(ctx, types.ViewAll)
				So(err, ShouldBeNil)
				So(sum.UniqueIdentities, ShouldEqual, 2)
				So(sum.TotalLicenses, ShouldEqual, 3)
			})
		})
	})
}
