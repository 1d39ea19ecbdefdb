package linkage_test

import (
	"time"

	"github.com/okian/licmaster/internal/domain/model"
)

func date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

type recOpt func(*model.NormalizedRecord)

func middle(m string) recOpt { return func(r *model.NormalizedRecord) { r.MiddleName = m } }
func origin(o string) recOpt { return func(r *model.NormalizedRecord) { r.OriginState = o } }
func suffix(s string) recOpt { return func(r *model.NormalizedRecord) { r.Suffix = s } }
func active() recOpt { return func(r *model.NormalizedRecord) { r.LicenseActive = true } }
func noDate() recOpt { return func(r *model.NormalizedRecord) { r.LicenseDate = nil } }
func licensed(t *time.Time) recOpt {
	return func(r *model.NormalizedRecord) { r.LicenseDate = t }
}

func rec(first, last, state string, opts ...recOpt) model.NormalizedRecord {
	r := model.NormalizedRecord{
		FirstName:   first,
		LastName:    last,
		SourceState: state,
		LicenseDate: date(2010, time.January, 1),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func ptrs(records []model.NormalizedRecord) []*model.NormalizedRecord {
	out := make([]*model.NormalizedRecord, len(records))
	for i := range records {
		out[i] = &records[i]
	}
	return out
}

func groupOf(records ...model.NormalizedRecord) model.NameGroup {
	return model.NameGroup{Key: records[0].Key(), Records: ptrs(records)}
}

func clusterOf(records ...model.NormalizedRecord) model.Cluster {
	return model.Cluster{Key: records[0].Key(), Records: ptrs(records)}
}
