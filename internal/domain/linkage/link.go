package linkage

import (
	"sort"

	"github.com/okian/licmaster/internal/domain/model"
)

// GroupResult is everything produced for one name group.
type GroupResult struct {
	Rows           []model.MasterRecord
	Matches        []model.Confidence
	Singletons     int
	OriginConflict bool
}

// LinkOption adjusts LinkGroup and Link.
type LinkOption func(*linkConfig)

type linkConfig struct {
	undatedSingletons bool
}

// WithUndatedSingletons keeps records without a license date out of matching
// and emits each of them as a singleton. Without it an undated record that
// lands in a match fails the group with ErrMissingLicenseDate.
func WithUndatedSingletons() LinkOption {
	return func(c *linkConfig) {
		c.undatedSingletons = true
	}
}

// LinkGroup resolves one name group and assembles its master rows.
func LinkGroup(group model.NameGroup, opts ...LinkOption) (GroupResult, error) {
	var cfg linkConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var undated []*model.NormalizedRecord
	if cfg.undatedSingletons {
		group, undated = splitUndated(group)
	}
	outcome := Process(group)
	outcome.Singletons = append(outcome.Singletons, undated...)

	res := GroupResult{
		Rows:           make([]model.MasterRecord, 0, len(group.Records)),
		Singletons:     len(outcome.Singletons),
		OriginConflict: outcome.OriginConflict,
	}
	for _, m := range outcome.Matches {
		rows, err := Assemble(group.Key, m)
		if err != nil {
			return GroupResult{}, err
		}
		res.Rows = append(res.Rows, rows...)
		res.Matches = append(res.Matches, m.Confidence)
	}
	for _, r := range outcome.Singletons {
		res.Rows = append(res.Rows, AssembleSingleton(group.Key, r))
	}
	return res, nil
}

// splitUndated separates the records of group that have no license date.
func splitUndated(group model.NameGroup) (model.NameGroup, []*model.NormalizedRecord) {
	dated := model.NameGroup{Key: group.Key, Records: make([]*model.NormalizedRecord, 0, len(group.Records))}
	var undated []*model.NormalizedRecord
	for _, r := range group.Records {
		if r.LicenseDate == nil {
			undated = append(undated, r)
			continue
		}
		dated.Records = append(dated.Records, r)
	}
	return dated, undated
}

// Link runs the whole pipeline sequentially and returns the sorted master list.
func Link(records []model.NormalizedRecord, opts ...LinkOption) ([]model.MasterRecord, error) {
	rows := make([]model.MasterRecord, 0, len(records))
	for _, g := range GroupByName(records) {
		res, err := LinkGroup(g, opts...)
		if err != nil {
			return nil, err
		}
		rows = append(rows, res.Rows...)
	}
	SortMaster(rows)
	return rows, nil
}

// SortMaster orders rows by identity key, then license state.
func SortMaster(rows []model.MasterRecord) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Less(&rows[j])
	})
}
