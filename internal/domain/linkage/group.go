// Package linkage clusters normalized license records into identities and
// assembles the master rows for each identity.
package linkage

import (
	"sort"

	"github.com/okian/licmaster/internal/domain/model"
)

// GroupByName pools records by exact (first name, last name with suffix).
// Groups come back ordered by key; records keep their input order.
func GroupByName(records []model.NormalizedRecord) []model.NameGroup {
	index := make(map[model.NameKey]int)
	var groups []model.NameGroup
	for i := range records {
		r := &records[i]
		key := r.Key()
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, model.NameGroup{Key: key})
		}
		groups[pos].Records = append(groups[pos].Records, r)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key.Less(groups[j].Key)
	})
	return groups
}
