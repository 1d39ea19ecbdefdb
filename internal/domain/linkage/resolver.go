package linkage

import (
	"sort"

	"github.com/okian/licmaster/internal/domain/model"
)

// ResolveOrigin decides whether a name group agrees on a declared origin state.
//
// With zero or one distinct non-empty origin the whole group is a single cluster.
// With two or more the group is split by origin state; records that carry no
// origin cannot be placed in any partition and are returned as excluded.
func ResolveOrigin(group model.NameGroup) (clusters []model.Cluster, excluded []*model.NormalizedRecord) {
	origins := distinctOrigins(group.Records)

	switch len(origins) {
	case 0:
		return []model.Cluster{{Key: group.Key, Records: group.Records}}, nil
	case 1:
		return []model.Cluster{{Key: group.Key, ConsensusOrigin: origins[0], Records: group.Records}}, nil
	}

	partitions := make(map[string][]*model.NormalizedRecord, len(origins))
	for _, r := range group.Records {
		if r.OriginState == "" {
			excluded = append(excluded, r)
			continue
		}
		partitions[r.OriginState] = append(partitions[r.OriginState], r)
	}

	clusters = make([]model.Cluster, 0, len(origins))
	for _, origin := range origins {
		clusters = append(clusters, model.Cluster{
			Key:             group.Key,
			ConsensusOrigin: origin,
			Records:         partitions[origin],
		})
	}
	return clusters, excluded
}

// distinctOrigins returns the sorted set of non-empty origin states.
func distinctOrigins(records []*model.NormalizedRecord) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.OriginState == "" {
			continue
		}
		seen[r.OriginState] = struct{}{}
	}
	return sortedKeys(seen)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
