package linkage

import "github.com/okian/licmaster/internal/domain/model"

// Outcome is the resolved form of one name group.
type Outcome struct {
	Matches        []model.MatchResult
	Singletons     []*model.NormalizedRecord
	OriginConflict bool
}

// Process runs origin resolution and middle-name matching for one group.
// Every record of the group ends up either in exactly one match or in the
// singleton list: records dropped by an origin split and members of clusters
// too small to compare are emitted on their own.
func Process(group model.NameGroup) Outcome {
	clusters, excluded := ResolveOrigin(group)

	out := Outcome{OriginConflict: len(clusters) > 1}
	for _, c := range clusters {
		match, ok := MatchMiddleNames(c)
		if !ok {
			out.Singletons = append(out.Singletons, c.Records...)
			continue
		}
		out.Matches = append(out.Matches, match)
	}
	out.Singletons = append(out.Singletons, excluded...)
	return out
}
