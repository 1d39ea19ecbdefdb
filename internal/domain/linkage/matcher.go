package linkage

import (
	"strings"
	"unicode/utf8"

	"github.com/okian/licmaster/internal/domain/model"
)

// middleToken is one middle name (or initial) and the state that reported it.
type middleToken struct {
	name  string
	state string
}

// isFullName reports whether the token has more than one non-space character.
func (t middleToken) isFullName() bool {
	return utf8.RuneCountInString(strings.ReplaceAll(t.name, " ", "")) > 1
}

// MatchMiddleNames reconciles the middle names of an origin-consistent cluster.
//
// Full names are always compatible; an initial is compatible when it is a leading
// match of at least one full name. Records without a middle name never count
// against a match. The second return value is false when the cluster is a single
// state with no usable middle name evidence, which the caller treats as singletons.
func MatchMiddleNames(c model.Cluster) (model.MatchResult, bool) {
	var withMiddle, withoutMiddle []*model.NormalizedRecord
	for _, r := range c.Records {
		if r.HasMiddleName() {
			withMiddle = append(withMiddle, r)
		} else {
			withoutMiddle = append(withoutMiddle, r)
		}
	}

	var fullNames, initials []middleToken
	for _, tok := range tokenize(withMiddle) {
		if tok.isFullName() {
			fullNames = append(fullNames, tok)
		} else {
			initials = append(initials, tok)
		}
	}

	compatible := append([]middleToken(nil), fullNames...)
	for _, initial := range initials {
		for _, full := range fullNames {
			if strings.HasPrefix(full.name, initial.name) {
				compatible = append(compatible, initial)
				break
			}
		}
	}

	if len(compatible) > 0 {
		names := make(map[string]struct{})
		states := make(map[string]struct{})
		for _, tok := range compatible {
			names[tok.name] = struct{}{}
			states[tok.state] = struct{}{}
		}
		for _, r := range withoutMiddle {
			states[r.SourceState] = struct{}{}
		}

		confidence := model.ConfidenceMedium
		if len(names) == 1 {
			confidence = model.ConfidenceHigh
		}
		return model.MatchResult{
			MiddleName:      strings.Join(sortedKeys(names), ", "),
			States:          sortedKeys(states),
			Confidence:      confidence,
			ConsensusOrigin: c.ConsensusOrigin,
			Records:         c.Records,
		}, true
	}

	sourceStates := make(map[string]struct{})
	for _, r := range c.Records {
		sourceStates[r.SourceState] = struct{}{}
	}
	if len(sourceStates) > 1 {
		return model.MatchResult{
			MiddleName:      "",
			States:          sortedKeys(sourceStates),
			Confidence:      model.ConfidenceLow,
			ConsensusOrigin: c.ConsensusOrigin,
			Records:         c.Records,
		}, true
	}

	return model.MatchResult{}, false
}

// tokenize splits comma separated middle names into trimmed, non-empty tokens.
func tokenize(records []*model.NormalizedRecord) []middleToken {
	var out []middleToken
	for _, r := range records {
		for _, part := range strings.Split(r.MiddleName, ",") {
			name := strings.TrimSpace(part)
			if name == "" {
				continue
			}
			out = append(out, middleToken{name: name, state: r.SourceState})
		}
	}
	return out
}
