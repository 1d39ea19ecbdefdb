// Package report derives summary statistics and chart aggregates from a master list.
package report

import (
	"sort"

	"github.com/okian/licmaster/internal/domain/model"
	"github.com/okian/licmaster/internal/domain/types"
)

const percentMultiplier = 100

// License status labels used by LicenseAge.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Summarize computes identity and confidence statistics for one view.
func Summarize(view types.View, rows []model.MasterRecord) types.Summary {
	perIdentity := licensesPerIdentity(rows)
	byConfidence := make(map[model.Confidence]int, len(model.Confidences))
	for i := range rows {
		byConfidence[rows[i].MatchConfidence]++
	}

	s := types.Summary{
		View:             view,
		UniqueIdentities: len(perIdentity),
		TotalLicenses:    len(rows),
		Confidence:       make([]types.ConfidenceShare, 0, len(model.Confidences)),
	}
	if s.UniqueIdentities > 0 {
		s.LicensesPerIdentity = float64(s.TotalLicenses) / float64(s.UniqueIdentities)
	}
	for _, c := range model.Confidences {
		share := types.ConfidenceShare{Confidence: c, Count: byConfidence[c]}
		if s.TotalLicenses > 0 {
			share.Percent = float64(share.Count) / float64(s.TotalLicenses) * percentMultiplier
		}
		s.Confidence = append(s.Confidence, share)
	}
	for _, n := range perIdentity {
		if n > 1 {
			s.MultiLicenseHolders++
		}
	}
	return s
}

// StateCounts returns the number of licenses per issuing state, largest first.
func StateCounts(rows []model.MasterRecord) []types.StateCount {
	counts := make(map[string]int)
	for i := range rows {
		counts[rows[i].LicenseState]++
	}
	out := make([]types.StateCount, 0, len(counts))
	for state, n := range counts {
		out = append(out, types.StateCount{State: state, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].State < out[j].State
	})
	return out
}

// LicenseeCounts returns how many identities hold one, two, three... licenses.
func LicenseeCounts(rows []model.MasterRecord) []types.LicenseeCount {
	histogram := make(map[int]int)
	for _, n := range licensesPerIdentity(rows) {
		histogram[n]++
	}
	out := make([]types.LicenseeCount, 0, len(histogram))
	for licenses, identities := range histogram {
		out = append(out, types.LicenseeCount{Licenses: licenses, Identities: identities})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Licenses < out[j].Licenses })
	return out
}

// LicenseAge counts licenses by year of issue and activity. Undated rows are skipped.
func LicenseAge(rows []model.MasterRecord) []types.LicenseAgeBucket {
	type bucketKey struct {
		year   int
		status string
	}
	counts := make(map[bucketKey]int)
	for i := range rows {
		if rows[i].LicenseYear == nil {
			continue
		}
		status := StatusInactive
		if rows[i].LicenseActive {
			status = StatusActive
		}
		counts[bucketKey{year: *rows[i].LicenseYear, status: status}]++
	}
	out := make([]types.LicenseAgeBucket, 0, len(counts))
	for k, n := range counts {
		out = append(out, types.LicenseAgeBucket{Year: k.year, Status: k.status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Status < out[j].Status
	})
	return out
}

func licensesPerIdentity(rows []model.MasterRecord) map[string]int {
	perIdentity := make(map[string]int)
	for i := range rows {
		perIdentity[rows[i].IdentityKey]++
	}
	return perIdentity
}
