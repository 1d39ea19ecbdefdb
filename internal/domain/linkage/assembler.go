package linkage

import (
	"fmt"
	"time"

	"github.com/okian/licmaster/internal/domain/identity"
	"github.com/okian/licmaster/internal/domain/model"
)

// Assemble emits one master row per record of a match. All rows share the
// identity key derived from the consensus origin state.
func Assemble(key model.NameKey, m model.MatchResult) ([]model.MasterRecord, error) {
	identityKey := identity.Key(key.FirstName, key.LastNameWithSuffix, m.ConsensusOrigin)

	var firstDate, firstActiveDate *time.Time
	hasActive := false
	displayedOrigin := ""
	for _, r := range m.Records {
		if r.LicenseDate == nil {
			return nil, fmt.Errorf("%w: identity %s (%s) licensed in %s", ErrMissingLicenseDate, identityKey, key, r.SourceState)
		}
		if firstDate == nil || r.LicenseDate.Before(*firstDate) {
			firstDate = r.LicenseDate
		}
		if r.LicenseActive {
			hasActive = true
			if firstActiveDate == nil || r.LicenseDate.Before(*firstActiveDate) {
				firstActiveDate = r.LicenseDate
			}
		}
		// Rows display the origin of the last record after sorting by origin.
		if r.OriginState > displayedOrigin {
			displayedOrigin = r.OriginState
		}
	}

	rows := make([]model.MasterRecord, 0, len(m.Records))
	for _, r := range m.Records {
		oldestActive := model.ActiveNotApplicable
		if hasActive {
			oldestActive = model.FlagOf(r.LicenseDate.Equal(*firstActiveDate))
		}
		rows = append(rows, model.MasterRecord{
			IdentityKey:           identityKey,
			LicenseState:          r.SourceState,
			FirstName:             key.FirstName,
			MiddleName:            m.MiddleName,
			LastName:              key.LastNameWithSuffix,
			MatchConfidence:       m.Confidence,
			LicenseDate:           r.LicenseDate,
			LicenseYear:           yearOf(r.LicenseDate),
			OriginState:           displayedOrigin,
			LicenseActive:         r.LicenseActive,
			LicenseExpirationDate: r.ExpirationDate,
			FirstLicense:          r.LicenseDate.Equal(*firstDate),
			OldestActiveLicense:   oldestActive,
		})
	}
	return rows, nil
}

// AssembleSingleton emits the row for a record that matched nobody.
func AssembleSingleton(key model.NameKey, r *model.NormalizedRecord) model.MasterRecord {
	oldestActive := model.ActiveNotApplicable
	if r.LicenseActive {
		oldestActive = model.ActiveTrue
	}
	return model.MasterRecord{
		IdentityKey:           identity.Key(key.FirstName, key.LastNameWithSuffix, r.OriginState),
		LicenseState:          r.SourceState,
		FirstName:             key.FirstName,
		MiddleName:            r.MiddleName,
		LastName:              key.LastNameWithSuffix,
		MatchConfidence:       model.ConfidenceSingleton,
		LicenseDate:           r.LicenseDate,
		LicenseYear:           yearOf(r.LicenseDate),
		OriginState:           r.OriginState,
		LicenseActive:         r.LicenseActive,
		LicenseExpirationDate: r.ExpirationDate,
		FirstLicense:          true,
		OldestActiveLicense:   oldestActive,
	}
}

func yearOf(t *time.Time) *int {
	if t == nil {
		return nil
	}
	y := t.Year()
	return &y
}
