package synth

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/licmaster/internal/domain/types"
	"github.com/okian/licmaster/pkg/logger"
)

// ErrVerification is returned when the service result disagrees with what was submitted.
var ErrVerification = errors.New("verification failed")

// verifyResults checks the run against what was submitted: every staged
// record must come out as exactly one row of the full list, the published
// summary must agree with the run, and replayed batches must not be staged twice.
func verifyResults(ctx context.Context, cfg *Config, run types.RunInfo, after types.ServiceStats, stats *Stats) error {
	logger.Get().Info(ctx, "verifying results")

	if stats.Failed > 0 {
		return fmt.Errorf("%w: %d batches failed", ErrVerification, stats.Failed)
	}
	if got, want := after.Staged-stats.StagedBefore, stats.Accepted; got != want {
		return fmt.Errorf("%w: staged grew by %d, accepted %d", ErrVerification, got, want)
	}
	if stats.Duplicates != cfg.Duplicates {
		return fmt.Errorf("%w: %d replayed batches reported duplicate, want %d", ErrVerification, stats.Duplicates, cfg.Duplicates)
	}

	all, ok := viewRun(run, types.ViewAll)
	if !ok {
		return fmt.Errorf("%w: run has no %s view", ErrVerification, types.ViewAll)
	}
	if all.Rows != all.Records {
		return fmt.Errorf("%w: %d input records produced %d rows", ErrVerification, all.Records, all.Rows)
	}
	if all.Records < stats.Accepted {
		return fmt.Errorf("%w: run saw %d records, accepted %d", ErrVerification, all.Records, stats.Accepted)
	}
	// with nothing else staged or loaded each generated person is one identity
	if stats.StagedBefore == 0 && all.Records == stats.Accepted && all.Identities != stats.Identities {
		return fmt.Errorf("%w: %d identities linked, generated %d", ErrVerification, all.Identities, stats.Identities)
	}

	for _, s := range after.Summaries {
		if s.View != types.ViewAll {
			continue
		}
		if s.TotalLicenses != all.Rows || s.UniqueIdentities != all.Identities {
			return fmt.Errorf("%w: summary reports %d licenses for %d identities, run built %d for %d",
				ErrVerification, s.TotalLicenses, s.UniqueIdentities, all.Rows, all.Identities)
		}
	}

	logger.Get().Info(ctx, "result verification completed",
		logger.Int("rows", all.Rows),
		logger.Int("identities", all.Identities))
	return nil
}

func viewRun(run types.RunInfo, view types.View) (types.ViewRun, bool) {
	for _, v := range run.Views {
		if v.View == view {
			return v, true
		}
	}
	return types.ViewRun{}, false
}
