package linkage

import "errors"

// Sentinel kinds for linkage errors.
var (
	// ErrMissingLicenseDate marks a matched record without a license date. Upstream
	// filtering is expected to keep such records out of multi-record clusters.
	ErrMissingLicenseDate = errors.New("matched record has no license date")
)
