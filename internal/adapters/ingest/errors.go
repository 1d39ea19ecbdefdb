package ingest

import "errors"

// Sentinel errors returned by the ingest adapters.
var (
	ErrUnknownState  = errors.New("unknown source state")
	ErrUnknownFormat = errors.New("unknown source format")
)

// Rejection reasons reported in Stats and metrics.
const (
	ReasonMissingDate  = "missing_license_date"
	ReasonMissingName  = "missing_name"
	ReasonMissingState = "missing_source_state"
	ReasonInactive     = "inactive"
)
