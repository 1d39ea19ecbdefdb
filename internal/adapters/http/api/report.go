package api

import (
	"context"
	"net/http"

	"github.com/okian/licmaster/internal/domain/types"
)

// ReportDependencies exposes the aggregate reports.
type ReportDependencies interface {
	StateCounts(ctx context.Context, view types.View) ([]types.StateCount, error)
	LicenseeCounts(ctx context.Context, view types.View) ([]types.LicenseeCount, error)
	LicenseAge(ctx context.Context, view types.View) ([]types.LicenseAgeBucket, error)
}

// ReportHandler handles aggregate report requests.
type ReportHandler struct {
	deps ReportDependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// HandleStates handles GET /states?view= requests.
func (h *ReportHandler) HandleStates(w http.ResponseWriter, r *http.Request) {
	serveReport(w, r, "api.get_states", h.deps.StateCounts)
}

// HandleLicensees handles GET /licensees?view= requests.
func (h *ReportHandler) HandleLicensees(w http.ResponseWriter, r *http.Request) {
	serveReport(w, r, "api.get_licensees", h.deps.LicenseeCounts)
}

// HandleLicenseAge handles GET /license-age?view= requests.
func (h *ReportHandler) HandleLicenseAge(w http.ResponseWriter, r *http.Request) {
	serveReport(w, r, "api.get_license_age", h.deps.LicenseAge)
}

func serveReport[T any](w http.ResponseWriter, r *http.Request, op string, fetch func(context.Context, types.View) ([]T, error)) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	view, err := viewParam(op, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out, err := fetch(r.Context(), view)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	if out == nil {
		out = []T{}
	}
	writeJSON(w, http.StatusOK, out)
}
