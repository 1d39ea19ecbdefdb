package api

import (
	"context"
	"net/http"

	"github.com/okian/licmaster/internal/domain/types"
)

// ReconcileDependencies runs the linkage engine.
type ReconcileDependencies interface {
	Reconcile(ctx context.Context) (types.RunInfo, error)
}

// ReconcileHandler handles reconcile requests.
type ReconcileHandler struct {
	deps ReconcileDependencies
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(deps ReconcileDependencies) *ReconcileHandler {
	return &ReconcileHandler{deps: deps}
}

// HandleReconcile handles POST /reconcile requests. The run is synchronous.
func (h *ReconcileHandler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	const op = "api.reconcile"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	run, err := h.deps.Reconcile(r.Context())
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, run)
}
