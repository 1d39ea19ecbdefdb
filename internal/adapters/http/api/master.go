package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/licmaster/internal/domain/model"
	"github.com/okian/licmaster/internal/domain/types"
)

const defaultPageLimit = 100

// MasterDependencies reads the master lists.
type MasterDependencies interface {
	Identity(ctx context.Context, view types.View, key string) ([]model.MasterRecord, error)
	Page(ctx context.Context, view types.View, offset, limit int) (types.Page, error)
}

// MasterHandler handles identity and master list requests.
type MasterHandler struct {
	deps     MasterDependencies
	maxLimit int
}

// NewMasterHandler creates a new master list handler.
func NewMasterHandler(deps MasterDependencies, maxLimit int) *MasterHandler {
	return &MasterHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetIdentity handles GET /identities/{key}?view= requests.
func (h *MasterHandler) HandleGetIdentity(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_identity"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	key := strings.TrimPrefix(r.URL.Path, "/identities/")
	if key == "" || strings.Contains(key, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	view, err := viewParam(op, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rows, err := h.deps.Identity(r.Context(), view, key)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, identityResponse{IdentityKey: key, View: view, Rows: rows})
}

// HandleGetMaster handles GET /master?view=&limit=&offset= requests.
func (h *MasterHandler) HandleGetMaster(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_master"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	view, err := viewParam(op, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	limit, err := intParam(op, r, "limit", min(defaultPageLimit, h.maxLimit))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if limit < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if limit > h.maxLimit {
		writeServiceError(w, NewKind(op, ErrLimitExceeded))
		return
	}
	offset, err := intParam(op, r, "offset", 0)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	page, err := h.deps.Page(r.Context(), view, offset, limit)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, page)
}
