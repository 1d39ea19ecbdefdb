// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/licmaster/internal/adapters/repository"
	service "github.com/okian/licmaster/internal/app"
	"github.com/okian/licmaster/internal/domain/model"
	"github.com/okian/licmaster/internal/domain/types"
)

const defaultMaxPageLimit = 1000

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider
	RecordsDependencies
	ReconcileDependencies
	MasterDependencies
	ReportDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	recordsHandler   *RecordsHandler
	reconcileHandler *ReconcileHandler
	masterHandler    *MasterHandler
	reportHandler    *ReportHandler
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	maxPageLimit int
}

// WithMaxPageLimit caps GET /master?limit.
func WithMaxPageLimit(limit int) ServerOption {
	return func(c *serverConfig) {
		if limit > 0 {
			c.maxPageLimit = limit
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	cfg := serverConfig{maxPageLimit: defaultMaxPageLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		recordsHandler:   NewRecordsHandler(deps),
		reconcileHandler: NewReconcileHandler(deps),
		masterHandler:    NewMasterHandler(deps, cfg.maxPageLimit),
		reportHandler:    NewReportHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/records", MetricsMiddleware(s.recordsHandler.HandlePostRecords, "records"))
	mux.HandleFunc("/reconcile", MetricsMiddleware(s.reconcileHandler.HandleReconcile, "reconcile"))
	mux.HandleFunc("/identities/", MetricsMiddleware(s.masterHandler.HandleGetIdentity, "identities"))
	mux.HandleFunc("/master", MetricsMiddleware(s.masterHandler.HandleGetMaster, "master"))
	mux.HandleFunc("/states", MetricsMiddleware(s.reportHandler.HandleStates, "states"))
	mux.HandleFunc("/licensees", MetricsMiddleware(s.reportHandler.HandleLicensees, "licensees"))
	mux.HandleFunc("/license-age", MetricsMiddleware(s.reportHandler.HandleLicenseAge, "license_age"))
}

// identityResponse is the body of GET /identities/{key}.
type identityResponse struct {
	IdentityKey string               `json:"identity_key"`
	View        types.View           `json:"view"`
	Rows        []model.MasterRecord `json:"rows"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps sentinels from the service and store to a status.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrLimitExceeded):
		writeError(w, http.StatusBadRequest, "limit_exceeded", err)
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrInvalidView),
		errors.Is(err, repository.ErrInvalidPage), errors.Is(err, repository.ErrUnknownView),
		errors.Is(err, service.ErrEmptyBatch):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrReconcileRunning):
		writeError(w, http.StatusConflict, "reconcile_running", err)
	case errors.Is(err, service.ErrNothingToReconcile):
		writeError(w, http.StatusConflict, "nothing_to_reconcile", err)
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, repository.ErrStoreClosed):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// viewParam reads ?view=, defaulting to all.
func viewParam(op string, r *http.Request) (types.View, error) {
	v, ok := types.ParseView(r.URL.Query().Get("view"))
	if !ok {
		return "", NewKind(op, ErrInvalidView)
	}
	return v, nil
}

// intParam reads a non-negative integer query value, returning def when absent.
func intParam(op string, r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, NewKind(op, ErrBadRequest)
	}
	return n, nil
}
