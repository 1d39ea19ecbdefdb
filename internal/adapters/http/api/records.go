package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/licmaster/internal/domain/model"
	"github.com/okian/licmaster/internal/domain/types"
)

const dateLayout = "2006-01-02"

// RecordsDependencies stages submitted record batches.
type RecordsDependencies interface {
	Stage(ctx context.Context, batchID string, records []model.NormalizedRecord) (types.StageResult, error)
}

// RecordsHandler handles record submissions.
type RecordsHandler struct {
	deps RecordsDependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordsDependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// batchRequest mirrors the OpenAPI schema for POST /records.
type batchRequest struct {
	BatchID string          `json:"batch_id"`
	Records []recordRequest `json:"records"`
}

type recordRequest struct {
	FirstName      string `json:"first_name"`
	MiddleName     string `json:"middle_name"`
	LastName       string `json:"last_name"`
	Suffix         string `json:"suffix"`
	SourceState    string `json:"source_state"`
	OriginState    string `json:"origin_state"`
	LicenseDate    string `json:"license_date"`
	ExpirationDate string `json:"expiration_date"`
	LicenseActive  bool   `json:"license_active"`
}

func (b batchRequest) validate() error {
	if len(b.Records) == 0 {
		return errors.New("missing records")
	}
	for i, r := range b.Records {
		if strings.TrimSpace(r.SourceState) == "" {
			return fmt.Errorf("records[%d]: missing source_state", i)
		}
	}
	return nil
}

func (r recordRequest) toRecord() (model.NormalizedRecord, error) {
	licensed, err := parseDay(r.LicenseDate)
	if err != nil {
		return model.NormalizedRecord{}, fmt.Errorf("license_date: %w", err)
	}
	expires, err := parseDay(r.ExpirationDate)
	if err != nil {
		return model.NormalizedRecord{}, fmt.Errorf("expiration_date: %w", err)
	}
	return model.NormalizedRecord{
		FirstName:      r.FirstName,
		MiddleName:     r.MiddleName,
		LastName:       r.LastName,
		Suffix:         r.Suffix,
		SourceState:    r.SourceState,
		OriginState:    r.OriginState,
		LicenseDate:    licensed,
		ExpirationDate: expires,
		LicenseActive:  r.LicenseActive,
	}, nil
}

// parseDay accepts YYYY-MM-DD or RFC3339; empty means no date.
func parseDay(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return nil, fmt.Errorf("invalid date %q; must be YYYY-MM-DD", s)
		}
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return &t, nil
}

// HandlePostRecords handles POST /records requests.
func (h *RecordsHandler) HandlePostRecords(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_records"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	records := make([]model.NormalizedRecord, 0, len(req.Records))
	for i, rr := range req.Records {
		rec, err := rr.toRecord()
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("records[%d]: %w", i, err)))
			return
		}
		records = append(records, rec)
	}

	res, err := h.deps.Stage(r.Context(), req.BatchID, records)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	if res.Duplicate {
		writeJSON(w, http.StatusOK, res)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}
