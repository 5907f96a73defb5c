package api

import (
	"net/http"
	"time"

	"github.com/labframe/labframe/internal/store"
)

// SampleHandler serves sample CRUD and parameter recording.
type SampleHandler struct {
	store store.Store
}

// NewSampleHandler creates a sample handler.
func NewSampleHandler(s store.Store) *SampleHandler {
	return &SampleHandler{store: s}
}

type createSamplePayload struct {
	PreparedOn string  `json:"prepared_on" validate:"required,datetime=2006-01-02"`
	AuthorName *string `json:"author_name,omitempty"`
}

type recordParametersPayload struct {
	Parameters []store.ParameterAssignment `json:"parameters" validate:"dive"`
}

// List handles GET /api/v1/samples
func (h *SampleHandler) List(w http.ResponseWriter, r *http.Request) {
	project, ok := resolveProject(w, r, h.store)
	if !ok {
		return
	}

	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	samples, err := h.store.ListSamples(r.Context(), project, includeDeleted)
	if handleDBError(w, r, err, "Samples") {
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"data":  samples,
		"total": len(samples),
	})
}

// Get handles GET /api/v1/samples/{id}
func (h *SampleHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, ok := resolveProject(w, r, h.store)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	sample, err := h.store.GetSample(r.Context(), project, id)
	if handleDBError(w, r, err, "Sample") {
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{"sample": sample})
}

// Create handles POST /api/v1/samples
func (h *SampleHandler) Create(w http.ResponseWriter, r *http.Request) {
	project, ok := resolveProject(w, r, h.store)
	if !ok {
		return
	}
	input, ok := decodeJSON[createSamplePayload](w, r)
	if !ok {
		return
	}
	if !validateInput(w, r, input) {
		return
	}

	preparedOn, err := time.Parse("2006-01-02", input.PreparedOn)
	if err != nil {
		sendError(w, r, http.StatusBadRequest, "INVALID_DATE", "prepared_on must be YYYY-MM-DD", nil)
		return
	}

	created, err := h.store.CreateSample(r.Context(), project, store.Sample{
		PreparedOn: preparedOn,
		AuthorName: input.AuthorName,
	})
	if handleDBError(w, r, err, "Sample") {
		return
	}

	sendJSON(w, http.StatusCreated, map[string]interface{}{"sample": created})
}

// Delete handles DELETE /api/v1/samples/{id}
func (h *SampleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	project, ok := resolveProject(w, r, h.store)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	deleted, err := h.store.DeleteSample(r.Context(), project, id)
	if handleDBError(w, r, err, "Sample") {
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{"sample": deleted})
}

// ListParameters handles GET /api/v1/samples/{id}/parameters
func (h *SampleHandler) ListParameters(w http.ResponseWriter, r *http.Request) {
	project, ok := resolveProject(w, r, h.store)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	values, err := h.store.ListSampleParameterValues(r.Context(), project, id)
	if handleDBError(w, r, err, "Sample") {
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"data":  values,
		"total": len(values),
	})
}

// RecordParameters handles POST /api/v1/samples/{id}/parameters. The inserted
// value rows advance the project's change marker, so subscribed event streams
// see a parameter_values_changed notification within one poll interval.
func (h *SampleHandler) RecordParameters(w http.ResponseWriter, r *http.Request) {
	project, ok := resolveProject(w, r, h.store)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	input, ok := decodeJSON[recordParametersPayload](w, r)
	if !ok {
		return
	}
	if !validateInput(w, r, input) {
		return
	}

	recorded, err := h.store.RecordParameterValues(r.Context(), project, id, input.Parameters)
	if handleDBError(w, r, err, "Sample") {
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"sample_id": id,
		"recorded":  recorded,
	})
}
