// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/valora/internal/domain/manual"
)

// ManualHandler handles closed-form estimate requests.
type ManualHandler struct {
	deps Dependencies
}

// NewManualHandler creates a new manual estimate handler.
func NewManualHandler(deps Dependencies) *ManualHandler {
	return &ManualHandler{deps: deps}
}

// HandlePostManual handles POST /manual-estimate requests.
func (h *ManualHandler) HandlePostManual(w http.ResponseWriter, r *http.Request) {
	const op = "api.manual_estimate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req manualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	out := h.deps.ManualEstimate(manual.Input{
		Purchases:     req.Purchases,
		Frequency:     req.Frequency,
		Tenure:        req.Tenure,
		AvgOrderValue: req.AvgOrderValue,
	})
	writeJSON(w, http.StatusOK, manualResponse{Value: out.Value, Churn: out.Churn})
}
