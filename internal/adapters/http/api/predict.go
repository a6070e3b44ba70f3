// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	repository "github.com/okian/valora/internal/adapters/repository"
	"github.com/okian/valora/internal/domain/impute"
	"github.com/okian/valora/internal/domain/schema"
	"github.com/okian/valora/internal/domain/types"
)

// PredictHandler handles batch prediction requests for both model kinds.
type PredictHandler struct {
	deps           Dependencies
	maxUploadBytes int64
}

// NewPredictHandler creates a new prediction handler.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps, maxUploadBytes: defaultMaxUploadBytes}
}

// HandleValue handles POST /predict-value requests.
func (h *PredictHandler) HandleValue(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, types.ModelValue, "api.predict_value")
}

// HandleChurn handles POST /predict-churn requests.
func (h *PredictHandler) HandleChurn(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, types.ModelChurn, "api.predict_churn")
}

func (h *PredictHandler) handle(w http.ResponseWriter, r *http.Request, kind types.ModelKind, op string) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	table, err := readUpload(r, h.maxUploadBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if table == nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, errors.New("missing file upload")))
		return
	}

	preds, err := h.deps.Predict(r.Context(), kind, table)
	if err != nil {
		h.writePredictError(w, op, err)
		return
	}
	if preds == nil {
		preds = []float64{}
	}
	writeJSON(w, http.StatusOK, predictionsResponse{Predictions: preds})
}

// writePredictError maps pipeline failures onto stable error codes.
func (h *PredictHandler) writePredictError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusConflict, "artifact_not_found", NewKind(op, err))
	case errors.Is(err, schema.ErrUnrecognizedSchema):
		writeError(w, http.StatusBadRequest, "unrecognized_schema", NewKind(op, err))
	case errors.Is(err, impute.ErrAllValuesMissing):
		writeError(w, http.StatusBadRequest, "all_values_missing", NewKind(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal", NewKind(op, err))
	}
}
