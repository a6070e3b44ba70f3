// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/valora/internal/domain/model"
)

// TrainHandler handles retraining requests.
type TrainHandler struct {
	deps           Dependencies
	maxUploadBytes int64
}

// NewTrainHandler creates a new training handler.
func NewTrainHandler(deps Dependencies) *TrainHandler {
	return &TrainHandler{deps: deps, maxUploadBytes: defaultMaxUploadBytes}
}

// HandlePostTrain handles POST /train requests. A request may carry a
// multipart CSV and an optional job_id form value for idempotency;
// without a file the configured reference dataset is retrained.
func (h *TrainHandler) HandlePostTrain(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_train"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	table, err := readUpload(r, h.maxUploadBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	jobID := strings.TrimSpace(r.FormValue("job_id"))
	if jobID == "" {
		jobID = uuid.NewString()
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), jobID) {
		writeJSON(w, http.StatusOK, trainAckResponse{Status: "duplicate", JobID: jobID, Duplicate: true})
		return
	}

	job := model.TrainingJob{ID: jobID, Table: table}
	if table == nil {
		job.Path = h.deps.DatasetPath()
	}

	if ok := h.deps.SubmitTraining(r.Context(), job); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), jobID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, trainAckResponse{Status: "accepted", JobID: jobID, Duplicate: false})
}
