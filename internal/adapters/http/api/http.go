// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/okian/valora/internal/domain/dataset"
	"github.com/okian/valora/internal/domain/dedupe"
	"github.com/okian/valora/internal/domain/manual"
	"github.com/okian/valora/internal/domain/model"
	"github.com/okian/valora/internal/domain/types"
)

// Default upload limit for CSV files.
const defaultMaxUploadBytes = 32 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// SubmitTraining pushes a training job for async processing.
	// Returns false on backpressure.
	SubmitTraining(ctx context.Context, job model.TrainingJob) bool

	// Predict runs the batch prediction pipeline for a model kind.
	Predict(ctx context.Context, kind types.ModelKind, table *model.RawTable) ([]float64, error)

	// ManualEstimate computes the closed-form value estimate.
	ManualEstimate(in manual.Input) manual.Result

	// DatasetPath returns the default dataset used when a training
	// request carries no file.
	DatasetPath() string
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	trainHandler   *TrainHandler
	predictHandler *PredictHandler
	manualHandler  *ManualHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithMaxUploadBytes bounds the size of accepted CSV uploads.
func WithMaxUploadBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.predictHandler.maxUploadBytes = n
			s.trainHandler.maxUploadBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		trainHandler:   NewTrainHandler(deps),
		predictHandler: NewPredictHandler(deps),
		manualHandler:  NewManualHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/train", MetricsMiddleware(s.trainHandler.HandlePostTrain, "train"))
	mux.HandleFunc("/predict-value", MetricsMiddleware(s.predictHandler.HandleValue, "predict_value"))
	mux.HandleFunc("/predict-churn", MetricsMiddleware(s.predictHandler.HandleChurn, "predict_churn"))
	mux.HandleFunc("/manual-estimate", MetricsMiddleware(s.manualHandler.HandlePostManual, "manual_estimate"))
}

var validate = validator.New()

// manualRequest mirrors the OpenAPI schema for POST /manual-estimate.
type manualRequest struct {
	Purchases     float64 `json:"purchases"       validate:"gte=0"`
	Frequency     float64 `json:"frequency"       validate:"gte=0"`
	Tenure        float64 `json:"tenure"          validate:"gte=0"`
	AvgOrderValue float64 `json:"avg_order_value" validate:"gte=0"`
}

type manualResponse struct {
	Value float64 `json:"value"`
	Churn int     `json:"churn"`
}

type predictionsResponse struct {
	Predictions []float64 `json:"predictions"`
}

type trainAckResponse struct {
	Status    string `json:"status"`
	JobID     string `json:"job_id"`
	Duplicate bool   `json:"duplicate"`
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

// readUpload parses the multipart "file" field into a raw table,
// enforcing the configured upload limit. Returns (nil, nil) when the
// request carries no file at all.
func readUpload(r *http.Request, maxBytes int64) (*model.RawTable, error) {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse upload: %w", err)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("read upload: %w", err)
	}
	defer file.Close()

	table, err := dataset.Read(io.Reader(file))
	if err != nil {
		return nil, err
	}
	return table, nil
}
