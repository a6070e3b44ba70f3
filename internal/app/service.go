// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	jobqueue "github.com/okian/valora/internal/adapters/mq/queue"
	workerpool "github.com/okian/valora/internal/adapters/mq/worker"
	repository "github.com/okian/valora/internal/adapters/repository"
	"github.com/okian/valora/internal/domain/dataset"
	"github.com/okian/valora/internal/domain/dedupe"
	"github.com/okian/valora/internal/domain/estimator"
	"github.com/okian/valora/internal/domain/feature"
	"github.com/okian/valora/internal/domain/impute"
	"github.com/okian/valora/internal/domain/manual"
	"github.com/okian/valora/internal/domain/model"
	"github.com/okian/valora/internal/domain/scale"
	"github.com/okian/valora/internal/domain/schema"
	"github.com/okian/valora/internal/domain/types"
	"github.com/okian/valora/pkg/logger"
	"github.com/okian/valora/pkg/metrics"
)

// Sentinel kinds for training errors.
var (
	ErrTrainingDataExhausted = errors.New("no usable rows remain after normalization")
	ErrNotStarted            = errors.New("service has not been started")
)

// Service implements the API dependencies for the prediction system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	jobQueue   jobqueue.Queue
	workerPool *workerpool.Pool

	// Configuration
	workerCount          int
	queueSize            int
	jobCacheSize         int
	churnThresholdDays   float64
	manualChurnThreshold float64
	learningRate         float64
	epochs               int
	datasetPath          string
	artifactDir          string
	artifactKeepSets     int

	// State
	started    bool
	stopCh     chan struct{}
	lastReport *types.TrainReport

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of training worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending training jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithJobCacheSize sets the size of the training-job idempotency cache.
func WithJobCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.jobCacheSize = size
		}
	}
}

// WithChurnThresholdDays sets the recency cutoff for churn labels.
func WithChurnThresholdDays(days float64) Option {
	return func(s *Service) {
		if days >= 0 {
			s.churnThresholdDays = days
		}
	}
}

// WithManualChurnThreshold sets the value cutoff for manual estimates.
func WithManualChurnThreshold(threshold float64) Option {
	return func(s *Service) {
		s.manualChurnThreshold = threshold
	}
}

// WithLearningRate sets the gradient descent learning rate.
func WithLearningRate(rate float64) Option {
	return func(s *Service) {
		if rate > 0 {
			s.learningRate = rate
		}
	}
}

// WithEpochs sets the number of gradient descent epochs.
func WithEpochs(epochs int) Option {
	return func(s *Service) {
		if epochs > 0 {
			s.epochs = epochs
		}
	}
}

// WithDatasetPath sets the default dataset for startup training.
func WithDatasetPath(path string) Option {
	return func(s *Service) {
		s.datasetPath = path
	}
}

// WithArtifactDir sets the artifact store root directory.
func WithArtifactDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.artifactDir = dir
		}
	}
}

// WithArtifactKeepSets bounds how many historical artifact sets the
// filesystem store retains. Zero keeps everything.
func WithArtifactKeepSets(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.artifactKeepSets = n
		}
	}
}

// WithStore sets a custom artifact store, replacing the default
// filesystem store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:          1,
		queueSize:            16,
		jobCacheSize:         10000,
		churnThresholdDays:   90,
		manualChurnThreshold: 500,
		learningRate:         0.05,
		epochs:               500,
		datasetPath:          "data.csv",
		artifactDir:          "models",
		artifactKeepSets:     3,
		stopCh:               make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting prediction service...")

	if s.store == nil {
		store, err := repository.NewFSStore(s.artifactDir,
			repository.WithKeepSets(s.artifactKeepSets),
		)
		if err != nil {
			return fmt.Errorf("open artifact store: %w", err)
		}
		s.store = store
		s.logger.Info(ctx, "using filesystem artifact store",
			logger.String("dir", s.artifactDir),
			logger.Int("keepSets", s.artifactKeepSets),
		)
	}

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.jobCacheSize),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, s)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "prediction service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("jobCacheSize", s.jobCacheSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping prediction service...")

	if q, ok := s.jobQueue.(*jobqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "prediction service stopped")
}

// SeenAndRecord atomically checks if a training job id was seen and
// records it if not. Returns true if the job was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordTrainingJobDuplicate()
	}
	return seen
}

// Unrecord removes a training job ID from the seen list, allowing it to
// be resubmitted.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// SubmitTraining enqueues a training job for asynchronous execution.
// Returns false when the queue is full.
func (s *Service) SubmitTraining(ctx context.Context, job model.TrainingJob) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return false
	}
	return s.jobQueue.Enqueue(ctx, job)
}

// RunJob executes a queued training job. It implements worker.Trainer.
func (s *Service) RunJob(ctx context.Context, job model.TrainingJob) error {
	table := job.Table
	if table == nil {
		t, err := s.readDataset(job.Path)
		if err != nil {
			return err
		}
		table = t
	}

	_, err := s.Train(ctx, table)
	return err
}

func (s *Service) readDataset(path string) (*model.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return dataset.Read(f)
}

// Train runs the full pipeline over a raw table and atomically
// publishes the resulting artifact set.
func (s *Service) Train(ctx context.Context, table *model.RawTable) (types.TrainReport, error) {
	start := time.Now()

	report, err := s.train(ctx, table)
	if err != nil {
		metrics.RecordTrainingRun("failure")
		metrics.RecordErrorByComponent("trainer", "training_failed")
		return types.TrainReport{}, err
	}

	report.DurationMS = time.Since(start).Milliseconds()
	report.CompletedAt = time.Now().UTC()
	metrics.RecordTrainingRun("success")
	metrics.RecordTrainingDuration(float64(report.DurationMS))

	s.mu.Lock()
	s.lastReport = &report
	s.mu.Unlock()

	s.logger.Info(ctx, "training run completed",
		logger.String("version", report.Version),
		logger.String("variant", report.Variant),
		logger.Int("rows", report.Rows),
		logger.Int("cellsFilled", report.CellsFilled),
		logger.Int("rowsDropped", report.RowsDropped),
	)
	return report, nil
}

func (s *Service) train(ctx context.Context, table *model.RawTable) (types.TrainReport, error) {
	variant, err := schema.Detect(table.Columns)
	if err != nil {
		metrics.RecordSchemaFailure()
		return types.TrainReport{}, err
	}
	metrics.RecordSchemaDetection(string(variant))

	res := feature.Normalize(table, variant)
	metrics.RecordRowsNormalized(len(res.Rows))
	metrics.RecordRowsDeduplicated(res.Duplicates)
	if len(res.Rows) == 0 {
		return types.TrainReport{}, ErrTrainingDataExhausted
	}

	filled, err := impute.Fill(res.Rows)
	if err != nil {
		return types.TrainReport{}, err
	}
	metrics.RecordCellsImputed(filled)

	rows, dropped := dropNonFinite(ctx, s.logger, res.Rows)
	if len(rows) == 0 {
		return types.TrainReport{}, ErrTrainingDataExhausted
	}

	set, err := s.fit(rows)
	if err != nil {
		return types.TrainReport{}, err
	}

	if err := s.store.Save(ctx, set); err != nil {
		return types.TrainReport{}, fmt.Errorf("persist artifact set: %w", err)
	}

	return types.TrainReport{
		Version:     set.Version,
		Variant:     string(variant),
		Rows:        len(rows),
		CellsFilled: filled,
		RowsDropped: dropped,
	}, nil
}

// fit trains the scaler and both estimators from imputed feature rows.
func (s *Service) fit(rows []model.FeatureRow) (*repository.ArtifactSet, error) {
	x := model.Matrix(rows)

	scaler := scale.New()
	scaled, err := scaler.FitTransform(x)
	if err != nil {
		return nil, fmt.Errorf("fit scaler: %w", err)
	}

	valueTarget := make([]float64, len(rows))
	churnTarget := make([]float64, len(rows))
	for i, r := range rows {
		valueTarget[i] = r.Monetary
		if r.Recency > s.churnThresholdDays {
			churnTarget[i] = 1
		}
	}

	value := estimator.NewLinear(s.learningRate, s.epochs)
	if err := value.Fit(scaled, valueTarget); err != nil {
		return nil, fmt.Errorf("fit value estimator: %w", err)
	}

	churn := estimator.NewLogistic(s.learningRate, s.epochs)
	if err := churn.Fit(scaled, churnTarget); err != nil {
		return nil, fmt.Errorf("fit churn estimator: %w", err)
	}

	return &repository.ArtifactSet{
		Version:   uuid.NewString(),
		TrainedAt: time.Now().UTC(),
		Scaler:    scaler,
		Value:     value,
		Churn:     churn,
	}, nil
}

// TrainFromPath trains from a CSV file on disk. A missing file is not
// an error so a fresh deployment can start without a dataset.
func (s *Service) TrainFromPath(ctx context.Context, path string) (types.TrainReport, bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.logger.Warn(ctx, "dataset not found, skipping training",
			logger.String("path", path),
		)
		return types.TrainReport{}, false, nil
	}

	table, err := s.readDataset(path)
	if err != nil {
		return types.TrainReport{}, false, err
	}

	report, err := s.Train(ctx, table)
	if err != nil {
		return types.TrainReport{}, false, err
	}
	return report, true, nil
}

// DatasetPath returns the configured default dataset location.
func (s *Service) DatasetPath() string {
	return s.datasetPath
}

// Predict runs the batch prediction pipeline for the given model kind.
// Returns repository.ErrNotFound when no artifact set has been trained.
func (s *Service) Predict(ctx context.Context, kind types.ModelKind, table *model.RawTable) ([]float64, error) {
	start := time.Now()

	preds, err := s.predict(ctx, kind, table)
	if err != nil {
		metrics.RecordPredictionError(string(kind))
		return nil, err
	}

	metrics.RecordPrediction(string(kind))
	metrics.RecordPredictionLatency(float64(time.Since(start).Milliseconds()))
	return preds, nil
}

func (s *Service) predict(ctx context.Context, kind types.ModelKind, table *model.RawTable) ([]float64, error) {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return nil, ErrNotStarted
	}

	set, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	variant, err := schema.Detect(table.Columns)
	if err != nil {
		metrics.RecordSchemaFailure()
		return nil, err
	}
	metrics.RecordSchemaDetection(string(variant))

	res := feature.Normalize(table, variant)
	if len(res.Rows) == 0 {
		return []float64{}, nil
	}

	// Imputation is per batch, using this batch's column means.
	filled, err := impute.Fill(res.Rows)
	if err != nil {
		return nil, err
	}
	metrics.RecordCellsImputed(filled)

	scaled, err := set.Scaler.Transform(model.Matrix(res.Rows))
	if err != nil {
		return nil, fmt.Errorf("scale prediction batch: %w", err)
	}

	switch kind {
	case types.ModelValue:
		return set.Value.Predict(scaled)
	case types.ModelChurn:
		return set.Churn.Predict(scaled)
	default:
		return nil, fmt.Errorf("unknown model kind %q", kind)
	}
}

// ManualEstimate computes the closed-form value estimate and churn flag.
func (s *Service) ManualEstimate(in manual.Input) manual.Result {
	metrics.RecordManualEstimate()
	return manual.Compute(in, s.manualChurnThreshold)
}

// HasArtifacts reports whether a trained artifact set is available.
func (s *Service) HasArtifacts(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return false
	}
	return s.store.Exists(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"jobCacheSize": s.jobCacheSize,
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["pendingJobIDs"] = s.deduper.Size()
		stats["trained"] = s.store.Exists(ctx)

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	if s.lastReport != nil {
		stats["artifactVersion"] = s.lastReport.Version
		stats["lastTraining"] = *s.lastReport
	}

	return stats
}

// Size returns the current number of entries in the job cache.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// dropNonFinite removes rows that still carry non-finite features after
// imputation. These should not occur; each drop is logged.
func dropNonFinite(ctx context.Context, log logger.Logger, rows []model.FeatureRow) (kept []model.FeatureRow, dropped int) {
	kept = rows[:0]
	for _, r := range rows {
		finite := true
		for _, v := range r.Features() {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				finite = false
				break
			}
		}
		if !finite {
			dropped++
			metrics.RecordRowDropped()
			if log != nil {
				log.Warn(ctx, "row dropped due to residual non-finite value",
					logger.Float64("customerID", r.CustomerID),
				)
			}
			continue
		}
		kept = append(kept, r)
	}
	return kept, dropped
}
