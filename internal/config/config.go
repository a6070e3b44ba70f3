// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatasetPath points at the reference dataset used for startup training.
	DatasetPath string `koanf:"dataset_path"`

	// ArtifactDir is the directory holding persisted model artifacts.
	ArtifactDir string `koanf:"artifact_dir"`

	// ArtifactKeepSets bounds how many historical artifact sets stay on
	// disk. Zero keeps everything.
	ArtifactKeepSets int `koanf:"artifact_keep_sets"`

	// TrainQueueSize bounds the on-demand training job queue.
	TrainQueueSize int `koanf:"train_queue_size"`

	// JobCacheSize sets the size of the training-job idempotency cache.
	JobCacheSize int `koanf:"job_cache_size"`

	// MaxUploadBytes caps the size of an uploaded dataset.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// ChurnThresholdDays is the recency cutoff for the derived churn label.
	// A customer is labeled churned when recency is strictly greater.
	ChurnThresholdDays float64 `koanf:"churn_threshold_days"`

	// ManualChurnThreshold flags churn on the manual estimate path when the
	// computed value falls below it.
	ManualChurnThreshold float64 `koanf:"manual_churn_threshold"`

	// LearningRate and Epochs control gradient-descent estimator fitting.
	LearningRate float64 `koanf:"learning_rate"`
	Epochs       int     `koanf:"epochs"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:             "info",
		Addr:                 ":9090",
		DatasetPath:          "data.csv",
		ArtifactDir:          "models",
		ArtifactKeepSets:     3,
		TrainQueueSize:       16,
		JobCacheSize:         10_000,
		MaxUploadBytes:       32 << 20,
		ChurnThresholdDays:   90,
		ManualChurnThreshold: 500,
		LearningRate:         0.05,
		Epochs:               500,
	}
	return c
}
