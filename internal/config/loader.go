package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if VALORA_CONFIG is set
//  3. env (prefix VALORA_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("VALORA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: VALORA_ADDR, VALORA_DATASET_PATH, ...
	// Map env keys like VALORA_DATASET_PATH -> dataset_path (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("VALORA_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "valora_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.ArtifactDir == "":
		return nil, fmt.Errorf("%w: artifact_dir must not be empty", ErrInvalidConfig)
	case cfg.ArtifactKeepSets < 0:
		return nil, fmt.Errorf("%w: artifact_keep_sets must not be negative", ErrInvalidConfig)
	case cfg.TrainQueueSize < 1:
		return nil, fmt.Errorf("%w: train_queue_size must be positive", ErrInvalidConfig)
	case cfg.MaxUploadBytes < 1:
		return nil, fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	case cfg.ChurnThresholdDays < 0:
		return nil, fmt.Errorf("%w: churn_threshold_days must not be negative", ErrInvalidConfig)
	case cfg.LearningRate <= 0:
		return nil, fmt.Errorf("%w: learning_rate must be positive", ErrInvalidConfig)
	case cfg.Epochs < 1:
		return nil, fmt.Errorf("%w: epochs must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
