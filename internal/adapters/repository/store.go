// Package repository defines the model artifact store interface and errors.
package repository

import (
	"context"
	"time"

	estimator "github.com/okian/valora/internal/domain/estimator"
	scale "github.com/okian/valora/internal/domain/scale"
)

// ArtifactSet bundles everything a prediction needs: the scaler fitted
// at training time plus both trained estimators. A set is immutable
// once saved; retraining produces a new versioned set.
type ArtifactSet struct {
	Version   string                `json:"version"`
	TrainedAt time.Time             `json:"trained_at"`
	Scaler    *scale.StandardScaler `json:"scaler"`
	Value     *estimator.Linear     `json:"value"`
	Churn     *estimator.Logistic   `json:"churn"`
}

// Store persists artifact sets and recalls the most recent one.
type Store interface {
	// Save persists a complete artifact set under its version and marks
	// it as the latest. The swap is atomic: a concurrent Load sees
	// either the previous set or the new one, never a partial write.
	Save(ctx context.Context, set *ArtifactSet) error

	// Load returns the latest artifact set.
	// Returns ErrNotFound when nothing has been trained yet.
	Load(ctx context.Context) (*ArtifactSet, error)

	// Exists reports whether a trained artifact set is available.
	Exists(ctx context.Context) bool
}
