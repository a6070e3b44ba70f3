// Package types contains common types used across the application
package types

import "time"

// ModelKind selects which trained estimator a prediction call targets.
type ModelKind string

const (
	// ModelValue is the continuous customer-value estimator.
	ModelValue ModelKind = "value"
	// ModelChurn is the binary churn classifier.
	ModelChurn ModelKind = "churn"
)

// Valid reports whether k names a known model kind.
func (k ModelKind) Valid() bool {
	return k == ModelValue || k == ModelChurn
}

// TrainReport summarizes a completed training run.
type TrainReport struct {
	Version     string    `json:"version"`
	Variant     string    `json:"variant"`
	Rows        int       `json:"rows"`
	CellsFilled int       `json:"cells_filled"`
	RowsDropped int       `json:"rows_dropped"`
	DurationMS  int64     `json:"duration_ms"`
	CompletedAt time.Time `json:"completed_at"`
}
