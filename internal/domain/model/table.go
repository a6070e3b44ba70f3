// Package model contains domain models passed between layers.
package model

import "math"

// RawTable is an untyped tabular input as read from a CSV-like source.
// Column names are lower-cased and whitespace-trimmed at read time; the
// schema is unknown until classified.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// Index returns the position of a column by its normalized name, or -1.
func (t *RawTable) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, col index), or "" when the row is ragged.
func (t *RawTable) Cell(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// FeatureRow is one canonical RFM observation. Missing numeric values
// are carried as NaN until the imputer fills them; CustomerID may stay
// NaN since it is never imputed.
type FeatureRow struct {
	CustomerID float64
	Recency    float64
	Frequency  float64
	Monetary   float64
}

// Features returns the numeric feature vector in the fixed column order
// (recency, frequency, monetary) shared by the scaler and estimators.
func (r FeatureRow) Features() []float64 {
	return []float64{r.Recency, r.Frequency, r.Monetary}
}

// Matrix reduces feature rows to the numeric feature matrix, preserving
// row order.
func Matrix(rows []FeatureRow) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Features()
	}
	return out
}

// TrainingJob describes one queued retraining request. Exactly one of
// Table or Path is set: an uploaded table, or a dataset location to be
// read when the job runs.
type TrainingJob struct {
	ID    string
	Table *RawTable
	Path  string
}

// IsMissing reports whether a numeric cell value is absent.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}
