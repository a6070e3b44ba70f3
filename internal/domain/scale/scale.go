// Package scale provides the standardization transform persisted as a
// training artifact and replayed at inference time.
package scale

import (
	"errors"
	"math"
)

// Sentinel kinds for scaler errors.
var (
	ErrEmptyFit  = errors.New("cannot fit scaler on empty matrix")
	ErrNotFitted = errors.New("scaler has not been fitted")
	ErrDimension = errors.New("matrix width does not match scaler dimensions")
)

// StandardScaler standardizes each column to zero mean and unit
// variance. Once fitted it is immutable; Transform never re-fits, so
// the training-time transform is replayed bit-for-bit at inference.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// New creates an unfitted scaler.
func New() *StandardScaler {
	return &StandardScaler{}
}

// Fitted reports whether the scaler carries fitted parameters.
func (s *StandardScaler) Fitted() bool {
	return len(s.Mean) > 0 && len(s.Mean) == len(s.Std)
}

// Fit computes per-column mean and standard deviation. A zero standard
// deviation is replaced by 1 so constant columns map to zero instead of
// dividing by zero.
func (s *StandardScaler) Fit(x [][]float64) error {
	if len(x) == 0 || len(x[0]) == 0 {
		return ErrEmptyFit
	}
	rows, cols := len(x), len(x[0])
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)

	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			s.Mean[j] += x[i][j]
		}
		s.Mean[j] /= float64(rows)

		v := 0.0
		for i := 0; i < rows; i++ {
			d := x[i][j] - s.Mean[j]
			v += d * d
		}
		v /= float64(rows)
		s.Std[j] = math.Sqrt(v)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	return nil
}

// Transform applies the fitted standardization to a matrix, returning a
// new matrix and leaving the input untouched.
func (s *StandardScaler) Transform(x [][]float64) ([][]float64, error) {
	if !s.Fitted() {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(x))
	for i, row := range x {
		if len(row) != len(s.Mean) {
			return nil, ErrDimension
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Mean[j]) / s.Std[j]
		}
		out[i] = scaled
	}
	return out, nil
}

// FitTransform fits the scaler and transforms the same matrix.
func (s *StandardScaler) FitTransform(x [][]float64) ([][]float64, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}
