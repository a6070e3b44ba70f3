// Package estimator implements the gradient-descent regressors trained
// on standardized customer features. Both estimators start from zero
// weights and run a fixed number of epochs at a fixed learning rate, so
// training over the same batch is deterministic.
package estimator

import "errors"

// Sentinel kinds for estimator errors.
var (
	ErrEmptyTraining = errors.New("cannot fit estimator on empty training set")
	ErrShapeMismatch = errors.New("feature and target lengths differ")
	ErrNotTrained    = errors.New("estimator has not been trained")
	ErrDimension     = errors.New("feature width does not match trained weights")
)

// Estimator is a trainable predictor over dense feature matrices.
type Estimator interface {
	Fit(x [][]float64, y []float64) error
	Predict(x [][]float64) ([]float64, error)
}

func checkTraining(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x[0]) == 0 {
		return ErrEmptyTraining
	}
	if len(x) != len(y) {
		return ErrShapeMismatch
	}
	return nil
}
