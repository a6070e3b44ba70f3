package estimator

// Linear is a least-squares regressor trained with full-batch gradient
// descent. Weights and bias are exported for artifact persistence.
type Linear struct {
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
	LearningRate float64   `json:"learning_rate"`
	Epochs       int       `json:"epochs"`
}

// NewLinear creates an untrained linear regressor.
func NewLinear(learningRate float64, epochs int) *Linear {
	return &Linear{LearningRate: learningRate, Epochs: epochs}
}

// Trained reports whether the regressor carries fitted weights.
func (l *Linear) Trained() bool {
	return len(l.Weights) > 0
}

// Fit runs full-batch gradient descent on the mean squared error,
// starting from zero weights.
func (l *Linear) Fit(x [][]float64, y []float64) error {
	if err := checkTraining(x, y); err != nil {
		return err
	}
	rows, cols := len(x), len(x[0])
	l.Weights = make([]float64, cols)
	l.Bias = 0

	grad := make([]float64, cols)
	for epoch := 0; epoch < l.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		biasGrad := 0.0

		for i := 0; i < rows; i++ {
			pred := l.Bias
			for j := 0; j < cols; j++ {
				pred += l.Weights[j] * x[i][j]
			}
			diff := pred - y[i]
			for j := 0; j < cols; j++ {
				grad[j] += diff * x[i][j]
			}
			biasGrad += diff
		}

		scale := l.LearningRate / float64(rows)
		for j := 0; j < cols; j++ {
			l.Weights[j] -= scale * grad[j]
		}
		l.Bias -= scale * biasGrad
	}
	return nil
}

// Predict returns the fitted linear response for each row.
func (l *Linear) Predict(x [][]float64) ([]float64, error) {
	if !l.Trained() {
		return nil, ErrNotTrained
	}
	out := make([]float64, len(x))
	for i, row := range x {
		if len(row) != len(l.Weights) {
			return nil, ErrDimension
		}
		pred := l.Bias
		for j, v := range row {
			pred += l.Weights[j] * v
		}
		out[i] = pred
	}
	return out, nil
}
