package estimator

import "math"

// Logistic is a binary classifier trained with full-batch gradient
// descent on the log loss. Predict thresholds the probability at 0.5.
type Logistic struct {
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
	LearningRate float64   `json:"learning_rate"`
	Epochs       int       `json:"epochs"`
}

// NewLogistic creates an untrained logistic classifier.
func NewLogistic(learningRate float64, epochs int) *Logistic {
	return &Logistic{LearningRate: learningRate, Epochs: epochs}
}

// Trained reports whether the classifier carries fitted weights.
func (l *Logistic) Trained() bool {
	return len(l.Weights) > 0
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Fit runs full-batch gradient descent, starting from zero weights.
// Targets must be 0 or 1.
func (l *Logistic) Fit(x [][]float64, y []float64) error {
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
			z := l.Bias
			for j := 0; j < cols; j++ {
				z += l.Weights[j] * x[i][j]
			}
			diff := sigmoid(z) - y[i]
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

// PredictProba returns the positive-class probability for each row.
func (l *Logistic) PredictProba(x [][]float64) ([]float64, error) {
	if !l.Trained() {
		return nil, ErrNotTrained
	}
	out := make([]float64, len(x))
	for i, row := range x {
		if len(row) != len(l.Weights) {
			return nil, ErrDimension
		}
		z := l.Bias
		for j, v := range row {
			z += l.Weights[j] * v
		}
		out[i] = sigmoid(z)
	}
	return out, nil
}

// Predict thresholds the positive-class probability at 0.5 into {0, 1}.
func (l *Logistic) Predict(x [][]float64) ([]float64, error) {
	probs, err := l.PredictProba(x)
	if err != nil {
		return nil, err
	}
	for i, p := range probs {
		if p >= 0.5 {
			probs[i] = 1
		} else {
			probs[i] = 0
		}
	}
	return probs, nil
}
