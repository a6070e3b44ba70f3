// Package manual computes the closed-form lifetime value estimate used
// when no trained artifacts are required.
package manual

// Input carries the customer profile for a closed-form estimate.
type Input struct {
	Purchases     float64
	Frequency     float64
	Tenure        float64
	AvgOrderValue float64
}

// Result is the value estimate plus its derived churn flag.
type Result struct {
	Value float64
	Churn int
}

// Compute multiplies the profile terms into a lifetime value and flags
// churn when the value falls below the threshold.
func Compute(in Input, churnThreshold float64) Result {
	value := in.Purchases * in.Frequency * in.AvgOrderValue * in.Tenure
	churn := 0
	if value < churnThreshold {
		churn = 1
	}
	return Result{Value: value, Churn: churn}
}
