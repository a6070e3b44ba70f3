// Package impute fills missing numeric feature values deterministically.
package impute

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/valora/internal/domain/model"
)

// Sentinel kinds for imputation errors.
var (
	ErrAllValuesMissing = errors.New("all values missing in column")
)

// feature column names in matrix order, for diagnostics.
var columnNames = [3]string{"recency", "frequency", "monetary"}

// Means computes the per-column mean over non-missing values for the
// three numeric feature columns. Infinite observations are clamped to
// the largest finite magnitude before entering the mean, so a column
// dominated by overflow still yields a usable fill value instead of
// distorting the feature space shape. A column with zero non-missing
// values fails with ErrAllValuesMissing.
func Means(rows []model.FeatureRow) ([3]float64, error) {
	// Running mean per column; summing first could overflow once
	// clamped extremes are involved.
	var means, counts [3]float64
	for _, r := range rows {
		for j, v := range r.Features() {
			if model.IsMissing(v) {
				continue
			}
			counts[j]++
			means[j] += (clamp(v) - means[j]) / counts[j]
		}
	}

	for j := range means {
		if counts[j] == 0 {
			return means, fmt.Errorf("%w: %s", ErrAllValuesMissing, columnNames[j])
		}
	}
	return means, nil
}

// Fill replaces every missing numeric cell with its column mean,
// computed over this batch. CustomerID is never imputed. Returns the
// number of cells filled.
func Fill(rows []model.FeatureRow) (int, error) {
	means, err := Means(rows)
	if err != nil {
		return 0, err
	}

	filled := 0
	for i := range rows {
		if model.IsMissing(rows[i].Recency) {
			rows[i].Recency = means[0]
			filled++
		}
		if model.IsMissing(rows[i].Frequency) {
			rows[i].Frequency = means[1]
			filled++
		}
		if model.IsMissing(rows[i].Monetary) {
			rows[i].Monetary = means[2]
			filled++
		}
	}
	return filled, nil
}

// clamp bounds infinities into the finite float range.
func clamp(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	default:
		return v
	}
}
