// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/commodity-forecast/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent a displayed percentage.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// Mean returns the arithmetic mean of values, or NaN for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// AbsolutePercentError returns |actual-predicted|/actual. A zero actual yields
// +Inf, or NaN when predicted is also zero.
func AbsolutePercentError(actual, predicted float64) float64 {
	return math.Abs(actual-predicted) / actual
}

// PercentDifference returns 100*(predicted-actual)/actual and false when actual is zero.
func PercentDifference(actual, predicted float64) (float64, bool) {
	if actual == 0 {
		return 0, false
	}
	return (predicted - actual) / actual * constants.PercentageMultiplier, true
}

// Float returns a pointer to a copy of v.
func Float(v float64) *float64 {
	return &v
}
