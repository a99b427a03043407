// Package accuracy computes forecast accuracy metrics per price series.
package accuracy

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/commodity-forecast/pkg/constants"
	"github.com/iwvelando/commodity-forecast/pkg/mathutil"
)

// ErrUndefinedMetric marks a series without a single valid comparison pair.
// Its metric has no value, which is distinct from a MAPE of zero.
var ErrUndefinedMetric = errors.New("metric undefined: no valid actual/predicted pairs")

// ZeroActualPolicy decides what happens to pairs whose actual price is zero.
type ZeroActualPolicy int

const (
	// ExcludeZeroActual drops zero-actual pairs before averaging.
	ExcludeZeroActual ZeroActualPolicy = iota
	// IncludeZeroActual keeps them; the mean then becomes +Inf or NaN and is
	// returned as such.
	IncludeZeroActual
)

// ParsePolicy maps a configured policy name; the empty string selects
// ExcludeZeroActual.
func ParsePolicy(name string) (ZeroActualPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", constants.ZeroActualExclude:
		return ExcludeZeroActual, nil
	case constants.ZeroActualInclude:
		return IncludeZeroActual, nil
	}
	return ExcludeZeroActual, fmt.Errorf("unknown zero-actual policy %q, expected %s or %s",
		name, constants.ZeroActualExclude, constants.ZeroActualInclude)
}

func (p ZeroActualPolicy) String() string {
	if p == IncludeZeroActual {
		return constants.ZeroActualInclude
	}
	return constants.ZeroActualExclude
}

// Pair is one actual/predicted comparison; either side may be missing.
type Pair struct {
	Actual    *float64
	Predicted *float64
}

// valid reports whether the pair takes part in the mean under policy.
func (p Pair) valid(policy ZeroActualPolicy) bool {
	if p.Actual == nil || p.Predicted == nil {
		return false
	}
	if *p.Actual == 0 && policy == ExcludeZeroActual {
		return false
	}
	return true
}

// ComputeMAPE returns 100 * mean(|a-p|/a) over the valid pairs and true, or
// NaN and false when there are none. Pair order does not matter.
func ComputeMAPE(pairs []Pair, policy ZeroActualPolicy) (float64, bool) {
	errs := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		if !p.valid(policy) {
			continue
		}
		errs = append(errs, mathutil.AbsolutePercentError(*p.Actual, *p.Predicted))
	}
	if len(errs) == 0 {
		return math.NaN(), false
	}
	return constants.PercentageMultiplier * mathutil.Mean(errs), true
}

// CountValid returns how many pairs ComputeMAPE would average.
func CountValid(pairs []Pair, policy ZeroActualPolicy) int {
	n := 0
	for _, p := range pairs {
		if p.valid(policy) {
			n++
		}
	}
	return n
}
