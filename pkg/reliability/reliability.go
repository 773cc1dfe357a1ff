// Package reliability evaluates closed-form reliability figures for
// components and simple system structures. Every function assumes
// independent failures and a constant failure rate where time is involved.
package reliability

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

var (
	// ErrInvalidParameter is returned for inputs outside a formula's domain.
	ErrInvalidParameter = errors.New("reliability: invalid parameter")

	// ErrNotImplemented is returned for k-of-n systems whose components do
	// not all share one reliability.
	ErrNotImplemented = errors.New("reliability: not implemented")
)

// Exponential returns R(t) = exp(−λt) for failure rate λ ≥ 0 over mission
// time t ≥ 0.
func Exponential(failureRate, missionTime float64) (float64, error) {
	if !finite(failureRate) || failureRate < 0 {
		return 0, fmt.Errorf("%w: failure rate must be non-negative, got %v", ErrInvalidParameter, failureRate)
	}
	if !finite(missionTime) || missionTime < 0 {
		return 0, fmt.Errorf("%w: mission time must be non-negative, got %v", ErrInvalidParameter, missionTime)
	}
	return math.Exp(-failureRate * missionTime), nil
}

// MTBFConvert converts an MTBF into a failure rate or the reverse. The two
// are reciprocals, so one function serves both directions.
func MTBFConvert(value float64) (float64, error) {
	if !finite(value) || value <= 0 {
		return 0, fmt.Errorf("%w: value must be positive, got %v", ErrInvalidParameter, value)
	}
	v := 1 / value
	if !finite(v) {
		return 0, fmt.Errorf("%w: reciprocal of %v overflows float64", ErrInvalidParameter, value)
	}
	return v, nil
}

// Series returns the reliability of components in series: the product of
// the component reliabilities.
func Series(rs []float64) (float64, error) {
	if err := validateList(rs); err != nil {
		return 0, err
	}
	sys := 1.0
	for _, r := range rs {
		sys *= r
	}
	return sys, nil
}

// KofN returns the probability that at least k of the n = len(rs) parallel
// components survive. Only identical components are supported:
//
//	R = Σ_{i=k..n} C(n, i) · r^i · (1 − r)^(n−i)
//
// The result is finite for any n.
// Mixed reliabilities return ErrNotImplemented.
func KofN(rs []float64, k int) (float64, error) {
	if err := validateList(rs); err != nil {
		return 0, err
	}
	n := len(rs)
	if k < 1 || k > n {
		return 0, fmt.Errorf("%w: min_required must be between 1 and %d, got %d", ErrInvalidParameter, n, k)
	}
	r := rs[0]
	for _, v := range rs[1:] {
		if v != r {
			return 0, fmt.Errorf("%w: k-of-n with dissimilar component reliabilities", ErrNotImplemented)
		}
	}

	if r == 1 {
		return 1, nil
	}

	// Terms are summed in log space so C(n, i) cannot overflow for large n.
	lr, lq := math.Log(r), math.Log1p(-r)
	var sys float64
	for i := k; i <= n; i++ {
		fi := float64(i)
		sys += math.Exp(combin.LogGeneralizedBinomial(float64(n), fi) + fi*lr + float64(n-i)*lq)
	}
	if !finite(sys) {
		return 0, fmt.Errorf("%w: k-of-n sum is not finite for n=%d, k=%d", ErrInvalidParameter, n, k)
	}
	return math.Min(sys, 1), nil
}

// validateList requires a non-empty list with every r in (0, 1].
func validateList(rs []float64) error {
	if len(rs) == 0 {
		return fmt.Errorf("%w: component reliabilities list cannot be empty", ErrInvalidParameter)
	}
	for i, r := range rs {
		if math.IsNaN(r) || r <= 0 || r > 1 {
			return fmt.Errorf("%w: component %d reliability must be in (0, 1], got %v", ErrInvalidParameter, i, r)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
