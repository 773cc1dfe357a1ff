package rvi

import (
	"fmt"
	"math"
)

const (
	// StochasticTolerance is the allowed absolute deviation of a row sum from 1.
	StochasticTolerance = 1e-8
	// MinEpsilon is the exclusive lower bound on the convergence tolerance.
	MinEpsilon = 1e-12
)

// ValidateTransition checks that p is a well-formed stochastic kernel of
// shape (n, n, A): finite, square in its first two dimensions, non-negative,
// and with Σ_j p[i,j,a] within StochasticTolerance of 1 for every (i, a).
//
// Stages run in that order and the first failure is returned, wrapped with
// ErrMalformedTransition. A negative tensor reports the index of its minimum
// entry; ties resolve to the first in row-major order.
func ValidateTransition(p *Tensor) error {
	if p == nil || len(p.data) == 0 {
		return fmt.Errorf("%w: tensor is empty", ErrMalformedTransition)
	}
	n, n2, actions := p.Dims()
	if n != n2 {
		return fmt.Errorf("%w: shape (%d, %d, %d) must be square in the first two dimensions",
			ErrMalformedTransition, n, n2, actions)
	}

	minK := 0
	for k, v := range p.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			i, j, a := p.index(k)
			return fmt.Errorf("%w: non-finite probability %v at (%d, %d, %d)",
				ErrMalformedTransition, v, i, j, a)
		}
		if v < p.data[minK] {
			minK = k
		}
	}
	if p.data[minK] < 0 {
		i, j, a := p.index(minK)
		return fmt.Errorf("%w: negative probability %v at (%d, %d, %d)",
			ErrMalformedTransition, p.data[minK], i, j, a)
	}

	for i := 0; i < n; i++ {
		for a := 0; a < actions; a++ {
			var sum float64
			for j := 0; j < n; j++ {
				sum += p.data[p.offset(i, j, a)]
			}
			if math.Abs(sum-1) > StochasticTolerance {
				return fmt.Errorf("%w: row for state %d under action %d sums to %v, want 1",
					ErrMalformedTransition, i, a, sum)
			}
		}
	}
	return nil
}

// Validate checks the whole problem. Transition errors wrap
// ErrMalformedTransition; everything else wraps ErrInvalidParameter.
func (p Problem) Validate() error {
	if err := ValidateTransition(p.Transition); err != nil {
		return err
	}
	if p.Cost == nil {
		return fmt.Errorf("%w: cost tensor is missing", ErrInvalidParameter)
	}
	if !p.Cost.sameShape(p.Transition) {
		return fmt.Errorf("%w: cost shape %v does not match transition shape %v",
			ErrInvalidParameter, p.Cost.dims, p.Transition.dims)
	}
	for k, v := range p.Cost.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			i, j, a := p.Cost.index(k)
			return fmt.Errorf("%w: non-finite cost %v at (%d, %d, %d)", ErrInvalidParameter, v, i, j, a)
		}
	}

	n, _, _ := p.Transition.Dims()
	if p.Ref < 0 || p.Ref >= n {
		return fmt.Errorf("%w: s_ref must be between 0 and %d, got %d", ErrInvalidParameter, n-1, p.Ref)
	}
	// The negated comparison also rejects NaN.
	if !(p.Epsilon > MinEpsilon) {
		return fmt.Errorf("%w: epsilon must be greater than %g, got %v", ErrInvalidParameter, MinEpsilon, p.Epsilon)
	}
	if _, err := ParseMode(string(p.Mode)); err != nil {
		return err
	}
	return nil
}
