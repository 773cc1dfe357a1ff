package rvi

import "time"

// Termination records why a solve stopped.
type Termination int

const (
	// Continue means no termination condition has fired yet.
	Continue Termination = iota
	// Converged means the sup-norm change fell below epsilon.
	Converged
	// TimeExhausted means the wall-clock budget was exceeded.
	TimeExhausted
	// IterationExhausted means the iteration budget was reached.
	IterationExhausted
)

func (t Termination) String() string {
	switch t {
	case Continue:
		return "continue"
	case Converged:
		return "converged"
	case TimeExhausted:
		return "time_exhausted"
	case IterationExhausted:
		return "iteration_exhausted"
	default:
		return "unknown"
	}
}

// budget holds the stopping rule for a single solve.
type budget struct {
	epsilon       float64
	maxIterations int
	maxTime       time.Duration
	clock         Clock
	start         time.Time
}

// decide evaluates the stopping rule after pass iter produced the given
// residual. Convergence wins over the time budget, which wins over the
// iteration budget. The clock is only read when the pass did not converge.
func (b *budget) decide(res float64, iter int) Termination {
	if res < b.epsilon {
		return Converged
	}
	if b.clock.Now().Sub(b.start) > b.maxTime {
		return TimeExhausted
	}
	if iter >= b.maxIterations {
		return IterationExhausted
	}
	return Continue
}
