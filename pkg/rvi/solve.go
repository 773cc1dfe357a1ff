package rvi

import (
	"fmt"
	"math"
	"time"
)

// Problem is one validated-or-not RVI instance. Transition is the TPM with
// shape (n, n, A); Cost is the TRM with the same shape.
type Problem struct {
	Transition *Tensor
	Cost       *Tensor
	Ref        int
	Epsilon    float64
	Mode       Mode
}

// Result is the outcome of Solve.
//
// On Converged, H is the last normalized iterate. On either budget
// termination H is the iterate accepted before the final pass, while G and
// Policy come from the final pass.
type Result struct {
	H           []float64
	G           float64
	Policy      []int
	Iterations  int
	Converged   bool
	Termination Termination
	Elapsed     time.Duration
}

// NewProblem builds a Problem from nested [i][j][a] arrays and validates it.
func NewProblem(tpm, trm [][][]float64, ref int, epsilon float64, mode string) (Problem, error) {
	p, err := FromNested(tpm)
	if err != nil {
		return Problem{}, fmt.Errorf("%w: TPM: %w", ErrMalformedTransition, err)
	}
	c, err := FromNested(trm)
	if err != nil {
		return Problem{}, fmt.Errorf("%w: TRM: %w", ErrInvalidParameter, err)
	}
	m, err := ParseMode(mode)
	if err != nil {
		return Problem{}, err
	}
	prob := Problem{Transition: p, Cost: c, Ref: ref, Epsilon: epsilon, Mode: m}
	if err := prob.Validate(); err != nil {
		return Problem{}, err
	}
	return prob, nil
}

// Solve runs relative value iteration on p.
//
// Starting from h = 0, each pass computes a Bellman candidate, re-bases it so
// candidate[Ref] = 0, and compares it with the last accepted iterate. The
// loop ends on convergence, on the time budget or on the iteration budget,
// checked in that order. A pass whose values overflow float64 fails with
// ErrInvalidParameter instead of returning non-finite results. Solve does not
// modify p and is safe to call concurrently on shared input.
func Solve(p Problem, opts ...Option) (Result, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	mode, _ := ParseMode(string(p.Mode))
	cost := mode.AsCost(p.Cost)

	n, _, actions := p.Transition.Dims()
	var (
		lastAccepted = make([]float64, n)
		candidate    = make([]float64, n)
		policy       = make([]int, n)
		scratch      = make([]float64, actions)
	)
	b := budget{
		epsilon:       p.Epsilon,
		maxIterations: cfg.MaxIterations,
		maxTime:       cfg.MaxTime,
		clock:         cfg.Clock,
		start:         cfg.Clock.Now(),
	}

	for iter := 1; ; iter++ {
		bellman(p.Transition, cost, lastAccepted, candidate, policy, scratch)
		g := normalize(candidate, p.Ref)
		res := residual(candidate, lastAccepted)
		if !finite(g) || !allFinite(candidate) || math.IsNaN(res) {
			return Result{}, fmt.Errorf("%w: cost magnitude overflows float64 at iteration %d",
				ErrInvalidParameter, iter)
		}
		if cfg.Observer != nil {
			cfg.Observer(Progress{Iteration: iter, G: g, Residual: res})
		}

		switch reason := b.decide(res, iter); reason {
		case Converged:
			return b.result(candidate, g, policy, iter, reason), nil
		case TimeExhausted, IterationExhausted:
			return b.result(lastAccepted, g, policy, iter, reason), nil
		}
		lastAccepted, candidate = candidate, lastAccepted
	}
}

func (b *budget) result(h []float64, g float64, policy []int, iter int, reason Termination) Result {
	return Result{
		H:           h,
		G:           g,
		Policy:      policy,
		Iterations:  iter,
		Converged:   reason == Converged,
		Termination: reason,
		Elapsed:     b.clock.Now().Sub(b.start),
	}
}
