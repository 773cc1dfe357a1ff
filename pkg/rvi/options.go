package rvi

import (
	"fmt"
	"time"
)

const (
	// DefaultMaxIterations caps the number of Bellman passes.
	DefaultMaxIterations = 10000
	// DefaultMaxTime caps solve wall-clock time.
	DefaultMaxTime = 2 * time.Second
)

// Progress is reported to an Observer after every Bellman pass.
type Progress struct {
	Iteration int
	G         float64
	Residual  float64
}

// Options configures Solve.
type Options struct {
	MaxIterations int
	MaxTime       time.Duration
	Clock         Clock
	// Observer, when set, is called synchronously after each pass.
	Observer func(Progress)
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the budgets used when no Option is supplied.
func DefaultOptions() Options {
	return Options{
		MaxIterations: DefaultMaxIterations,
		MaxTime:       DefaultMaxTime,
		Clock:         systemClock{},
	}
}

// WithMaxIterations sets the iteration budget. n must be at least 1.
func WithMaxIterations(n int) Option {
	return func(o *Options) { o.MaxIterations = n }
}

// WithMaxTime sets the wall-clock budget. d must be positive.
func WithMaxTime(d time.Duration) Option {
	return func(o *Options) { o.MaxTime = d }
}

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(o *Options) { o.Clock = c }
}

// WithObserver installs a per-pass progress callback.
func WithObserver(fn func(Progress)) Option {
	return func(o *Options) { o.Observer = fn }
}

func (o Options) validate() error {
	if o.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations must be >= 1, got %d", ErrInvalidParameter, o.MaxIterations)
	}
	if o.MaxTime <= 0 {
		return fmt.Errorf("%w: max time must be positive, got %s", ErrInvalidParameter, o.MaxTime)
	}
	if o.Clock == nil {
		return fmt.Errorf("%w: clock is nil", ErrInvalidParameter)
	}
	return nil
}
