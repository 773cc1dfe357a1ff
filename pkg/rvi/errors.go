package rvi

import "errors"

// Sentinel errors. Call sites wrap them with the offending index or value,
// so match with errors.Is rather than comparing messages.
var (
	// ErrMalformedTransition is returned when the transition tensor is not a
	// well-formed stochastic kernel: not 3-D, not square in its state
	// dimensions, non-finite or negative entries, or a (state, action) row
	// that does not sum to 1.
	ErrMalformedTransition = errors.New("rvi: malformed transition tensor")

	// ErrInvalidParameter is returned for out-of-range scalar inputs and for
	// cost tensors whose shape does not match the transition tensor.
	ErrInvalidParameter = errors.New("rvi: invalid parameter")
)
