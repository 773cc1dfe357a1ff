// Package rvi solves finite average-cost Markov Decision Processes with
// Relative Value Iteration.
//
// tensor.go holds the flat (i, j, a) tensor used for transition probabilities
// and per-transition costs. validate.go is the single stochastic-kernel and
// parameter validator; both the HTTP boundary and Solve call it.
//
// Each iteration of Solve runs one Bellman minimization (bellman.go), anchors
// the value vector at the reference state, then asks the termination policy
// (terminate.go) whether to stop:
//
//	converged            ‖h − h_prev‖∞ < epsilon   → returns the new h
//	time exhausted       elapsed > max time          → returns the previous h
//	iteration exhausted  iterations ≥ max iterations → returns the previous h
//
// On the two budget paths g and the policy always reflect the candidate just
// computed, while h is the last vector the loop fully accepted.
//
// Reward problems are solved by negating the reward tensor (Mode.AsCost) so
// the engine always minimizes. Solve allocates all of its state per call and
// is safe for concurrent use.
package rvi
