package rvi

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// bellman applies one Bellman minimization to h:
//
//	Q(i, a) = Σ_j P[i,j,a] · (C[i,j,a] + h[j])
//	out[i]  = min_a Q(i, a)
//	pi[i]   = lowest a attaining the minimum
//
// h is only read; out and pi are overwritten. q is scratch of length A.
// Summation runs over j in increasing order so results are reproducible.
// Cost is O(n²·A).
func bellman(p, c *Tensor, h, out []float64, pi []int, q []float64) {
	n, _, actions := p.Dims()
	for i := 0; i < n; i++ {
		for a := range q {
			q[a] = 0
		}
		for j := 0; j < n; j++ {
			base := (i*n + j) * actions
			pr := p.data[base : base+actions]
			cr := c.data[base : base+actions]
			for a := range q {
				q[a] += pr[a] * (cr[a] + h[j])
			}
		}

		best, bestA := math.Inf(1), 0
		for a, v := range q {
			if a == 0 || v < best {
				best, bestA = v, a
			}
		}
		out[i] = best
		pi[i] = bestA
	}
}

// normalize shifts h in place so h[ref] becomes exactly 0 and returns the
// subtracted value, which is the gain estimate for this pass.
func normalize(h []float64, ref int) float64 {
	g := h[ref]
	floats.AddConst(-g, h)
	return g
}

// residual is the sup-norm ‖a − b‖∞.
func residual(a, b []float64) float64 {
	return floats.Distance(a, b, math.Inf(1))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// allFinite reports whether no element of h is NaN or ±Inf.
func allFinite(h []float64) bool {
	for _, v := range h {
		if !finite(v) {
			return false
		}
	}
	return true
}
