package rvi

import "fmt"

// Tensor is a dense rank-3 array stored row-major in one flat buffer.
// Element (i, j, a) lives at (i*d1 + j)*d2 + a, so the action index is the
// fastest-moving one and a fixed (i, j) pair covers a contiguous run.
type Tensor struct {
	dims [3]int
	data []float64
}

// NewTensor allocates a zero tensor of shape (d0, d1, d2).
// Every dimension must be at least 1.
func NewTensor(d0, d1, d2 int) (*Tensor, error) {
	if d0 < 1 || d1 < 1 || d2 < 1 {
		return nil, fmt.Errorf("%w: tensor shape (%d, %d, %d) must be positive in every dimension",
			ErrInvalidParameter, d0, d1, d2)
	}
	return &Tensor{
		dims: [3]int{d0, d1, d2},
		data: make([]float64, d0*d1*d2),
	}, nil
}

// FromNested copies a nested [i][j][a] slice into a new Tensor.
//
// The input must be a full cube: every v[i] has the same length as v[0], and
// every v[i][j] the same length as v[0][0]. Errors name the first ragged
// position found; they carry no sentinel so callers can attach the one that
// fits the tensor's role (transition or cost).
func FromNested(v [][][]float64) (*Tensor, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("tensor must have at least one row, got shape (0)")
	}
	d0, d1 := len(v), len(v[0])
	if d1 == 0 {
		return nil, fmt.Errorf("tensor must be 3-dimensional, got shape (%d, 0)", d0)
	}
	d2 := len(v[0][0])
	if d2 == 0 {
		return nil, fmt.Errorf("tensor must be 3-dimensional, got shape (%d, %d, 0)", d0, d1)
	}

	t := &Tensor{dims: [3]int{d0, d1, d2}, data: make([]float64, 0, d0*d1*d2)}
	for i, plane := range v {
		if len(plane) != d1 {
			return nil, fmt.Errorf("tensor is not 3-dimensional: row %d has %d entries, want %d", i, len(plane), d1)
		}
		for j, cell := range plane {
			if len(cell) != d2 {
				return nil, fmt.Errorf("tensor has inconsistent action dimension at (i=%d, j=%d): got %d, want %d",
					i, j, len(cell), d2)
			}
			t.data = append(t.data, cell...)
		}
	}
	return t, nil
}

// Dims returns the shape (d0, d1, d2).
func (t *Tensor) Dims() (int, int, int) {
	return t.dims[0], t.dims[1], t.dims[2]
}

// At returns element (i, j, a). It panics if an index is out of range.
func (t *Tensor) At(i, j, a int) float64 {
	return t.data[t.offset(i, j, a)]
}

// Set stores v at (i, j, a). It panics if an index is out of range.
func (t *Tensor) Set(i, j, a int, v float64) {
	t.data[t.offset(i, j, a)] = v
}

// Nested returns a freshly allocated [i][j][a] copy of t.
func (t *Tensor) Nested() [][][]float64 {
	out := make([][][]float64, t.dims[0])
	for i := range out {
		out[i] = make([][]float64, t.dims[1])
		for j := range out[i] {
			k := t.offset(i, j, 0)
			out[i][j] = append([]float64(nil), t.data[k:k+t.dims[2]]...)
		}
	}
	return out
}

// Negated returns a new tensor holding −t. t is left untouched.
func (t *Tensor) Negated() *Tensor {
	out := &Tensor{dims: t.dims, data: make([]float64, len(t.data))}
	for k, v := range t.data {
		out.data[k] = -v
	}
	return out
}

// sameShape reports whether t and u have identical dimensions.
func (t *Tensor) sameShape(u *Tensor) bool {
	return t.dims == u.dims
}

func (t *Tensor) offset(i, j, a int) int {
	if i < 0 || i >= t.dims[0] || j < 0 || j >= t.dims[1] || a < 0 || a >= t.dims[2] {
		panic(fmt.Sprintf("rvi: index (%d, %d, %d) out of range for shape %v", i, j, a, t.dims))
	}
	return (i*t.dims[1]+j)*t.dims[2] + a
}

// index converts a flat buffer position back into (i, j, a).
func (t *Tensor) index(k int) (int, int, int) {
	a := k % t.dims[2]
	k /= t.dims[2]
	return k / t.dims[1], k % t.dims[1], a
}
