package backend

import "gonum.org/v1/gonum/mat"

// Mask is a row-major boolean plane
type Mask struct {
	Rows, Cols int
	Bits       []bool
}

// NewMask allocates an all-false mask
func NewMask(rows, cols int) *Mask {
	return &Mask{Rows: rows, Cols: cols, Bits: make([]bool, rows*cols)}
}

// At reports whether the pixel at (r, c) is set
func (m *Mask) At(r, c int) bool {
	return m.Bits[r*m.Cols+c]
}

// Set marks the pixel at (r, c)
func (m *Mask) Set(r, c int, v bool) {
	m.Bits[r*m.Cols+c] = v
}

// Empty reports whether the mask has no pixels at all
func (m *Mask) Empty() bool {
	return m.Rows == 0 || m.Cols == 0
}

// NewPlane allocates a zeroed rows x cols plane. Zero-sized planes are
// represented by an empty mat.Dense, which gonum cannot allocate directly.
func NewPlane(rows, cols int) *mat.Dense {
	if rows == 0 || cols == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(rows, cols, nil)
}

// PlaneFrom wraps row-major data as a plane
func PlaneFrom(rows, cols int, data []float64) *mat.Dense {
	if rows == 0 || cols == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(rows, cols, data)
}

// dims is mat.Dense.Dims that tolerates the empty plane
func dims(p *mat.Dense) (int, int) {
	if p == nil || p.IsEmpty() {
		return 0, 0
	}
	return p.Dims()
}
