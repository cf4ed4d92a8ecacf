package backend

import "gonum.org/v1/gonum/mat"

// CompareOp selects the elementwise comparison applied by Backend.Compare
type CompareOp int

const (
	GreaterEqual CompareOp = iota
	LessEqual
	Greater
	Less
)

// Backend provides the array primitives the heatmap pipeline is built from.
// Implementations must agree numerically: the same inputs give the same
// masks, counts and percentiles on every backend.
type Backend interface {
	// Name identifies the backend in analysis diagnostics
	Name() string

	Compare(plane *mat.Dense, op CompareOp, threshold float64) *Mask
	And(a, b *Mask) *Mask
	Or(a, b *Mask) *Mask
	Not(m *Mask) *Mask

	// Select returns the plane values where the mask is set, in row-major order
	Select(plane *mat.Dense, m *Mask) []float64
	// Percentile returns the q-quantile (q in [0,1]) of samples using linear
	// interpolation between closest ranks. An empty sample yields 0.
	Percentile(samples []float64, q float64) float64
	CountNonzero(m *Mask) int

	// NeighborSum counts, per pixel, the set pixels among its 8 neighbors.
	// Pixels outside the mask count as unset.
	NeighborSum(m *Mask) *mat.Dense

	// Subsample keeps every step-th row and column starting at index 0
	Subsample(plane *mat.Dense, step int) *mat.Dense
	SubsampleMask(m *Mask, step int) *Mask
}
