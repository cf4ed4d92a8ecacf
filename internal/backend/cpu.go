package backend

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// NeighborCounter selects how the CPU backend computes NeighborSum
type NeighborCounter string

const (
	// NeighborConvolve applies the 3x3 ring kernel directly
	NeighborConvolve NeighborCounter = "convolve"
	// NeighborShift adds eight zero-filled shifted copies of the mask
	NeighborShift NeighborCounter = "shift"
)

// ParseNeighborCounter validates a configured neighbor counter name
func ParseNeighborCounter(name string) (NeighborCounter, error) {
	switch NeighborCounter(name) {
	case NeighborConvolve, NeighborShift:
		return NeighborCounter(name), nil
	case "":
		return NeighborConvolve, nil
	}
	return "", fmt.Errorf("unknown neighbor counter %q (want convolve or shift)", name)
}

// ringKernel counts the 8-neighborhood and excludes the center
var ringKernel = [3][3]float64{
	{1, 1, 1},
	{1, 0, 1},
	{1, 1, 1},
}

// CPU implements Backend on gonum dense matrices
type CPU struct {
	counter NeighborCounter
}

// NewCPU creates a CPU backend using the given neighbor counter
func NewCPU(counter NeighborCounter) *CPU {
	if counter == "" {
		counter = NeighborConvolve
	}
	return &CPU{counter: counter}
}

func (c *CPU) Name() string {
	return "cpu"
}

// Counter reports the configured neighbor counter
func (c *CPU) Counter() NeighborCounter {
	return c.counter
}

func (c *CPU) Compare(plane *mat.Dense, op CompareOp, threshold float64) *Mask {
	rows, cols := dims(plane)
	out := NewMask(rows, cols)
	if out.Empty() {
		return out
	}
	raw := plane.RawMatrix()
	for r := 0; r < rows; r++ {
		row := raw.Data[r*raw.Stride : r*raw.Stride+cols]
		for col, v := range row {
			var ok bool
			switch op {
			case GreaterEqual:
				ok = v >= threshold
			case LessEqual:
				ok = v <= threshold
			case Greater:
				ok = v > threshold
			case Less:
				ok = v < threshold
			}
			out.Bits[r*cols+col] = ok
		}
	}
	return out
}

func (c *CPU) And(a, b *Mask) *Mask {
	mustMatch(a, b)
	out := NewMask(a.Rows, a.Cols)
	for i := range out.Bits {
		out.Bits[i] = a.Bits[i] && b.Bits[i]
	}
	return out
}

func (c *CPU) Or(a, b *Mask) *Mask {
	mustMatch(a, b)
	out := NewMask(a.Rows, a.Cols)
	for i := range out.Bits {
		out.Bits[i] = a.Bits[i] || b.Bits[i]
	}
	return out
}

func (c *CPU) Not(m *Mask) *Mask {
	out := NewMask(m.Rows, m.Cols)
	for i, v := range m.Bits {
		out.Bits[i] = !v
	}
	return out
}

func (c *CPU) Select(plane *mat.Dense, m *Mask) []float64 {
	rows, cols := dims(plane)
	if rows != m.Rows || cols != m.Cols {
		panic(fmt.Sprintf("backend: plane %dx%d does not match mask %dx%d", rows, cols, m.Rows, m.Cols))
	}
	out := make([]float64, 0, c.CountNonzero(m))
	if m.Empty() {
		return out
	}
	raw := plane.RawMatrix()
	for r := 0; r < rows; r++ {
		for col := 0; col < cols; col++ {
			if m.Bits[r*cols+col] {
				out = append(out, raw.Data[r*raw.Stride+col])
			}
		}
	}
	return out
}

func (c *CPU) Percentile(samples []float64, q float64) float64 {
	return Percentile(samples, q)
}

func (c *CPU) CountNonzero(m *Mask) int {
	n := 0
	for _, v := range m.Bits {
		if v {
			n++
		}
	}
	return n
}

func (c *CPU) NeighborSum(m *Mask) *mat.Dense {
	if c.counter == NeighborShift {
		return shiftNeighborSum(m)
	}
	return convolveNeighborSum(m)
}

func (c *CPU) Subsample(plane *mat.Dense, step int) *mat.Dense {
	rows, cols := dims(plane)
	outRows, outCols := strided(rows, step), strided(cols, step)
	out := NewPlane(outRows, outCols)
	if outRows == 0 || outCols == 0 {
		return out
	}
	src := plane.RawMatrix()
	dst := out.RawMatrix()
	for r := 0; r < outRows; r++ {
		for col := 0; col < outCols; col++ {
			dst.Data[r*dst.Stride+col] = src.Data[r*step*src.Stride+col*step]
		}
	}
	return out
}

func (c *CPU) SubsampleMask(m *Mask, step int) *Mask {
	out := NewMask(strided(m.Rows, step), strided(m.Cols, step))
	for r := 0; r < out.Rows; r++ {
		for col := 0; col < out.Cols; col++ {
			out.Bits[r*out.Cols+col] = m.Bits[r*step*m.Cols+col*step]
		}
	}
	return out
}

// strided is the length of a dimension of size n sampled every step
func strided(n, step int) int {
	if step < 1 {
		panic(fmt.Sprintf("backend: subsample step must be >= 1, got %d", step))
	}
	return (n + step - 1) / step
}

func mustMatch(a, b *Mask) {
	if a.Rows != b.Rows || a.Cols != b.Cols {
		panic(fmt.Sprintf("backend: mask %dx%d does not match %dx%d", a.Rows, a.Cols, b.Rows, b.Cols))
	}
}

// convolveNeighborSum correlates the mask with the ring kernel under a
// zero-padded border.
func convolveNeighborSum(m *Mask) *mat.Dense {
	out := NewPlane(m.Rows, m.Cols)
	if m.Empty() {
		return out
	}
	raw := out.RawMatrix()
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			sum := 0.0
			for ky := -1; ky <= 1; ky++ {
				y := r + ky
				if y < 0 || y >= m.Rows {
					continue
				}
				for kx := -1; kx <= 1; kx++ {
					x := c + kx
					if x < 0 || x >= m.Cols || !m.Bits[y*m.Cols+x] {
						continue
					}
					sum += ringKernel[ky+1][kx+1]
				}
			}
			raw.Data[r*raw.Stride+c] = sum
		}
	}
	return out
}

// shiftNeighborSum accumulates the mask shifted by each of the eight offsets
func shiftNeighborSum(m *Mask) *mat.Dense {
	out := NewPlane(m.Rows, m.Cols)
	if m.Empty() {
		return out
	}
	src := NewPlane(m.Rows, m.Cols)
	srcRaw := src.RawMatrix()
	for i, v := range m.Bits {
		if v {
			srcRaw.Data[(i/m.Cols)*srcRaw.Stride+i%m.Cols] = 1
		}
	}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dy == 0 && dx == 0 {
				continue
			}
			out.Add(out, shifted(src, dy, dx))
		}
	}
	return out
}

// shifted moves every value by (dy, dx), filling vacated cells with zero
func shifted(p *mat.Dense, dy, dx int) *mat.Dense {
	rows, cols := p.Dims()
	out := mat.NewDense(rows, cols, nil)

	srcY0, srcY1 := max(0, -dy), rows-max(0, dy)
	srcX0, srcX1 := max(0, -dx), cols-max(0, dx)
	if srcY0 >= srcY1 || srcX0 >= srcX1 {
		return out
	}
	dstY0, dstX0 := max(0, dy), max(0, dx)

	window := p.Slice(srcY0, srcY1, srcX0, srcX1)
	dst := out.Slice(dstY0, dstY0+(srcY1-srcY0), dstX0, dstX0+(srcX1-srcX0)).(*mat.Dense)
	dst.Copy(window)
	return out
}
