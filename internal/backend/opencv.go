//go:build opencv

package backend

import (
	"image"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// OpenCVAvailable reports whether this binary was built with OpenCV support
const OpenCVAvailable = true

// OpenCV runs the neighbor count through OpenCV's filter engine and shares
// every other primitive with the CPU backend.
type OpenCV struct {
	*CPU
}

// NewOpenCV creates the OpenCV-backed backend
func NewOpenCV() (*OpenCV, error) {
	return &OpenCV{CPU: NewCPU(NeighborConvolve)}, nil
}

func (o *OpenCV) Name() string {
	return "opencv"
}

func (o *OpenCV) NeighborSum(m *Mask) *mat.Dense {
	out := NewPlane(m.Rows, m.Cols)
	if m.Empty() {
		return out
	}

	src := gocv.NewMatWithSize(m.Rows, m.Cols, gocv.MatTypeCV32F)
	defer src.Close()
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if m.Bits[r*m.Cols+c] {
				src.SetFloatAt(r, c, 1)
			} else {
				src.SetFloatAt(r, c, 0)
			}
		}
	}

	kernel := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
	defer kernel.Close()
	for ky := 0; ky < 3; ky++ {
		for kx := 0; kx < 3; kx++ {
			kernel.SetFloatAt(ky, kx, float32(ringKernel[ky][kx]))
		}
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Filter2D(src, &dst, gocv.MatTypeCV32F, kernel, image.Pt(-1, -1), 0, gocv.BorderConstant)

	raw := out.RawMatrix()
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			raw.Data[r*raw.Stride+c] = float64(dst.GetFloatAt(r, c))
		}
	}
	return out
}
