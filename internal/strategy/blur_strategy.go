package strategy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/anime-shed/heatmap-inspector-go/internal/backend"
)

// BlurStrategy smooths one channel plane. Implementations never modify src.
type BlurStrategy interface {
	Blur(src *mat.Dense, sigma float64) *mat.Dense
	GetStrategyName() string
}

// BlurKind names a configurable blur strategy
type BlurKind string

const (
	BlurGaussian BlurKind = "gaussian"
	BlurBox      BlurKind = "box"
	BlurOpenCV   BlurKind = "opencv"
)

// NewBlurStrategy returns the blur strategy for a configured kind
func NewBlurStrategy(kind BlurKind) (BlurStrategy, error) {
	switch kind {
	case BlurGaussian, "":
		return NewGaussianBlurStrategy(), nil
	case BlurBox:
		return NewBoxBlurStrategy(), nil
	case BlurOpenCV:
		return newOpenCVBlurStrategy()
	default:
		return nil, fmt.Errorf("unsupported blur kernel: %s", kind)
	}
}

// GaussianBlurStrategy applies a separable Gaussian with radius ceil(3σ)
// and replicated edges.
type GaussianBlurStrategy struct{}

// NewGaussianBlurStrategy creates a Gaussian blur strategy
func NewGaussianBlurStrategy() BlurStrategy {
	return &GaussianBlurStrategy{}
}

func (s *GaussianBlurStrategy) Blur(src *mat.Dense, sigma float64) *mat.Dense {
	if sigma <= 0 {
		return clonePlane(src)
	}
	return separable(src, gaussianKernel(sigma))
}

func (s *GaussianBlurStrategy) GetStrategyName() string {
	return string(BlurGaussian)
}

// BoxBlurStrategy averages a (2r+1)² window with r = max(1, round(σ))
type BoxBlurStrategy struct{}

// NewBoxBlurStrategy creates a box blur strategy
func NewBoxBlurStrategy() BlurStrategy {
	return &BoxBlurStrategy{}
}

func (s *BoxBlurStrategy) Blur(src *mat.Dense, sigma float64) *mat.Dense {
	if sigma <= 0 {
		return clonePlane(src)
	}
	radius := max(1, int(math.Round(sigma)))
	kernel := make([]float64, 2*radius+1)
	for i := range kernel {
		kernel[i] = 1 / float64(len(kernel))
	}
	return separable(src, kernel)
}

func (s *BoxBlurStrategy) GetStrategyName() string {
	return string(BlurBox)
}

// GaussianRadius is the kernel half-width used for a given sigma
func GaussianRadius(sigma float64) int {
	return max(1, int(math.Ceil(3*sigma)))
}

func gaussianKernel(sigma float64) []float64 {
	radius := GaussianRadius(sigma)
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// separable convolves rows then columns with a symmetric 1-D kernel
func separable(src *mat.Dense, kernel []float64) *mat.Dense {
	if src.IsEmpty() {
		return &mat.Dense{}
	}
	rows, cols := src.Dims()
	radius := len(kernel) / 2
	in := src.RawMatrix()

	tmp := backend.NewPlane(rows, cols).RawMatrix()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			sum := 0.0
			for k, w := range kernel {
				x := clampIndex(c+k-radius, cols)
				sum += w * in.Data[r*in.Stride+x]
			}
			tmp.Data[r*tmp.Stride+c] = sum
		}
	}

	out := backend.NewPlane(rows, cols)
	dst := out.RawMatrix()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			sum := 0.0
			for k, w := range kernel {
				y := clampIndex(r+k-radius, rows)
				sum += w * tmp.Data[y*tmp.Stride+c]
			}
			dst.Data[r*dst.Stride+c] = sum
		}
	}
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func clonePlane(src *mat.Dense) *mat.Dense {
	if src.IsEmpty() {
		return &mat.Dense{}
	}
	return mat.DenseCopyOf(src)
}
