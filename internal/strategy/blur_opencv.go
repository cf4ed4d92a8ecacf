//go:build opencv

package strategy

import (
	"image"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"

	"github.com/anime-shed/heatmap-inspector-go/internal/backend"
)

// OpenCVBlurStrategy runs cv::GaussianBlur with the same radius rule as the
// pure Go Gaussian.
type OpenCVBlurStrategy struct{}

func newOpenCVBlurStrategy() (BlurStrategy, error) {
	return &OpenCVBlurStrategy{}, nil
}

func (s *OpenCVBlurStrategy) Blur(src *mat.Dense, sigma float64) *mat.Dense {
	if sigma <= 0 {
		return clonePlane(src)
	}
	if src.IsEmpty() {
		return &mat.Dense{}
	}
	rows, cols := src.Dims()

	in := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)
	defer in.Close()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			in.SetFloatAt(r, c, float32(src.At(r, c)))
		}
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := 2*GaussianRadius(sigma) + 1
	gocv.GaussianBlur(in, &blurred, image.Pt(k, k), sigma, sigma, gocv.BorderReplicate)

	out := backend.NewPlane(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.Set(r, c, float64(blurred.GetFloatAt(r, c)))
		}
	}
	return out
}

func (s *OpenCVBlurStrategy) GetStrategyName() string {
	return string(BlurOpenCV)
}
