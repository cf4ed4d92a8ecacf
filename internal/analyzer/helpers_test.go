package analyzer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/anime-shed/heatmap-inspector-go/internal/backend"
	"github.com/anime-shed/heatmap-inspector-go/internal/channels"
	"github.com/anime-shed/heatmap-inspector-go/internal/strategy"
	"github.com/anime-shed/heatmap-inspector-go/pkg/models"
)

// testPixel describes one pixel of a synthetic channel set
type testPixel struct {
	hue, sat, val, alpha, light float64
}

var (
	greenPixel       = testPixel{hue: 120, sat: 1, val: 0.8, alpha: 255, light: 0.5}
	redPixel         = testPixel{hue: 0, sat: 1, val: 0.8, alpha: 255, light: 0.5}
	greyPixel        = testPixel{hue: 0, sat: 0, val: 0.5, alpha: 255, light: 0.5}
	transparentPixel = testPixel{hue: 120, sat: 1, val: 0.8, alpha: 0, light: 0.5}
)

// createChannelSet builds a channel set pixel by pixel
func createChannelSet(width, height int, at func(x, y int) testPixel) *channels.ChannelSet {
	cs := &channels.ChannelSet{
		Width:      width,
		Height:     height,
		Alpha:      backend.NewPlane(height, width),
		Hue:        backend.NewPlane(height, width),
		Saturation: backend.NewPlane(height, width),
		Value:      backend.NewPlane(height, width),
		Lightness:  backend.NewPlane(height, width),
	}
	for ch := range cs.RGB {
		cs.RGB[ch] = backend.NewPlane(height, width)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := at(x, y)
			cs.Hue.Set(y, x, p.hue)
			cs.Saturation.Set(y, x, p.sat)
			cs.Value.Set(y, x, p.val)
			cs.Alpha.Set(y, x, p.alpha)
			cs.Lightness.Set(y, x, p.light)
		}
	}
	return cs
}

// createChannels uses one synthetic set as both the raw and blurred variant
func createChannels(width, height int, at func(x, y int) testPixel) *channels.PixelChannels {
	cs := createChannelSet(width, height, at)
	return &channels.PixelChannels{Raw: cs, Blurred: cs}
}

func uniform(p testPixel) func(x, y int) testPixel {
	return func(int, int) testPixel { return p }
}

// decodeTestImage runs a real image through the canonical channel provider
func decodeTestImage(t *testing.T, img image.Image, sigma float64) *channels.PixelChannels {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	provider := channels.NewProvider(strategy.NewGaussianBlurStrategy(), strategy.NewLabLightness())
	px, err := provider.Decode(buf.Bytes(), sigma)
	if err != nil {
		t.Fatalf("Failed to decode test image: %v", err)
	}
	return px
}

// createTestImage creates a solid test image
func createTestImage(width, height int, fillColor color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, fillColor)
		}
	}
	return img
}

func newTestAnalyzer() HeatmapAnalyzer {
	return NewHeatmapAnalyzer(backend.NewCPU(backend.NeighborConvolve))
}

// plainOptions disables the adaptive steps so tests control every threshold
func plainOptions() Options {
	return models.DefaultHeatmapOptions().WithPixelStep(1).WithoutAdaptiveSteps()
}

func maskOf(rows ...string) *backend.Mask {
	m := backend.NewMask(len(rows), len(rows[0]))
	for r, row := range rows {
		for c, ch := range row {
			m.Set(r, c, ch == '#')
		}
	}
	return m
}

func maskRows(m *backend.Mask) []string {
	rows := make([]string, m.Rows)
	for r := 0; r < m.Rows; r++ {
		row := make([]byte, m.Cols)
		for c := 0; c < m.Cols; c++ {
			row[c] = '.'
			if m.At(r, c) {
				row[c] = '#'
			}
		}
		rows[r] = string(row)
	}
	return rows
}
