package channels

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/anime-shed/heatmap-inspector-go/internal/errors"
	"github.com/anime-shed/heatmap-inspector-go/internal/strategy"
)

func newTestProvider() *Provider {
	return NewProvider(strategy.NewGaussianBlurStrategy(), strategy.NewLabLightness())
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDecode_SolidGreen(t *testing.T) {
	data := encodePNG(t, solidImage(6, 4, color.NRGBA{0, 255, 0, 255}))

	px, err := newTestProvider().Decode(data, 1.5)
	require.NoError(t, err)

	assert.Equal(t, 6, px.Width())
	assert.Equal(t, 4, px.Height())
	for _, cs := range []*ChannelSet{px.Raw, px.Blurred} {
		rows, cols := cs.Hue.Dims()
		require.Equal(t, 4, rows)
		require.Equal(t, 6, cols)
		assert.InDelta(t, 120, cs.Hue.At(2, 3), 1e-9)
		assert.InDelta(t, 1, cs.Saturation.At(2, 3), 1e-9)
		assert.InDelta(t, 1, cs.Value.At(2, 3), 1e-9)
		assert.Equal(t, 255.0, cs.Alpha.At(2, 3))
		assert.Equal(t, 255.0, cs.RGB[1].At(0, 0))
		assert.InDelta(t, 0.877, cs.Lightness.At(1, 1), 1e-3)
	}
}

func TestDecode_TransparentPixels(t *testing.T) {
	data := encodePNG(t, solidImage(3, 3, color.NRGBA{0, 255, 0, 0}))

	px, err := newTestProvider().Decode(data, 1)
	require.NoError(t, err)

	assert.Equal(t, 0.0, px.Blurred.Alpha.At(1, 1))
	assert.Equal(t, 0.0, px.Blurred.RGB[1].At(1, 1))
	assert.Equal(t, 0.0, px.Raw.Alpha.At(1, 1))
}

func TestDecode_HiddenColourDoesNotBleed(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{0, 0, 255, 0})

	px, err := newTestProvider().FromImage(img, 1)
	require.NoError(t, err)

	// the transparent pixel picks up alpha from its neighbour but only its colour
	assert.Greater(t, px.Blurred.Alpha.At(0, 1), 0.0)
	assert.Equal(t, 255.0, px.Blurred.RGB[0].At(0, 1))
	assert.Equal(t, 0.0, px.Blurred.RGB[2].At(0, 1))
	assert.Equal(t, 255.0, px.Blurred.RGB[0].At(0, 0))
}

func TestDecode_ZeroSigmaMatchesRaw(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}

	px, err := newTestProvider().FromImage(img, 0)
	require.NoError(t, err)

	for ch := 0; ch < 3; ch++ {
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				assert.Equal(t, px.Raw.RGB[ch].At(y, x), px.Blurred.RGB[ch].At(y, x))
			}
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind apperrors.ErrorType
	}{
		{"empty payload", nil, apperrors.ErrorTypeDecode},
		{"garbage", []byte("definitely not an image"), apperrors.ErrorTypeDecode},
		{"truncated png", encodePNG(t, solidImage(2, 2, color.NRGBA{1, 2, 3, 255}))[:20], apperrors.ErrorTypeDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestProvider().Decode(tt.data, 1)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))
		})
	}
}

func TestFromImage_Empty(t *testing.T) {
	_, err := newTestProvider().FromImage(image.NewNRGBA(image.Rect(0, 0, 0, 5)), 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeEmptyInput, apperrors.KindOf(err))
}

func TestDescribe(t *testing.T) {
	p := NewProvider(strategy.NewBoxBlurStrategy(), strategy.NewHSLLightness())
	assert.Equal(t, "box/hsl", p.Describe())
}

func TestHSV_Hues(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		hue     float64
	}{
		{"red", 255, 0, 0, 0},
		{"green", 0, 255, 0, 120},
		{"blue", 0, 0, 255, 240},
		{"magenta-red", 255, 0, 20, 355.29},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := hsv(tt.r, tt.g, tt.b)
			assert.InDelta(t, tt.hue, h, 0.01)
		})
	}
}
