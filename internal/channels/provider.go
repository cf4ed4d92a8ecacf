package channels

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"gonum.org/v1/gonum/mat"

	"github.com/anime-shed/heatmap-inspector-go/internal/backend"
	apperrors "github.com/anime-shed/heatmap-inspector-go/internal/errors"
	"github.com/anime-shed/heatmap-inspector-go/internal/strategy"
)

// alphaMax is the opaque alpha value of 8-bit channels
const alphaMax = 255.0

// Provider decodes images and derives their channel sets with a configurable
// blur kernel and lightness model.
type Provider struct {
	blur      strategy.BlurStrategy
	lightness strategy.LightnessModel
}

// NewProvider creates a channel provider
func NewProvider(blur strategy.BlurStrategy, lightness strategy.LightnessModel) *Provider {
	return &Provider{blur: blur, lightness: lightness}
}

// Describe names the strategies in use, e.g. "gaussian/lab"
func (p *Provider) Describe() string {
	return p.blur.GetStrategyName() + "/" + p.lightness.GetStrategyName()
}

// Decode parses PNG, JPEG, GIF, WebP, BMP or TIFF bytes
func (p *Provider) Decode(data []byte, blurSigma float64) (*PixelChannels, error) {
	if len(data) == 0 {
		return nil, apperrors.NewDecodeError("image payload is empty", nil)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewDecodeError("failed to decode image", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, apperrors.NewEmptyInputError(fmt.Sprintf("%s image has zero width or height", format), nil)
	}
	return p.FromImage(img, blurSigma)
}

// FromImage derives channel sets from an already decoded image
func (p *Provider) FromImage(img image.Image, blurSigma float64) (*PixelChannels, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, apperrors.NewEmptyInputError("image has zero width or height", nil)
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)

	planes := splitPlanes(nrgba)
	raw := p.derive(width, height, planes)
	blurred := p.derive(width, height, p.blurPlanes(width, height, planes, blurSigma))

	return &PixelChannels{Raw: raw, Blurred: blurred}, nil
}

// rgbaPlanes holds R, G, B and A as 0-255 floats in row-major order
type rgbaPlanes [4][]float64

func splitPlanes(img *image.NRGBA) rgbaPlanes {
	width, height := img.Rect.Dx(), img.Rect.Dy()
	var planes rgbaPlanes
	for i := range planes {
		planes[i] = make([]float64, width*height)
	}
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width; x++ {
			for ch := 0; ch < 4; ch++ {
				planes[ch][y*width+x] = float64(row[x*4+ch])
			}
		}
	}
	return planes
}

// blurPlanes blurs alpha-premultiplied colour, then unpremultiplies and
// quantises back to 8 bit. Pixels whose blurred alpha is 0 get RGB 0.
func (p *Provider) blurPlanes(width, height int, src rgbaPlanes, sigma float64) rgbaPlanes {
	n := width * height
	alpha := src[3]

	var blurred [4]*mat.Dense
	for ch := 0; ch < 3; ch++ {
		pre := make([]float64, n)
		for i := range pre {
			pre[i] = src[ch][i] * alpha[i] / alphaMax
		}
		blurred[ch] = p.blur.Blur(backend.PlaneFrom(height, width, pre), sigma)
	}
	alphaCopy := make([]float64, n)
	copy(alphaCopy, alpha)
	blurred[3] = p.blur.Blur(backend.PlaneFrom(height, width, alphaCopy), sigma)

	var out rgbaPlanes
	for i := range out {
		out[i] = make([]float64, n)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			a := blurred[3].At(y, x)
			out[3][i] = quantize(a)
			if a <= 0 {
				continue
			}
			for ch := 0; ch < 3; ch++ {
				out[ch][i] = quantize(blurred[ch].At(y, x) * alphaMax / a)
			}
		}
	}
	return out
}

func quantize(v float64) float64 {
	return math.Max(0, math.Min(alphaMax, math.Round(v)))
}

// derive builds a ChannelSet from 8-bit RGBA planes
func (p *Provider) derive(width, height int, planes rgbaPlanes) *ChannelSet {
	n := width * height
	hue := make([]float64, n)
	sat := make([]float64, n)
	val := make([]float64, n)
	light := make([]float64, n)

	for i := 0; i < n; i++ {
		r, g, b := uint8(planes[0][i]), uint8(planes[1][i]), uint8(planes[2][i])
		hue[i], sat[i], val[i] = hsv(r, g, b)
		light[i] = p.lightness.Lightness(r, g, b)
	}

	cs := &ChannelSet{
		Width:      width,
		Height:     height,
		Alpha:      backend.PlaneFrom(height, width, planes[3]),
		Hue:        backend.PlaneFrom(height, width, hue),
		Saturation: backend.PlaneFrom(height, width, sat),
		Value:      backend.PlaneFrom(height, width, val),
		Lightness:  backend.PlaneFrom(height, width, light),
	}
	for ch := 0; ch < 3; ch++ {
		cs.RGB[ch] = backend.PlaneFrom(height, width, planes[ch])
	}
	return cs
}

// hsv returns hue in degrees [0,360) and saturation/value in [0,1]
func hsv(r, g, b uint8) (float64, float64, float64) {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, s, v := c.Hsv()
	if h >= 360 {
		h -= 360
	}
	return h, s, v
}
