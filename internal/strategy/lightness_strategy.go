package strategy

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// LightnessModel maps an 8-bit RGB triple to perceptual lightness in [0,1]
type LightnessModel interface {
	Lightness(r, g, b uint8) float64
	GetStrategyName() string
}

// LightnessKind names a configurable lightness model
type LightnessKind string

const (
	LightnessLab LightnessKind = "lab"
	LightnessHSL LightnessKind = "hsl"
)

// NewLightnessModel returns the lightness model for a configured kind
func NewLightnessModel(kind LightnessKind) (LightnessModel, error) {
	switch kind {
	case LightnessLab, "":
		return NewLabLightness(), nil
	case LightnessHSL:
		return NewHSLLightness(), nil
	default:
		return nil, fmt.Errorf("unsupported lightness model: %s", kind)
	}
}

// LabLightness is CIE L* (D65) scaled to [0,1]
type LabLightness struct{}

// NewLabLightness creates the CIE Lab lightness model
func NewLabLightness() LightnessModel {
	return &LabLightness{}
}

func (m *LabLightness) Lightness(r, g, b uint8) float64 {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	l, _, _ := c.Lab()
	return math.Max(0, math.Min(1, l))
}

func (m *LabLightness) GetStrategyName() string {
	return string(LightnessLab)
}

// HSLLightness is the HSL midpoint (max+min)/2
type HSLLightness struct{}

// NewHSLLightness creates the HSL lightness model
func NewHSLLightness() LightnessModel {
	return &HSLLightness{}
}

func (m *HSLLightness) Lightness(r, g, b uint8) float64 {
	hi := max(r, g, b)
	lo := min(r, g, b)
	return (float64(hi) + float64(lo)) / 2 / 255
}

func (m *HSLLightness) GetStrategyName() string {
	return string(LightnessHSL)
}
