package analyzer

import (
	"github.com/anime-shed/heatmap-inspector-go/internal/backend"
)

// classifyFamilies assigns every pixel to exactly one of green, red or
// neutral. A pixel is active when alpha, saturation and value all pass their
// gates. Green takes precedence where the hue windows overlap; the red window
// wraps across 0°/360°.
func classifyFamilies(b backend.Backend, v channelView, opts Options, minSaturation float64) familyMasks {
	active := b.And(
		b.And(
			b.Compare(v.alpha, backend.GreaterEqual, alphaGate),
			b.Compare(v.saturation, backend.GreaterEqual, minSaturation),
		),
		b.Compare(v.value, backend.GreaterEqual, opts.MinValue),
	)

	greenHue := b.And(
		b.Compare(v.hue, backend.GreaterEqual, opts.GreenHueMin),
		b.Compare(v.hue, backend.LessEqual, opts.GreenHueMax),
	)
	redHue := b.Or(
		b.Compare(v.hue, backend.LessEqual, opts.RedHueLowMax),
		b.Compare(v.hue, backend.GreaterEqual, 360-opts.RedHueLowMax),
	)

	green := b.And(active, greenHue)
	red := b.And(b.And(active, b.Not(green)), redHue)

	return familyMasks{
		green:   green,
		red:     red,
		neutral: b.Not(b.Or(green, red)),
	}
}
