package analyzer

import (
	"github.com/anime-shed/heatmap-inspector-go/internal/backend"
	"github.com/anime-shed/heatmap-inspector-go/pkg/models"
)

// detectUniformShade forces a whole family into one shade when its lightness
// distribution is too narrow for separate cutoffs. It returns ShadeNone when
// detection is disabled, the sample is small, or the spread is wide enough.
func detectUniformShade(b backend.Backend, samples []float64, opts Options) models.Shade {
	if !opts.UniformDetect || len(samples) < minUniformSamples {
		return models.ShadeNone
	}

	spread := b.Percentile(samples, 0.95) - b.Percentile(samples, 0.05)
	if spread >= opts.UniformSpreadMax {
		return models.ShadeNone
	}

	median := b.Percentile(samples, 0.5)
	switch {
	case median >= opts.UniformLightL:
		return models.ShadeLight
	case median <= opts.UniformDarkL:
		return models.ShadeDark
	default:
		return models.ShadeMedium
	}
}
