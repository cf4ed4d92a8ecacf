package analyzer

import (
	"math"

	"github.com/anime-shed/heatmap-inspector-go/internal/backend"
	"github.com/anime-shed/heatmap-inspector-go/pkg/models"
)

// estimateShadeCutoffs derives the dark/medium (B1) and medium/light (B2)
// lightness boundaries of one family from its coarse lightness samples.
func estimateShadeCutoffs(b backend.Backend, samples []float64, opts Options) models.ShadeCutoffs {
	cutoffs := models.ShadeCutoffs{B1: defaultCutoffLow, B2: defaultCutoffHigh}
	if len(samples) >= minCutoffSamples {
		cutoffs.B1 = b.Percentile(samples, cutoffLowQuantile)
		cutoffs.B2 = b.Percentile(samples, cutoffHighQuantile)
	}

	// a collapsed range is re-centred on the median
	if len(samples) > 0 && math.Abs(cutoffs.B2-cutoffs.B1) < opts.CollapseEps {
		median := b.Percentile(samples, 0.5)
		half := opts.CollapseWiden / 2
		cutoffs = models.ShadeCutoffs{B1: median - half, B2: median + half}
	}
	return cutoffs
}
