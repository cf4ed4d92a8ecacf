package analyzer

import (
	"gonum.org/v1/gonum/mat"

	"github.com/anime-shed/heatmap-inspector-go/internal/backend"
	"github.com/anime-shed/heatmap-inspector-go/pkg/models"
)

// Options is the configuration of one analysis
type Options = models.HeatmapOptions

const (
	// alphaGate is the minimum alpha (of 255) for a pixel to count as present
	alphaGate = 8.0

	minTuneSamples   = 50
	tunePercentileLo = 0.05
	tunePercentileHi = 0.95
	tuneScale        = 0.95

	minCutoffSamples   = 10
	defaultCutoffLow   = 0.45
	defaultCutoffHigh  = 0.7
	cutoffLowQuantile  = 0.33
	cutoffHighQuantile = 0.66

	minUniformSamples = 50
)

// channelView is the part of a channel set the family classifier reads
type channelView struct {
	hue, saturation, value, alpha *mat.Dense
}

// familyMasks partitions a plane into green, red and neutral pixels
type familyMasks struct {
	green, red, neutral *backend.Mask
}

// coarseStats is what the blurred, strided pass contributes to the result
type coarseStats struct {
	greenLightness []float64
	redLightness   []float64
	neutral        int
	candidates     int
}

// scoreBreakdown keeps the factors behind a sentiment score
type scoreBreakdown struct {
	direction float64
	intensity float64
	coverage  float64
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
