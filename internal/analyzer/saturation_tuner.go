package analyzer

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/anime-shed/heatmap-inspector-go/internal/backend"
)

// tuneMinSaturation lowers the saturation gate for washed-out images. The
// result never exceeds opts.MinSaturation and never drops below
// opts.AutoTuneSMinFloor.
func tuneMinSaturation(b backend.Backend, saturation, value, alpha *mat.Dense, opts Options) float64 {
	if !opts.AutoTuneMinSaturation {
		return opts.MinSaturation
	}

	present := b.And(
		b.Compare(alpha, backend.GreaterEqual, alphaGate),
		b.Compare(value, backend.GreaterEqual, opts.MinValue),
	)
	samples := b.Select(saturation, present)
	if len(samples) < minTuneSamples {
		return opts.MinSaturation
	}

	q := clamp(opts.AutoTuneSPercentile, tunePercentileLo, tunePercentileHi)
	tuned := math.Min(opts.MinSaturation, b.Percentile(samples, q)*tuneScale)
	return math.Max(opts.AutoTuneSMinFloor, tuned)
}
