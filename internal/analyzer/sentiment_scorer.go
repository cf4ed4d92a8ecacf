package analyzer

import (
	"math"

	"github.com/anime-shed/heatmap-inspector-go/pkg/models"
)

// scoreSentiment reduces the merged counts to an integer in [-100, 100]:
// the green/red imbalance, scaled by the dominant family's weighted shade
// strength and by how much of the analyzed area is coloured at all.
func scoreSentiment(green, red models.ShadeCounts, analyzedPixels int, opts Options) (int, scoreBreakdown) {
	g, r := float64(green.Total), float64(red.Total)

	direction := (g - r) / math.Max(1, g+r)

	dominant := green
	if direction < 0 {
		dominant = red
	}
	intensity := math.Pow(shadeStrength(dominant, opts.Weights), opts.ShadeGamma)

	coverage := (g + r) / math.Max(1, float64(analyzedPixels))
	factor := 1.0
	if opts.CoverageFloor != 0 {
		factor = clamp((coverage-opts.CoverageFloor)/(1-opts.CoverageFloor), 0, 1)
	}

	score := int(math.RoundToEven(100 * direction * intensity * factor))
	return score, scoreBreakdown{direction: direction, intensity: intensity, coverage: coverage}
}

// shadeStrength is the weighted shade average normalised by the dark weight
func shadeStrength(c models.ShadeCounts, w models.ShadeWeights) float64 {
	if c.Total == 0 {
		return 0
	}
	weighted := float64(c.Light)*w.Light + float64(c.Medium)*w.Medium + float64(c.Dark)*w.Dark
	return weighted / (float64(c.Total) * w.Dark)
}
