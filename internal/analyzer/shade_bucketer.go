package analyzer

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/anime-shed/heatmap-inspector-go/internal/backend"
	"github.com/anime-shed/heatmap-inspector-go/pkg/models"
)

// bucketShades counts a family's pixels per shade: light is L >= B2, dark is
// L < B1 and medium is everything else. A forced shade takes every pixel.
func bucketShades(b backend.Backend, allowed *backend.Mask, lightness *mat.Dense, cutoffs models.ShadeCutoffs, forced models.Shade) models.ShadeCounts {
	total := b.CountNonzero(allowed)

	switch forced {
	case models.ShadeLight:
		return models.ShadeCounts{Light: total, Total: total}
	case models.ShadeMedium:
		return models.ShadeCounts{Medium: total, Total: total}
	case models.ShadeDark:
		return models.ShadeCounts{Dark: total, Total: total}
	}

	light := b.And(allowed, b.Compare(lightness, backend.GreaterEqual, cutoffs.B2))
	dark := b.And(allowed, b.Compare(lightness, backend.Less, cutoffs.B1))
	medium := b.And(allowed, b.Not(b.Or(light, dark)))

	counts := models.ShadeCounts{
		Light:  b.CountNonzero(light),
		Medium: b.CountNonzero(medium),
		Dark:   b.CountNonzero(dark),
	}
	counts.Total = counts.Light + counts.Medium + counts.Dark
	return counts
}

// mergeSmallBuckets folds a tiny dark bucket into medium, then a tiny medium
// bucket into light. Both folds use one cut computed from the total.
func mergeSmallBuckets(counts models.ShadeCounts, minShare float64) models.ShadeCounts {
	if counts.Total == 0 {
		return counts
	}
	cut := int(math.Ceil(float64(counts.Total) * minShare))

	if counts.Dark > 0 && counts.Dark < cut {
		counts.Medium += counts.Dark
		counts.Dark = 0
	}
	if counts.Medium > 0 && counts.Medium < cut {
		counts.Light += counts.Medium
		counts.Medium = 0
	}
	return counts
}

func shadePercentages(counts models.ShadeCounts) models.ShadePercentages {
	pct := func(n int) float64 {
		if counts.Total == 0 {
			return 0
		}
		return float64(n) / float64(counts.Total)
	}
	return models.ShadePercentages{
		Light:  pct(counts.Light),
		Medium: pct(counts.Medium),
		Dark:   pct(counts.Dark),
	}
}
