package analyzer

import (
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/heatmap-inspector-go/internal/backend"
	"github.com/anime-shed/heatmap-inspector-go/internal/channels"
	apperrors "github.com/anime-shed/heatmap-inspector-go/internal/errors"
	"github.com/anime-shed/heatmap-inspector-go/pkg/models"
)

func TestNewHeatmapAnalyzer(t *testing.T) {
	a := newTestAnalyzer()
	if a == nil {
		t.Fatal("Expected non-nil analyzer")
	}
	if a.BackendName() != "cpu" {
		t.Errorf("Expected cpu backend, got %s", a.BackendName())
	}
}

func TestClassifyAndScore_PureGreenImage(t *testing.T) {
	opts := models.DefaultHeatmapOptions().WithPixelStep(1).WithoutAdaptiveSteps()
	opts.MinSaturation = 0.2
	opts.MinValue = 0.1
	px := decodeTestImage(t, createTestImage(10, 10, color.NRGBA{0, 200, 0, 255}), opts.ThresholdBlurSigma)

	analysis, err := newTestAnalyzer().ClassifyAndScore(px, opts)
	require.NoError(t, err)

	res := analysis.Result
	assert.Equal(t, 100, res.Counts.Green.Total)
	assert.Equal(t, 0, res.Counts.Red.Total)
	assert.Equal(t, 100, res.Counts.AnalyzedPixels)
	assert.Equal(t, 0, res.Counts.Neutral)
	assert.Equal(t, 1.0, analysis.Debug.Direction)

	// a single lightness value collapses the cutoffs, so everything is medium
	assert.InDelta(t, 0.2, res.Thresholds.Green.B2-res.Thresholds.Green.B1, 1e-9)
	assert.Equal(t, 100, res.Counts.Green.Medium)
	assert.Equal(t, 67, res.SentimentScore)
	assert.Equal(t, models.FamilyThresholds{
		Green: res.Thresholds.Green,
		Red:   models.ShadeCutoffs{B1: 0.45, B2: 0.7},
	}, res.Thresholds)
	assert.Equal(t, "cpu", analysis.Debug.Backend)
	assert.Equal(t, models.ShadeNone, analysis.Debug.ForcedGreenShade)
}

func TestClassifyAndScore_PureGreenDarkScoresFull(t *testing.T) {
	opts := plainOptions()
	px := createChannels(10, 10, uniform(testPixel{hue: 120, sat: 1, val: 0.8, alpha: 255, light: 0.2}))
	opts.UniformDetect = true

	analysis, err := newTestAnalyzer().ClassifyAndScore(px, opts)
	require.NoError(t, err)

	assert.Equal(t, models.ShadeDark, analysis.Debug.ForcedGreenShade)
	assert.Equal(t, 100, analysis.Result.Counts.Green.Dark)
	assert.Equal(t, 100, analysis.Result.SentimentScore)
}

func TestClassifyAndScore_GreenRedMix(t *testing.T) {
	px := createChannels(10, 10, func(x, y int) testPixel {
		if y < 6 {
			return greenPixel
		}
		return redPixel
	})

	analysis, err := newTestAnalyzer().ClassifyAndScore(px, plainOptions())
	require.NoError(t, err)

	res := analysis.Result
	assert.Equal(t, models.ShadeCounts{Medium: 60, Total: 60}, res.Counts.Green)
	assert.Equal(t, models.ShadeCounts{Medium: 40, Total: 40}, res.Counts.Red)
	assert.InDelta(t, 0.2, analysis.Debug.Direction, 1e-12)
	assert.InDelta(t, 2.0/3.0, analysis.Debug.Intensity, 1e-12)
	assert.Equal(t, int(math.RoundToEven(100*0.2*2.0/3.0)), res.SentimentScore)
	assert.Equal(t, 13, res.SentimentScore)
	assert.Equal(t, 1.0, res.Percentages.Green.Medium)
}

func TestClassifyAndScore_FullyTransparent(t *testing.T) {
	px := createChannels(8, 8, uniform(transparentPixel))

	analysis, err := newTestAnalyzer().ClassifyAndScore(px, models.DefaultHeatmapOptions())
	require.NoError(t, err)

	res := analysis.Result
	assert.Equal(t, 0, res.Counts.Green.Total)
	assert.Equal(t, 0, res.Counts.Red.Total)
	assert.Equal(t, 0, res.Counts.AnalyzedPixels)
	assert.Equal(t, 16, res.Counts.Neutral)
	assert.Equal(t, 0.0, analysis.Debug.Direction)
	assert.Equal(t, 0, res.SentimentScore)
	assert.Equal(t, models.ShadePercentages{}, res.Percentages.Green)
}

func TestClassifyAndScore_StrideKeepsDirection(t *testing.T) {
	px := createChannels(9, 7, uniform(greenPixel))

	for step := 1; step <= 5; step++ {
		analysis, err := newTestAnalyzer().ClassifyAndScore(px, models.DefaultHeatmapOptions().WithPixelStep(step))
		require.NoError(t, err)

		want := ((9 + step - 1) / step) * ((7 + step - 1) / step)
		assert.Equal(t, want, analysis.Result.Counts.Green.Total, "step %d", step)
		assert.Equal(t, 1.0, analysis.Debug.Direction, "step %d", step)
	}
}

func TestClassifyAndScore_CountsFromRawCutoffsFromBlurred(t *testing.T) {
	blurred := createChannelSet(10, 10, uniform(greenPixel))
	raw := createChannelSet(10, 10, func(x, y int) testPixel {
		if x < 5 {
			return greenPixel
		}
		return greyPixel
	})

	analysis, err := newTestAnalyzer().ClassifyAndScore(&channels.PixelChannels{Raw: raw, Blurred: blurred}, plainOptions())
	require.NoError(t, err)

	assert.Equal(t, 50, analysis.Result.Counts.Green.Total)
	assert.Equal(t, 100, analysis.Result.Counts.AnalyzedPixels)
	assert.Equal(t, 0.5, analysis.Debug.Coverage)
}

func TestClassifyAndScore_NeighborFilter(t *testing.T) {
	// a 4x4 green block plus one stray green pixel
	px := createChannels(10, 10, func(x, y int) testPixel {
		if (x >= 2 && x < 6 && y >= 2 && y < 6) || (x == 8 && y == 8) {
			return greenPixel
		}
		return greyPixel
	})

	for _, counter := range []backend.NeighborCounter{backend.NeighborConvolve, backend.NeighborShift} {
		t.Run(string(counter), func(t *testing.T) {
			a := NewHeatmapAnalyzer(backend.NewCPU(counter))

			unfiltered, err := a.ClassifyAndScore(px, plainOptions())
			require.NoError(t, err)
			filtered, err := a.ClassifyAndScore(px, plainOptions().WithNeighborFilter(3))
			require.NoError(t, err)

			assert.Equal(t, 17, unfiltered.Result.Counts.Green.Total)
			assert.Equal(t, 16, filtered.Result.Counts.Green.Total)
			// the coverage denominator comes from the unfiltered coarse pass
			assert.Equal(t, 17, filtered.Result.Counts.AnalyzedPixels)
		})
	}
}

func TestClassifyAndScore_MergeKeepsRawCounts(t *testing.T) {
	// 98 medium pixels and 2 dark ones; the dark bucket is below the 5% cut
	px := createChannels(10, 10, func(x, y int) testPixel {
		p := greenPixel
		if y == 0 && x < 2 {
			p.light = 0.05
		}
		return p
	})
	opts := plainOptions()
	opts.CollapseEps = 0

	analysis, err := newTestAnalyzer().ClassifyAndScore(px, opts)
	require.NoError(t, err)

	res := analysis.Result
	assert.Equal(t, 100, res.RawCounts.Green.Total)
	assert.Equal(t, res.RawCounts.Green.Total, res.Counts.Green.Total)
	assert.Equal(t, 0, res.Counts.Green.Dark)
	assert.Greater(t, res.RawCounts.Green.Dark, 0)
}

func TestClassifyAndScore_Errors(t *testing.T) {
	valid := createChannels(4, 4, uniform(greenPixel))
	badOpts := models.DefaultHeatmapOptions()
	badOpts.PixelStep = 0

	mismatched := &channels.PixelChannels{
		Raw:     createChannelSet(4, 4, uniform(greenPixel)),
		Blurred: createChannelSet(5, 4, uniform(greenPixel)),
	}
	missingPlane := createChannels(4, 4, uniform(greenPixel))
	missingPlane.Raw = createChannelSet(4, 4, uniform(greenPixel))
	missingPlane.Raw.Lightness = nil

	tests := []struct {
		name string
		px   *channels.PixelChannels
		opts Options
		kind apperrors.ErrorType
	}{
		{"invalid options", valid, badOpts, apperrors.ErrorTypeConfiguration},
		{"zero sized", createChannels(0, 3, uniform(greenPixel)), models.DefaultHeatmapOptions(), apperrors.ErrorTypeEmptyInput},
		{"nil channels", nil, models.DefaultHeatmapOptions(), apperrors.ErrorTypeInternal},
		{"mismatched sizes", mismatched, models.DefaultHeatmapOptions(), apperrors.ErrorTypeInternal},
		{"missing plane", missingPlane, models.DefaultHeatmapOptions(), apperrors.ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestAnalyzer().ClassifyAndScore(tt.px, tt.opts)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))
		})
	}
}

func TestClassifyAndScore_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	a := newTestAnalyzer()

	for trial := 0; trial < 25; trial++ {
		w, h := 5+rng.Intn(30), 5+rng.Intn(30)
		raw := createChannelSet(w, h, randomPixel(rng))
		blurred := createChannelSet(w, h, randomPixel(rng))

		opts := models.DefaultHeatmapOptions().WithPixelStep(1 + rng.Intn(3))
		opts.NeighborFilter = rng.Intn(2) == 0
		opts.NeighborAgreeMin = rng.Intn(5)
		opts.ShadeGamma = 0.5 + rng.Float64()*2
		opts.CoverageFloor = rng.Float64() * 0.5
		opts.MinShadeShare = rng.Float64() * 0.3
		opts.Weights = models.ShadeWeights{Light: 1, Medium: 1 + rng.Float64(), Dark: 3 + rng.Float64()}

		analysis, err := a.ClassifyAndScore(&channels.PixelChannels{Raw: raw, Blurred: blurred}, opts)
		require.NoError(t, err)

		res := analysis.Result
		assert.GreaterOrEqual(t, res.SentimentScore, -100, "trial %d", trial)
		assert.LessOrEqual(t, res.SentimentScore, 100, "trial %d", trial)
		assert.Equal(t, res.RawCounts.Green.Total, res.Counts.Green.Total, "trial %d", trial)
		assert.Equal(t, res.RawCounts.Red.Total, res.Counts.Red.Total, "trial %d", trial)

		coarse := ((w + opts.PixelStep - 1) / opts.PixelStep) * ((h + opts.PixelStep - 1) / opts.PixelStep)
		assert.Equal(t, coarse, res.Counts.Neutral+res.Counts.AnalyzedPixels, "trial %d", trial)
		for _, c := range []models.ShadeCounts{res.Counts.Green, res.Counts.Red, res.RawCounts.Green, res.RawCounts.Red} {
			assert.Equal(t, c.Total, c.Light+c.Medium+c.Dark, "trial %d", trial)
		}
	}
}

func randomPixel(rng *rand.Rand) func(x, y int) testPixel {
	return func(int, int) testPixel {
		return testPixel{
			hue:   float64(rng.Intn(360)),
			sat:   rng.Float64(),
			val:   rng.Float64(),
			alpha: float64(rng.Intn(256)),
			light: rng.Float64(),
		}
	}
}
