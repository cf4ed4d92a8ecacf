package analyzer

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/anime-shed/heatmap-inspector-go/internal/backend"
	"github.com/anime-shed/heatmap-inspector-go/internal/channels"
	apperrors "github.com/anime-shed/heatmap-inspector-go/internal/errors"
	"github.com/anime-shed/heatmap-inspector-go/pkg/models"
	"github.com/anime-shed/heatmap-inspector-go/pkg/validation"
)

// coreAnalyzer implements HeatmapAnalyzer on an injected array backend.
// It holds no mutable state and is safe for concurrent use.
type coreAnalyzer struct {
	backend backend.Backend
}

// NewHeatmapAnalyzer creates an analyzer running on the given backend
func NewHeatmapAnalyzer(b backend.Backend) HeatmapAnalyzer {
	return &coreAnalyzer{backend: b}
}

func (ca *coreAnalyzer) BackendName() string {
	return ca.backend.Name()
}

// ClassifyAndScore runs the two-resolution pipeline: cutoffs and forced
// shades come from the blurred channels sampled every PixelStep pixels,
// counts come from the raw channels sampled with the same stride.
func (ca *coreAnalyzer) ClassifyAndScore(px *channels.PixelChannels, opts Options) (*models.HeatmapAnalysis, error) {
	if issues := validation.ValidateOptions(opts); len(issues) > 0 {
		return nil, apperrors.NewConfigurationError(validation.SummarizeIssues(issues), nil)
	}
	if err := checkChannels(px); err != nil {
		return nil, err
	}

	b := ca.backend
	raw, blurred := px.Raw, px.Blurred
	step := opts.PixelStep

	minSaturation := tuneMinSaturation(b, blurred.Saturation, blurred.Value, blurred.Alpha, opts)

	coarse := ca.coarsePass(blurred, step, opts, minSaturation)

	greenCutoffs := estimateShadeCutoffs(b, coarse.greenLightness, opts)
	redCutoffs := estimateShadeCutoffs(b, coarse.redLightness, opts)
	forcedGreen := detectUniformShade(b, coarse.greenLightness, opts)
	forcedRed := detectUniformShade(b, coarse.redLightness, opts)

	fine := classifyFamilies(b, viewOf(raw), opts, minSaturation)
	greenMask, redMask := fine.green, fine.red
	if opts.NeighborFilter {
		greenMask = applyNeighborFilter(b, greenMask, opts.NeighborAgreeMin)
		redMask = applyNeighborFilter(b, redMask, opts.NeighborAgreeMin)
	}

	lightness := b.Subsample(raw.Lightness, step)
	greenRaw := bucketShades(b, b.SubsampleMask(greenMask, step), lightness, greenCutoffs, forcedGreen)
	redRaw := bucketShades(b, b.SubsampleMask(redMask, step), lightness, redCutoffs, forcedRed)

	green := mergeSmallBuckets(greenRaw, opts.MinShadeShare)
	red := mergeSmallBuckets(redRaw, opts.MinShadeShare)

	score, breakdown := scoreSentiment(green, red, coarse.candidates, opts)

	return &models.HeatmapAnalysis{
		Result: models.HeatmapResult{
			Counts: models.FamilyCounts{
				Green:          green,
				Red:            red,
				Neutral:        coarse.neutral,
				AnalyzedPixels: coarse.candidates,
			},
			RawCounts: models.RawFamilyCounts{Green: greenRaw, Red: redRaw},
			Percentages: models.FamilyPercentages{
				Green: shadePercentages(green),
				Red:   shadePercentages(red),
			},
			Thresholds:     models.FamilyThresholds{Green: greenCutoffs, Red: redCutoffs},
			SentimentScore: score,
		},
		Debug: models.HeatmapDebug{
			Direction:          breakdown.direction,
			Intensity:          breakdown.intensity,
			Coverage:           breakdown.coverage,
			MinSaturationTuned: minSaturation,
			ForcedGreenShade:   forcedGreen,
			ForcedRedShade:     forcedRed,
			Backend:            b.Name(),
		},
	}, nil
}

// coarsePass classifies the strided blurred channels and collects each
// family's lightness samples. Its non-neutral count is the coverage
// denominator.
func (ca *coreAnalyzer) coarsePass(blurred *channels.ChannelSet, step int, opts Options, minSaturation float64) coarseStats {
	b := ca.backend
	view := channelView{
		hue:        b.Subsample(blurred.Hue, step),
		saturation: b.Subsample(blurred.Saturation, step),
		value:      b.Subsample(blurred.Value, step),
		alpha:      b.Subsample(blurred.Alpha, step),
	}
	lightness := b.Subsample(blurred.Lightness, step)

	masks := classifyFamilies(b, view, opts, minSaturation)
	return coarseStats{
		greenLightness: b.Select(lightness, masks.green),
		redLightness:   b.Select(lightness, masks.red),
		neutral:        b.CountNonzero(masks.neutral),
		candidates:     b.CountNonzero(b.Not(masks.neutral)),
	}
}

func viewOf(cs *channels.ChannelSet) channelView {
	return channelView{
		hue:        cs.Hue,
		saturation: cs.Saturation,
		value:      cs.Value,
		alpha:      cs.Alpha,
	}
}

// checkChannels rejects missing, empty or inconsistently sized inputs
func checkChannels(px *channels.PixelChannels) error {
	if px == nil || px.Raw == nil || px.Blurred == nil {
		return apperrors.NewInternalError("pixel channels are missing", nil)
	}
	for _, cs := range []*channels.ChannelSet{px.Raw, px.Blurred} {
		if cs.Width == 0 || cs.Height == 0 {
			return apperrors.NewEmptyInputError(fmt.Sprintf("image is %dx%d", cs.Width, cs.Height), nil)
		}
	}
	if px.Raw.Width != px.Blurred.Width || px.Raw.Height != px.Blurred.Height {
		return apperrors.NewInternalError(fmt.Sprintf("raw %dx%d and blurred %dx%d channels differ in size",
			px.Raw.Width, px.Raw.Height, px.Blurred.Width, px.Blurred.Height), nil)
	}
	for _, np := range planesOf(px) {
		if np.plane == nil || np.plane.IsEmpty() {
			return apperrors.NewInternalError(np.name+" plane is missing", nil)
		}
		if rows, cols := np.plane.Dims(); rows != px.Height() || cols != px.Width() {
			return apperrors.NewInternalError(fmt.Sprintf("%s plane is %dx%d, want %dx%d", np.name, cols, rows, px.Width(), px.Height()), nil)
		}
	}
	return nil
}

type namedPlane struct {
	name  string
	plane *mat.Dense
}

func planesOf(px *channels.PixelChannels) []namedPlane {
	var planes []namedPlane
	for _, v := range []struct {
		prefix string
		cs     *channels.ChannelSet
	}{{"raw", px.Raw}, {"blurred", px.Blurred}} {
		planes = append(planes,
			namedPlane{v.prefix + " hue", v.cs.Hue},
			namedPlane{v.prefix + " saturation", v.cs.Saturation},
			namedPlane{v.prefix + " value", v.cs.Value},
			namedPlane{v.prefix + " alpha", v.cs.Alpha},
			namedPlane{v.prefix + " lightness", v.cs.Lightness},
		)
	}
	return planes
}
