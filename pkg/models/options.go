package models

// ShadeWeights weights each shade bucket when reducing a family to an
// intensity. Intensity stays within [0,1] only when Dark >= Medium >= Light > 0.
type ShadeWeights struct {
	Light  float64 `json:"light"`
	Medium float64 `json:"medium"`
	Dark   float64 `json:"dark"`
}

// HeatmapOptions is the immutable configuration for one heatmap analysis.
// Every field except NeighborFilter/NeighborAgreeMin is required on the wire.
type HeatmapOptions struct {
	ThresholdBlurSigma float64 `json:"thresholdBlurSigma"`
	PixelStep          int     `json:"pixelStep"`

	// Family gates
	MinSaturation float64 `json:"minSaturation"`
	MinValue      float64 `json:"minValue"`
	GreenHueMin   float64 `json:"greenHueMin"`
	GreenHueMax   float64 `json:"greenHueMax"`
	RedHueLowMax  float64 `json:"redHueLowMax"`

	// Saturation auto-tuning
	AutoTuneMinSaturation bool    `json:"autoTuneMinSaturation"`
	AutoTuneSPercentile   float64 `json:"autoTuneSPercentile"`
	AutoTuneSMinFloor     float64 `json:"autoTuneSMinFloor"`

	// Shade cutoffs
	CollapseEps   float64 `json:"collapseEps"`
	CollapseWiden float64 `json:"collapseWiden"`

	// Uniform override
	UniformDetect    bool    `json:"uniformDetect"`
	UniformSpreadMax float64 `json:"uniformSpreadMax"`
	UniformLightL    float64 `json:"uniformLightL"`
	UniformDarkL     float64 `json:"uniformDarkL"`

	// Neighbor filter
	NeighborFilter   bool `json:"neighborFilter"`
	NeighborAgreeMin int  `json:"neighborAgreeMin"`

	// Scoring
	MinShadeShare float64      `json:"minShadeShare"`
	ShadeGamma    float64      `json:"shadeGamma"`
	CoverageFloor float64      `json:"coverageFloor"`
	Weights       ShadeWeights `json:"weights"`
}

// DefaultHeatmapOptions returns a complete option set suitable for the CLI
// and tests. The analyzer itself never fills in defaults.
func DefaultHeatmapOptions() HeatmapOptions {
	return HeatmapOptions{
		ThresholdBlurSigma:    1.5,
		PixelStep:             2,
		MinSaturation:         0.25,
		MinValue:              0.15,
		GreenHueMin:           70,
		GreenHueMax:           170,
		RedHueLowMax:          20,
		AutoTuneMinSaturation: true,
		AutoTuneSPercentile:   0.2,
		AutoTuneSMinFloor:     0.08,
		CollapseEps:           0.02,
		CollapseWiden:         0.2,
		UniformDetect:         true,
		UniformSpreadMax:      0.08,
		UniformLightL:         0.7,
		UniformDarkL:          0.4,
		NeighborFilter:        false,
		NeighborAgreeMin:      3,
		MinShadeShare:         0.05,
		ShadeGamma:            1,
		CoverageFloor:         0,
		Weights:               ShadeWeights{Light: 1, Medium: 2, Dark: 3},
	}
}

// WithPixelStep returns a copy with a different sampling stride
func (o HeatmapOptions) WithPixelStep(step int) HeatmapOptions {
	o.PixelStep = step
	return o
}

// WithNeighborFilter returns a copy with the neighbor filter enabled
func (o HeatmapOptions) WithNeighborFilter(agreeMin int) HeatmapOptions {
	o.NeighborFilter = true
	o.NeighborAgreeMin = agreeMin
	return o
}

// WithoutAdaptiveSteps disables saturation auto-tuning and uniform detection
func (o HeatmapOptions) WithoutAdaptiveSteps() HeatmapOptions {
	o.AutoTuneMinSaturation = false
	o.UniformDetect = false
	return o
}
