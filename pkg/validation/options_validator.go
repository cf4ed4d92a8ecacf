package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/arbovm/levenshtein"

	"github.com/anime-shed/heatmap-inspector-go/pkg/models"
)

// maxSuggestionDistance bounds how far an unknown key may be from a missing
// one before it is offered as a suggestion.
const maxSuggestionDistance = 3

// OptionIssue describes one problem with an options object
type OptionIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i OptionIssue) String() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// SummarizeIssues joins issues into a single error message
func SummarizeIssues(issues []OptionIssue) string {
	parts := make([]string, len(issues))
	for i, issue := range issues {
		parts[i] = issue.String()
	}
	return "invalid options: " + strings.Join(parts, "; ")
}

type fieldKind int

const (
	kindNumber fieldKind = iota
	kindInteger
	kindBool
)

type optionField struct {
	name     string
	kind     fieldKind
	optional bool
	setFloat func(o *models.HeatmapOptions, v float64)
	setInt   func(o *models.HeatmapOptions, v int)
	setBool  func(o *models.HeatmapOptions, v bool)
}

var scalarFields = []optionField{
	{name: "thresholdBlurSigma", kind: kindNumber, setFloat: func(o *models.HeatmapOptions, v float64) { o.ThresholdBlurSigma = v }},
	{name: "pixelStep", kind: kindInteger, setInt: func(o *models.HeatmapOptions, v int) { o.PixelStep = v }},
	{name: "minSaturation", kind: kindNumber, setFloat: func(o *models.HeatmapOptions, v float64) { o.MinSaturation = v }},
	{name: "minValue", kind: kindNumber, setFloat: func(o *models.HeatmapOptions, v float64) { o.MinValue = v }},
	{name: "greenHueMin", kind: kindNumber, setFloat: func(o *models.HeatmapOptions, v float64) { o.GreenHueMin = v }},
	{name: "greenHueMax", kind: kindNumber, setFloat: func(o *models.HeatmapOptions, v float64) { o.GreenHueMax = v }},
	{name: "redHueLowMax", kind: kindNumber, setFloat: func(o *models.HeatmapOptions, v float64) { o.RedHueLowMax = v }},
	{name: "autoTuneMinSaturation", kind: kindBool, setBool: func(o *models.HeatmapOptions, v bool) { o.AutoTuneMinSaturation = v }},
	{name: "autoTuneSPercentile", kind: kindNumber, setFloat: func(o *models.HeatmapOptions, v float64) { o.AutoTuneSPercentile = v }},
	{name: "autoTuneSMinFloor", kind: kindNumber, setFloat: func(o *models.HeatmapOptions, v float64) { o.AutoTuneSMinFloor = v }},
	{name: "collapseEps", kind: kindNumber, setFloat: func(o *models.HeatmapOptions, v float64) { o.CollapseEps = v }},
	{name: "collapseWiden", kind: kindNumber, setFloat: func(o *models.HeatmapOptions, v float64) { o.CollapseWiden = v }},
	{name: "uniformDetect", kind: kindBool, setBool: func(o *models.HeatmapOptions, v bool) { o.UniformDetect = v }},
	{name: "uniformSpreadMax", kind: kindNumber, setFloat: func(o *models.HeatmapOptions, v float64) { o.UniformSpreadMax = v }},
	{name: "uniformLightL", kind: kindNumber, setFloat: func(o *models.HeatmapOptions, v float64) { o.UniformLightL = v }},
	{name: "uniformDarkL", kind: kindNumber, setFloat: func(o *models.HeatmapOptions, v float64) { o.UniformDarkL = v }},
	{name: "neighborFilter", kind: kindBool, optional: true, setBool: func(o *models.HeatmapOptions, v bool) { o.NeighborFilter = v }},
	{name: "minShadeShare", kind: kindNumber, setFloat: func(o *models.HeatmapOptions, v float64) { o.MinShadeShare = v }},
	{name: "shadeGamma", kind: kindNumber, setFloat: func(o *models.HeatmapOptions, v float64) { o.ShadeGamma = v }},
	{name: "coverageFloor", kind: kindNumber, setFloat: func(o *models.HeatmapOptions, v float64) { o.CoverageFloor = v }},
}

const (
	fieldWeights          = "weights"
	fieldNeighborAgreeMin = "neighborAgreeMin"
)

var weightFields = []struct {
	name string
	set  func(w *models.ShadeWeights, v float64)
}{
	{"light", func(w *models.ShadeWeights, v float64) { w.Light = v }},
	{"medium", func(w *models.ShadeWeights, v float64) { w.Medium = v }},
	{"dark", func(w *models.ShadeWeights, v float64) { w.Dark = v }},
}

// knownOptionKeys lists every top-level key ParseOptions understands
func knownOptionKeys() map[string]bool {
	keys := map[string]bool{fieldWeights: true, fieldNeighborAgreeMin: true}
	for _, f := range scalarFields {
		keys[f.name] = true
	}
	return keys
}

// ParseOptions converts a raw options object into typed options. Missing
// required keys and values of the wrong JSON type are reported per field;
// range rules from ValidateOptions are applied only when parsing succeeded.
func ParseOptions(raw map[string]json.RawMessage) (models.HeatmapOptions, []OptionIssue) {
	var opts models.HeatmapOptions
	var issues []OptionIssue
	missing := func(name string) {
		issues = append(issues, OptionIssue{Field: name, Message: "required option is missing" + suggestKey(name, raw)})
	}

	for _, f := range scalarFields {
		value, ok := raw[f.name]
		if !ok {
			if !f.optional {
				missing(f.name)
			}
			continue
		}
		switch f.kind {
		case kindNumber:
			v, err := decodeNumber(value)
			if err != nil {
				issues = append(issues, OptionIssue{Field: f.name, Message: err.Error()})
				continue
			}
			f.setFloat(&opts, v)
		case kindInteger:
			v, err := decodeInteger(value)
			if err != nil {
				issues = append(issues, OptionIssue{Field: f.name, Message: err.Error()})
				continue
			}
			f.setInt(&opts, v)
		case kindBool:
			v, err := decodeBool(value)
			if err != nil {
				issues = append(issues, OptionIssue{Field: f.name, Message: err.Error()})
				continue
			}
			f.setBool(&opts, v)
		}
	}

	// neighborAgreeMin is only consulted when the filter is on
	if value, ok := raw[fieldNeighborAgreeMin]; ok {
		v, err := decodeInteger(value)
		if err != nil {
			issues = append(issues, OptionIssue{Field: fieldNeighborAgreeMin, Message: err.Error()})
		} else {
			opts.NeighborAgreeMin = v
		}
	} else if opts.NeighborFilter {
		missing(fieldNeighborAgreeMin)
	}

	if value, ok := raw[fieldWeights]; ok {
		issues = append(issues, parseWeights(value, &opts.Weights)...)
	} else {
		missing(fieldWeights)
	}

	if len(issues) > 0 {
		return opts, issues
	}
	return opts, ValidateOptions(opts)
}

func parseWeights(value json.RawMessage, weights *models.ShadeWeights) []OptionIssue {
	var obj map[string]json.RawMessage
	if isNull(value) || json.Unmarshal(value, &obj) != nil {
		return []OptionIssue{{Field: fieldWeights, Message: "must be an object with light, medium and dark"}}
	}
	var issues []OptionIssue
	for _, wf := range weightFields {
		name := fieldWeights + "." + wf.name
		v, ok := obj[wf.name]
		if !ok {
			issues = append(issues, OptionIssue{Field: name, Message: "required option is missing"})
			continue
		}
		f, err := decodeNumber(v)
		if err != nil {
			issues = append(issues, OptionIssue{Field: name, Message: err.Error()})
			continue
		}
		wf.set(weights, f)
	}
	return issues
}

// ValidateOptions applies the range rules to typed options
func ValidateOptions(o models.HeatmapOptions) []OptionIssue {
	var issues []OptionIssue
	check := func(ok bool, field, message string) {
		if !ok {
			issues = append(issues, OptionIssue{Field: field, Message: message})
		}
	}

	floats := map[string]float64{
		"thresholdBlurSigma":  o.ThresholdBlurSigma,
		"minSaturation":       o.MinSaturation,
		"minValue":            o.MinValue,
		"greenHueMin":         o.GreenHueMin,
		"greenHueMax":         o.GreenHueMax,
		"redHueLowMax":        o.RedHueLowMax,
		"autoTuneSPercentile": o.AutoTuneSPercentile,
		"autoTuneSMinFloor":   o.AutoTuneSMinFloor,
		"collapseEps":         o.CollapseEps,
		"collapseWiden":       o.CollapseWiden,
		"uniformSpreadMax":    o.UniformSpreadMax,
		"uniformLightL":       o.UniformLightL,
		"uniformDarkL":        o.UniformDarkL,
		"minShadeShare":       o.MinShadeShare,
		"shadeGamma":          o.ShadeGamma,
		"coverageFloor":       o.CoverageFloor,
		"weights.light":       o.Weights.Light,
		"weights.medium":      o.Weights.Medium,
		"weights.dark":        o.Weights.Dark,
	}
	names := make([]string, 0, len(floats))
	for name := range floats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := floats[name]
		check(!math.IsNaN(v) && !math.IsInf(v, 0), name, "must be a finite number")
	}
	if len(issues) > 0 {
		return issues
	}

	check(o.PixelStep >= 1, "pixelStep", fmt.Sprintf("must be >= 1 (got %d)", o.PixelStep))
	check(o.ThresholdBlurSigma >= 0, "thresholdBlurSigma", "must be >= 0")
	check(o.CollapseEps >= 0, "collapseEps", "must be >= 0")
	check(o.CollapseWiden >= 0, "collapseWiden", "must be >= 0")
	check(o.MinShadeShare >= 0 && o.MinShadeShare <= 1, "minShadeShare", "must be within [0, 1]")
	check(o.ShadeGamma > 0, "shadeGamma", "must be > 0")
	check(o.CoverageFloor >= 0 && o.CoverageFloor < 1, "coverageFloor", "must be within [0, 1)")
	check(o.Weights.Light > 0, "weights.light", "must be > 0")
	check(o.Weights.Medium >= o.Weights.Light, "weights.medium", "must be >= weights.light")
	check(o.Weights.Dark >= o.Weights.Medium, "weights.dark", "must be >= weights.medium")
	if o.NeighborFilter {
		check(o.NeighborAgreeMin >= 0 && o.NeighborAgreeMin <= 8, fieldNeighborAgreeMin, "must be within [0, 8]")
	}
	return issues
}

// suggestKey returns a "did you mean" hint naming the closest unknown key
func suggestKey(name string, raw map[string]json.RawMessage) string {
	known := knownOptionKeys()
	best, bestDist := "", maxSuggestionDistance+1
	for key := range raw {
		if known[key] {
			continue
		}
		d := levenshtein.Distance(strings.ToLower(name), strings.ToLower(key))
		if d < bestDist || (d == bestDist && key < best) {
			best, bestDist = key, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" (found unrecognized %q, did you mean %q?)", best, name)
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func decodeNumber(value json.RawMessage) (float64, error) {
	var v float64
	if isNull(value) || json.Unmarshal(value, &v) != nil {
		return 0, fmt.Errorf("must be a number, got %s", describeJSON(value))
	}
	return v, nil
}

func decodeInteger(value json.RawMessage) (int, error) {
	v, err := decodeNumber(value)
	if err != nil {
		return 0, fmt.Errorf("must be an integer, got %s", describeJSON(value))
	}
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, fmt.Errorf("must be an integer, got %s", describeJSON(value))
	}
	return int(v), nil
}

func decodeBool(value json.RawMessage) (bool, error) {
	var v bool
	if isNull(value) || json.Unmarshal(value, &v) != nil {
		return false, fmt.Errorf("must be a boolean, got %s", describeJSON(value))
	}
	return v, nil
}

func describeJSON(value json.RawMessage) string {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return "nothing"
	}
	switch trimmed[0] {
	case '"':
		return "a string"
	case '{':
		return "an object"
	case '[':
		return "an array"
	case 't', 'f':
		return "a boolean"
	case 'n':
		return "null"
	}
	return string(trimmed)
}
