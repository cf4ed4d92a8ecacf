package models

import (
	"encoding/json"
	"fmt"
)

// Family identifies one of the two opposing colour classes, or neutral.
type Family string

const (
	FamilyGreen   Family = "green"
	FamilyRed     Family = "red"
	FamilyNeutral Family = "neutral"
)

// Shade is one of the three brightness buckets. The zero value means "no
// shade" and serialises as JSON null.
type Shade string

const (
	ShadeNone   Shade = ""
	ShadeLight  Shade = "light"
	ShadeMedium Shade = "medium"
	ShadeDark   Shade = "dark"
)

// MarshalJSON encodes ShadeNone as null
func (s Shade) MarshalJSON() ([]byte, error) {
	if s == ShadeNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

// UnmarshalJSON accepts null or one of the shade names
func (s *Shade) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ShadeNone
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch Shade(raw) {
	case ShadeLight, ShadeMedium, ShadeDark:
		*s = Shade(raw)
		return nil
	}
	return fmt.Errorf("unknown shade %q", raw)
}

// ShadeCounts holds per-bucket pixel counts for one family. Total is the sum
// of the three buckets and is preserved by bucket merging.
type ShadeCounts struct {
	Light  int `json:"light"`
	Medium int `json:"medium"`
	Dark   int `json:"dark"`
	Total  int `json:"total"`
}

// FamilyCounts is the post-merge count block of a result
type FamilyCounts struct {
	Green          ShadeCounts `json:"green"`
	Red            ShadeCounts `json:"red"`
	Neutral        int         `json:"neutral"`
	AnalyzedPixels int         `json:"analyzedPixels"`
}

// RawFamilyCounts is the pre-merge snapshot
type RawFamilyCounts struct {
	Green ShadeCounts `json:"green"`
	Red   ShadeCounts `json:"red"`
}

// ShadePercentages are counts divided by the family total (0 when empty)
type ShadePercentages struct {
	Light  float64 `json:"light"`
	Medium float64 `json:"medium"`
	Dark   float64 `json:"dark"`
}

// FamilyPercentages holds percentages for both families
type FamilyPercentages struct {
	Green ShadePercentages `json:"green"`
	Red   ShadePercentages `json:"red"`
}

// ShadeCutoffs partitions lightness into dark (< B1), medium ([B1, B2)) and
// light (>= B2).
type ShadeCutoffs struct {
	B1 float64 `json:"b1"`
	B2 float64 `json:"b2"`
}

// FamilyThresholds holds the cutoffs of both families
type FamilyThresholds struct {
	Green ShadeCutoffs `json:"green"`
	Red   ShadeCutoffs `json:"red"`
}

// HeatmapResult is the reported outcome of one analysis
type HeatmapResult struct {
	Counts         FamilyCounts      `json:"counts"`
	RawCounts      RawFamilyCounts   `json:"rawCounts"`
	Percentages    FamilyPercentages `json:"percentages"`
	Thresholds     FamilyThresholds  `json:"thresholds"`
	SentimentScore int               `json:"sentimentScore"`
}

// HeatmapDebug carries the intermediate values behind the score
type HeatmapDebug struct {
	Direction          float64 `json:"direction"`
	Intensity          float64 `json:"intensity"`
	Coverage           float64 `json:"coverage"`
	MinSaturationTuned float64 `json:"minSaturationTuned"`
	ForcedGreenShade   Shade   `json:"forcedGreenShade"`
	ForcedRedShade     Shade   `json:"forcedRedShade"`
	Backend            string  `json:"backend"`
}

// HeatmapAnalysis pairs a result with its diagnostics
type HeatmapAnalysis struct {
	Result HeatmapResult `json:"result"`
	Debug  HeatmapDebug  `json:"debug"`
}
