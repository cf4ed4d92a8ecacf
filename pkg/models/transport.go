package models

import "encoding/json"

// HeatmapRequest is one analysis request, as read from a stream line or an
// HTTP body. Exactly one of PngBase64 and ImageURL must be set.
type HeatmapRequest struct {
	PngBase64 string `json:"pngBase64,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`

	// Options is kept raw so missing keys and wrong types can be reported
	// per field instead of failing the whole decode.
	Options map[string]json.RawMessage `json:"options,omitempty"`
}

// HeatmapResponse is written for every request: either Heatmap or Error is set
type HeatmapResponse struct {
	Heatmap   *HeatmapAnalysis `json:"heatmap,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorKind string           `json:"errorKind,omitempty"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Backend string `json:"backend"`
	Time    string `json:"time"`
}
