package analyzer

import (
	"github.com/anime-shed/heatmap-inspector-go/internal/channels"
	"github.com/anime-shed/heatmap-inspector-go/pkg/models"
)

// HeatmapAnalyzer classifies heatmap pixels into green and red families and
// reduces them to a sentiment score
type HeatmapAnalyzer interface {
	ClassifyAndScore(px *channels.PixelChannels, opts Options) (*models.HeatmapAnalysis, error)

	// BackendName identifies the array backend the analyzer runs on
	BackendName() string
}
