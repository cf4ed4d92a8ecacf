//go:build !opencv

package strategy

import "github.com/anime-shed/heatmap-inspector-go/internal/backend"

func newOpenCVBlurStrategy() (BlurStrategy, error) {
	return nil, backend.ErrOpenCVUnavailable
}
