package repository

import (
	"context"

	"github.com/anime-shed/heatmap-inspector-go/pkg/models"
)

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// ResolveImage returns the encoded image bytes a request refers to
	ResolveImage(ctx context.Context, req *models.HeatmapRequest) ([]byte, error)

	// FetchImage retrieves image bytes from a URL, dispatching on its scheme
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error

	// Schemes lists the URL schemes with a registered fetcher
	Schemes() []string
}
