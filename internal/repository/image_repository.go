package repository

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/anime-shed/heatmap-inspector-go/internal/storage"
	"github.com/anime-shed/heatmap-inspector-go/pkg/models"
	"github.com/anime-shed/heatmap-inspector-go/pkg/validation"
)

// SourceImageRepository resolves inline payloads and URLs to image bytes
type SourceImageRepository struct {
	validator *validation.URLValidator
	fetchers  map[string]storage.ImageFetcher
	maxBytes  int64
}

// NewImageRepository creates a repository. fetchers is keyed by lowercase URL
// scheme; schemes without a fetcher are rejected with ErrUnsupportedScheme.
func NewImageRepository(validator *validation.URLValidator, fetchers map[string]storage.ImageFetcher, maxBytes int64) *SourceImageRepository {
	if validator == nil {
		validator = validation.NewURLValidator()
	}
	registered := make(map[string]storage.ImageFetcher, len(fetchers))
	for scheme, fetcher := range fetchers {
		if fetcher != nil {
			registered[strings.ToLower(scheme)] = fetcher
		}
	}
	return &SourceImageRepository{
		validator: validator,
		fetchers:  registered,
		maxBytes:  maxBytes,
	}
}

// ResolveImage decodes pngBase64 or downloads imageUrl, whichever is present
func (r *SourceImageRepository) ResolveImage(ctx context.Context, req *models.HeatmapRequest) ([]byte, error) {
	if req == nil {
		return nil, ErrMissingImage
	}
	hasInline := req.PngBase64 != ""
	hasURL := req.ImageURL != ""

	switch {
	case hasInline && hasURL:
		return nil, ErrAmbiguousImageSource
	case hasInline:
		return r.decodeInline(req.PngBase64)
	case hasURL:
		return r.FetchImage(ctx, req.ImageURL)
	}
	return nil, ErrMissingImage
}

// FetchImage retrieves an image from a URL
func (r *SourceImageRepository) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	if err := r.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}

	parsed, _ := url.Parse(imageURL)
	scheme := strings.ToLower(parsed.Scheme)
	fetcher, ok := r.fetchers[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}

	data, err := fetcher.FetchImage(ctx, imageURL)
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, storage.ErrImageTooLarge):
		return nil, fmt.Errorf("%w: %w", ErrImageTooLarge, err)
	case errors.Is(err, storage.ErrObjectNotFound):
		return nil, fmt.Errorf("%w: %w", ErrImageNotFound, err)
	}
	return nil, fmt.Errorf("%w: %w", ErrRepositoryUnavailable, err)
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *SourceImageRepository) ValidateImageURL(imageURL string) error {
	if err := r.validator.ValidateImageURL(imageURL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidImageURL, err)
	}
	return nil
}

// Schemes lists the registered schemes in sorted order
func (r *SourceImageRepository) Schemes() []string {
	schemes := make([]string, 0, len(r.fetchers))
	for scheme := range r.fetchers {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// decodeInline accepts padded and unpadded standard base64
func (r *SourceImageRepository) decodeInline(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	if r.maxBytes > 0 && int64(len(data)) > r.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrImageTooLarge, len(data), r.maxBytes)
	}
	return data, nil
}
