package repository

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/heatmap-inspector-go/internal/storage"
	"github.com/anime-shed/heatmap-inspector-go/pkg/models"
)

type fakeFetcher struct {
	data  []byte
	err   error
	calls []string
}

func (f *fakeFetcher) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	f.calls = append(f.calls, imageURL)
	return f.data, f.err
}

func TestResolveImage_InlineBase64(t *testing.T) {
	payload := []byte("\x89PNG fake")
	repo := NewImageRepository(nil, nil, 0)

	tests := []struct {
		name    string
		encoded string
	}{
		{"padded", base64.StdEncoding.EncodeToString(payload)},
		{"unpadded", base64.RawStdEncoding.EncodeToString(payload)},
		{"surrounding whitespace", "  " + base64.StdEncoding.EncodeToString(payload) + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := repo.ResolveImage(context.Background(), &models.HeatmapRequest{PngBase64: tt.encoded})
			require.NoError(t, err)
			assert.Equal(t, payload, data)
		})
	}
}

func TestResolveImage_SourceErrors(t *testing.T) {
	repo := NewImageRepository(nil, map[string]storage.ImageFetcher{"https": &fakeFetcher{}}, 4)

	tests := []struct {
		name string
		req  *models.HeatmapRequest
		want error
	}{
		{"nil request", nil, ErrMissingImage},
		{"no source", &models.HeatmapRequest{}, ErrMissingImage},
		{"both sources", &models.HeatmapRequest{PngBase64: "AAAA", ImageURL: "https://example.com/a.png"}, ErrAmbiguousImageSource},
		{"bad base64", &models.HeatmapRequest{PngBase64: "!!!not base64!!!"}, ErrInvalidBase64},
		{"inline too large", &models.HeatmapRequest{PngBase64: base64.StdEncoding.EncodeToString([]byte("12345"))}, ErrImageTooLarge},
		{"invalid url", &models.HeatmapRequest{ImageURL: "ftp://example.com/a.png"}, ErrInvalidImageURL},
		{"unregistered scheme", &models.HeatmapRequest{ImageURL: "s3://bucket/a.png"}, ErrUnsupportedScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.ResolveImage(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFetchImage_DispatchesByScheme(t *testing.T) {
	web := &fakeFetcher{data: []byte("web")}
	s3 := &fakeFetcher{data: []byte("s3")}
	repo := NewImageRepository(nil, map[string]storage.ImageFetcher{
		"http":  web,
		"https": web,
		"s3":    s3,
	}, 0)

	data, err := repo.FetchImage(context.Background(), "s3://heatmaps/chart.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("s3"), data)

	data, err = repo.FetchImage(context.Background(), "https://example.com/chart.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("web"), data)

	assert.Equal(t, []string{"s3://heatmaps/chart.png"}, s3.calls)
	assert.Equal(t, []string{"http", "https", "s3"}, repo.Schemes())
}

func TestFetchImage_MapsStorageErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", fmt.Errorf("%w: bucket/key", storage.ErrObjectNotFound), ErrImageNotFound},
		{"too large", fmt.Errorf("%w: 10 bytes", storage.ErrImageTooLarge), ErrImageTooLarge},
		{"other", errors.New("connection refused"), ErrRepositoryUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewImageRepository(nil, map[string]storage.ImageFetcher{"https": &fakeFetcher{err: tt.err}}, 0)
			_, err := repo.FetchImage(context.Background(), "https://example.com/a.png")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewImageRepository_SkipsNilFetchers(t *testing.T) {
	repo := NewImageRepository(nil, map[string]storage.ImageFetcher{"azblob": nil, "HTTPS": &fakeFetcher{}}, 0)
	assert.Equal(t, []string{"https"}, repo.Schemes())
}
