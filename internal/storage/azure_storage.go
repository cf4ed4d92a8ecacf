package storage

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureConfig identifies the storage account behind azblob:// URLs
type AzureConfig struct {
	AccountName string
	AccountKey  string
	// ServiceURL overrides the public endpoint, e.g. for Azurite
	ServiceURL string
	MaxBytes   int64
}

type azureStorage struct {
	client   *azblob.Client
	maxBytes int64
}

// NewAzureStorage creates a fetcher for azblob://<container>/<blob> URLs
func NewAzureStorage(cfg AzureConfig) (ImageFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	serviceURL := cfg.ServiceURL
	if serviceURL == "" {
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net", cfg.AccountName)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	return &azureStorage{client: client, maxBytes: cfg.MaxBytes}, nil
}

func (s *azureStorage) FetchImage(ctx context.Context, blobURL string) ([]byte, error) {
	containerName, blobName, err := parseObjectURL(blobURL, "azblob")
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, containerName, blobName)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	return readLimited(resp.Body, s.maxBytes)
}
