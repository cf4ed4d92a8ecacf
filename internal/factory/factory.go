package factory

import (
	"fmt"

	"github.com/anime-shed/heatmap-inspector-go/internal/backend"
	"github.com/anime-shed/heatmap-inspector-go/internal/channels"
	"github.com/anime-shed/heatmap-inspector-go/internal/config"
	"github.com/anime-shed/heatmap-inspector-go/internal/storage"
	"github.com/anime-shed/heatmap-inspector-go/internal/strategy"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
	// S3Storage for S3-compatible object storage
	S3Storage StorageType = "s3"
)

// BackendFactory creates array backends
type BackendFactory interface {
	CreateBackend(agent, neighborCounter string) (backend.Backend, error)
}

// ProviderFactory creates channel providers
type ProviderFactory interface {
	CreateProvider(blur strategy.BlurKind, lightness strategy.LightnessKind) (channels.ChannelProvider, error)
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
}

type backendFactory struct{}

// NewBackendFactory creates a new backend factory
func NewBackendFactory() BackendFactory {
	return &backendFactory{}
}

// CreateBackend maps a processing agent onto a backend. gpu is accepted as
// an alias of opencv.
func (f *backendFactory) CreateBackend(agent, neighborCounter string) (backend.Backend, error) {
	switch agent {
	case config.AgentCPU, "":
		counter, err := backend.ParseNeighborCounter(neighborCounter)
		if err != nil {
			return nil, err
		}
		return backend.NewCPU(counter), nil
	case config.AgentOpenCV, config.AgentGPU:
		b, err := backend.NewOpenCV()
		if err != nil {
			return nil, fmt.Errorf("processing agent %q: %w", agent, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported processing agent: %s", agent)
	}
}

type providerFactory struct{}

// NewProviderFactory creates a new provider factory
func NewProviderFactory() ProviderFactory {
	return &providerFactory{}
}

func (f *providerFactory) CreateProvider(blur strategy.BlurKind, lightness strategy.LightnessKind) (channels.ChannelProvider, error) {
	blurStrategy, err := strategy.NewBlurStrategy(blur)
	if err != nil {
		return nil, err
	}
	lightnessModel, err := strategy.NewLightnessModel(lightness)
	if err != nil {
		return nil, err
	}
	return channels.NewProvider(blurStrategy, lightnessModel), nil
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageFetcherWithConfig(storage.HTTPFetcherConfig{
			Timeout:  f.cfg.ImageFetchTimeout,
			MaxBytes: f.cfg.MaxImageBytes,
		}), nil
	case AzureStorage:
		if !f.cfg.Azure.Enabled() {
			return nil, fmt.Errorf("azure storage is not configured (set AZURE_STORAGE_ACCOUNT)")
		}
		return storage.NewAzureStorage(storage.AzureConfig{
			AccountName: f.cfg.Azure.AccountName,
			AccountKey:  f.cfg.Azure.AccountKey,
			ServiceURL:  f.cfg.Azure.ServiceURL,
			MaxBytes:    f.cfg.MaxImageBytes,
		})
	case S3Storage:
		if !f.cfg.S3.Enabled() {
			return nil, fmt.Errorf("s3 storage is not configured (set S3_ENDPOINT)")
		}
		return storage.NewS3Storage(storage.S3Config{
			Endpoint:        f.cfg.S3.Endpoint,
			AccessKeyID:     f.cfg.S3.AccessKeyID,
			SecretAccessKey: f.cfg.S3.SecretAccessKey,
			UseSSL:          f.cfg.S3.UseSSL,
			Region:          f.cfg.S3.Region,
			MaxBytes:        f.cfg.MaxImageBytes,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	BackendFactory  BackendFactory
	ProviderFactory ProviderFactory
	StorageFactory  StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		BackendFactory:  NewBackendFactory(),
		ProviderFactory: NewProviderFactory(),
		StorageFactory:  NewStorageFactory(cfg),
	}
}
