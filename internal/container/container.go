package container

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/heatmap-inspector-go/internal/analyzer"
	"github.com/anime-shed/heatmap-inspector-go/internal/config"
	"github.com/anime-shed/heatmap-inspector-go/internal/factory"
	"github.com/anime-shed/heatmap-inspector-go/internal/logger"
	"github.com/anime-shed/heatmap-inspector-go/internal/observer"
	"github.com/anime-shed/heatmap-inspector-go/internal/repository"
	"github.com/anime-shed/heatmap-inspector-go/internal/service"
	"github.com/anime-shed/heatmap-inspector-go/internal/storage"
	"github.com/anime-shed/heatmap-inspector-go/internal/strategy"
	"github.com/anime-shed/heatmap-inspector-go/internal/transport"
	"github.com/anime-shed/heatmap-inspector-go/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	registry        *prometheus.Registry
	pool            *analyzer.WorkerPool
	publisher       *observer.EventPublisher
	imageRepository repository.ImageRepository
	heatmapService  service.HeatmapAnalysisService
	handler         http.Handler
}

// NewContainer wires the application. The array backend is chosen here
// once and injected; nothing downstream reads the processing agent.
func NewContainer(cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory(cfg)

	arrayBackend, err := components.BackendFactory.CreateBackend(cfg.Heatmap.ProcessingAgent, cfg.Heatmap.NeighborCounter)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend: %w", err)
	}

	blur := strategy.BlurKind(cfg.Heatmap.BlurKernel)
	if cfg.Heatmap.UsesOpenCV() && blur == strategy.BlurGaussian {
		blur = strategy.BlurOpenCV
	}
	provider, err := components.ProviderFactory.CreateProvider(blur, strategy.LightnessKind(cfg.Heatmap.Lightness))
	if err != nil {
		return nil, fmt.Errorf("failed to create channel provider: %w", err)
	}

	fetchers, err := createFetchers(components.StorageFactory, cfg)
	if err != nil {
		return nil, err
	}
	imageRepository := repository.NewImageRepository(validation.NewURLValidator(), fetchers, cfg.MaxImageBytes)

	pool := analyzer.NewWorkerPool(cfg.AnalysisWorkers)
	pool.Start()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		poolGauge("analysis_queue_depth", "Analyses waiting for a worker.", func(s analyzer.PoolStats) float64 { return float64(s.QueuedJobs) }, pool),
		poolGauge("analysis_workers_busy", "Workers currently running an analysis.", func(s analyzer.PoolStats) float64 { return float64(s.ActiveWorkers) }, pool),
	)
	metricsObserver, err := observer.NewMetricsObserver(registry)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metricsObserver)

	heatmapService := service.NewHeatmapAnalysisService(
		imageRepository,
		provider,
		analyzer.NewHeatmapAnalyzer(arrayBackend),
		pool,
		publisher,
		service.Config{
			FetchTimeout:    cfg.ImageFetchTimeout,
			AnalysisTimeout: cfg.AnalysisTimeout,
		},
	)

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
	handler := transport.NewHandler(heatmapService, cfg, metricsHandler)

	logger.WithFields(logrus.Fields{
		"backend":  arrayBackend.Name(),
		"channels": provider.Describe(),
		"workers":  cfg.AnalysisWorkers,
		"schemes":  imageRepository.Schemes(),
	}).Info("Heatmap inspector initialised")

	return &Container{
		config:          cfg,
		registry:        registry,
		pool:            pool,
		publisher:       publisher,
		imageRepository: imageRepository,
		heatmapService:  heatmapService,
		handler:         handler,
	}, nil
}

// createFetchers registers http and https always, and the object stores
// only when they are configured
func createFetchers(f factory.StorageFactory, cfg *config.Config) (map[string]storage.ImageFetcher, error) {
	web, err := f.CreateStorage(factory.HTTPStorage)
	if err != nil {
		return nil, err
	}
	fetchers := map[string]storage.ImageFetcher{
		validation.SchemeHTTP:  web,
		validation.SchemeHTTPS: web,
	}

	if cfg.Azure.Enabled() {
		azure, err := f.CreateStorage(factory.AzureStorage)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure storage: %w", err)
		}
		fetchers[validation.SchemeAzBlob] = azure
	}
	if cfg.S3.Enabled() {
		s3, err := f.CreateStorage(factory.S3Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 storage: %w", err)
		}
		fetchers[validation.SchemeS3] = s3
	}
	return fetchers, nil
}

func poolGauge(name, help string, read func(analyzer.PoolStats) float64, pool *analyzer.WorkerPool) prometheus.Collector {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "heatmap",
		Name:      name,
		Help:      help,
	}, func() float64 { return read(pool.GetStats()) })
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Service returns the heatmap analysis service
func (c *Container) Service() service.HeatmapAnalysisService {
	return c.heatmapService
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Registry returns the metrics registry
func (c *Container) Registry() *prometheus.Registry {
	return c.registry
}

// Close drains the worker pool and flushes pending events
func (c *Container) Close() {
	c.pool.Close()
	c.pool.Wait()
	c.publisher.Wait()
}
