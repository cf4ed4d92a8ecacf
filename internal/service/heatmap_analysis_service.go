package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/heatmap-inspector-go/internal/analyzer"
	"github.com/anime-shed/heatmap-inspector-go/internal/channels"
	apperrors "github.com/anime-shed/heatmap-inspector-go/internal/errors"
	"github.com/anime-shed/heatmap-inspector-go/internal/logger"
	"github.com/anime-shed/heatmap-inspector-go/internal/observer"
	"github.com/anime-shed/heatmap-inspector-go/internal/repository"
	"github.com/anime-shed/heatmap-inspector-go/pkg/models"
	"github.com/anime-shed/heatmap-inspector-go/pkg/validation"
)

// HeatmapAnalysisService defines the request-level heatmap operations
type HeatmapAnalysisService interface {
	// AnalyzeHeatmap resolves the request's image, parses its options and
	// scores the heatmap
	AnalyzeHeatmap(ctx context.Context, req *models.HeatmapRequest) (*models.HeatmapAnalysis, error)

	// AnalyzeImageBytes scores already-loaded image bytes with typed options
	AnalyzeImageBytes(ctx context.Context, data []byte, opts models.HeatmapOptions) (*models.HeatmapAnalysis, error)

	// BackendName reports the array backend in use
	BackendName() string
}

// Config bounds the two blocking phases of a request
type Config struct {
	FetchTimeout    time.Duration
	AnalysisTimeout time.Duration
}

type heatmapAnalysisService struct {
	imageRepo repository.ImageRepository
	provider  channels.ChannelProvider
	analyzer  analyzer.HeatmapAnalyzer
	pool      *analyzer.WorkerPool
	events    observer.Subject
	cfg       Config
}

// NewHeatmapAnalysisService creates the service. pool must be started by the
// caller; events may be nil.
func NewHeatmapAnalysisService(
	imageRepository repository.ImageRepository,
	provider channels.ChannelProvider,
	heatmapAnalyzer analyzer.HeatmapAnalyzer,
	pool *analyzer.WorkerPool,
	events observer.Subject,
	cfg Config,
) HeatmapAnalysisService {
	return &heatmapAnalysisService{
		imageRepo: imageRepository,
		provider:  provider,
		analyzer:  heatmapAnalyzer,
		pool:      pool,
		events:    events,
		cfg:       cfg,
	}
}

func (s *heatmapAnalysisService) BackendName() string {
	return s.analyzer.BackendName()
}

// AnalyzeHeatmap handles one wire request
func (s *heatmapAnalysisService) AnalyzeHeatmap(ctx context.Context, req *models.HeatmapRequest) (*models.HeatmapAnalysis, error) {
	requestID := uuid.NewString()
	source := sourceOf(req)
	start := time.Now()
	log := logger.WithFields(logrus.Fields{"request_id": requestID, "source": source})

	s.publish(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, RequestID: requestID, Source: source})

	analysis, err := s.analyzeRequest(ctx, requestID, source, req)
	elapsed := time.Since(start)
	if err != nil {
		log.WithFields(logrus.Fields{
			"error_kind":      apperrors.KindOf(err),
			"processing_time": elapsed,
		}).WithError(err).Warn("Heatmap request failed")
		s.publish(ctx, observer.AnalysisEvent{
			EventType:      observer.AnalysisFailed,
			RequestID:      requestID,
			Source:         source,
			ProcessingTime: elapsed,
			ErrorKind:      string(apperrors.KindOf(err)),
			ErrorMessage:   apperrors.Message(err),
		})
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"sentiment_score": analysis.Result.SentimentScore,
		"processing_time": elapsed,
	}).Debug("Heatmap request completed")
	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		RequestID:      requestID,
		Source:         source,
		ProcessingTime: elapsed,
		Success:        true,
		SentimentScore: analysis.Result.SentimentScore,
	})
	return analysis, nil
}

func (s *heatmapAnalysisService) analyzeRequest(ctx context.Context, requestID, source string, req *models.HeatmapRequest) (*models.HeatmapAnalysis, error) {
	if req == nil {
		return nil, apperrors.NewValidationError("request body is required", nil)
	}

	opts, issues := validation.ParseOptions(req.Options)
	if len(issues) > 0 {
		return nil, apperrors.NewConfigurationError(validation.SummarizeIssues(issues), nil)
	}

	data, err := s.resolveImage(ctx, req)
	if err != nil {
		s.publish(ctx, observer.AnalysisEvent{
			EventType:    observer.ImageFetchFailed,
			RequestID:    requestID,
			Source:       source,
			ErrorKind:    string(apperrors.KindOf(err)),
			ErrorMessage: apperrors.Message(err),
		})
		return nil, err
	}
	s.publish(ctx, observer.AnalysisEvent{
		EventType: observer.ImageFetched,
		RequestID: requestID,
		Source:    source,
		Success:   true,
		Metadata:  map[string]interface{}{"image_bytes": len(data)},
	})

	return s.analyze(ctx, data, opts)
}

// AnalyzeImageBytes scores data with already-typed options
func (s *heatmapAnalysisService) AnalyzeImageBytes(ctx context.Context, data []byte, opts models.HeatmapOptions) (*models.HeatmapAnalysis, error) {
	if issues := validation.ValidateOptions(opts); len(issues) > 0 {
		return nil, apperrors.NewConfigurationError(validation.SummarizeIssues(issues), nil)
	}
	return s.analyze(ctx, data, opts)
}

func (s *heatmapAnalysisService) resolveImage(ctx context.Context, req *models.HeatmapRequest) ([]byte, error) {
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}

	data, err := s.imageRepo.ResolveImage(ctx, req)
	if err != nil {
		return nil, sourceError(err)
	}
	return data, nil
}

// analyze decodes and scores on the worker pool, bounded by AnalysisTimeout.
// A job still running when the deadline passes finishes in the background
// and its result is dropped.
func (s *heatmapAnalysisService) analyze(ctx context.Context, data []byte, opts models.HeatmapOptions) (*models.HeatmapAnalysis, error) {
	if s.cfg.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.AnalysisTimeout)
		defer cancel()
	}

	type outcome struct {
		analysis *models.HeatmapAnalysis
		err      error
	}
	// buffered so an abandoned job never blocks its worker
	result := make(chan outcome, 1)

	err := s.pool.Run(ctx, func() {
		defer func() {
			if r := recover(); r != nil {
				result <- outcome{err: apperrors.NewInternalError(fmt.Sprintf("analysis panicked: %v", r), nil)}
			}
		}()
		px, err := s.provider.Decode(data, opts.ThresholdBlurSigma)
		if err != nil {
			result <- outcome{err: err}
			return
		}
		analysis, err := s.analyzer.ClassifyAndScore(px, opts)
		result <- outcome{analysis: analysis, err: err}
	})
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return nil, apperrors.NewTimeoutError(fmt.Sprintf("analysis exceeded %s", s.cfg.AnalysisTimeout), nil)
	case errors.Is(err, context.Canceled):
		return nil, apperrors.NewTimeoutError("request cancelled", err)
	case errors.Is(err, analyzer.ErrPoolClosed):
		return nil, apperrors.NewInternalError("service is shutting down", err)
	case err != nil:
		return nil, apperrors.NewInternalError("failed to schedule analysis", err)
	}

	out := <-result
	if out.err != nil {
		var appErr *apperrors.AppError
		if errors.As(out.err, &appErr) {
			return nil, out.err
		}
		return nil, apperrors.NewInternalError("analysis failed", out.err)
	}
	return out.analysis, nil
}

func (s *heatmapAnalysisService) publish(ctx context.Context, event observer.AnalysisEvent) {
	if s.events == nil {
		return
	}
	s.events.NotifyObservers(ctx, event)
}

// sourceError maps repository failures onto error kinds
func sourceError(err error) error {
	switch {
	case errors.Is(err, repository.ErrMissingImage),
		errors.Is(err, repository.ErrAmbiguousImageSource):
		return apperrors.NewValidationError(err.Error(), nil)
	case errors.Is(err, repository.ErrInvalidImageURL),
		errors.Is(err, repository.ErrUnsupportedScheme),
		errors.Is(err, repository.ErrImageTooLarge):
		return apperrors.NewValidationError("unusable image source", err)
	case errors.Is(err, repository.ErrInvalidBase64):
		return apperrors.NewDecodeError("invalid pngBase64 payload", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("image fetch timed out", err)
	case errors.Is(err, repository.ErrImageNotFound):
		return apperrors.NewNetworkError("image not found", err)
	}
	return apperrors.NewNetworkError("failed to fetch image", err)
}

// sourceOf labels a request by where its image comes from
func sourceOf(req *models.HeatmapRequest) string {
	switch {
	case req == nil:
		return "none"
	case req.PngBase64 != "" && req.ImageURL != "":
		return "ambiguous"
	case req.PngBase64 != "":
		return "inline"
	case req.ImageURL != "":
		if parsed, err := url.Parse(req.ImageURL); err == nil {
			switch scheme := strings.ToLower(parsed.Scheme); scheme {
			case validation.SchemeHTTP, validation.SchemeHTTPS, validation.SchemeAzBlob, validation.SchemeS3:
				return scheme
			}
		}
		return "url"
	}
	return "none"
}
