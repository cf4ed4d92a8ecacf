package transport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/heatmap-inspector-go/internal/config"
	apperrors "github.com/anime-shed/heatmap-inspector-go/internal/errors"
	"github.com/anime-shed/heatmap-inspector-go/internal/logger"
	"github.com/anime-shed/heatmap-inspector-go/internal/service"
	"github.com/anime-shed/heatmap-inspector-go/pkg/models"
)

// Version is reported by the health endpoint and the CLI
var Version = "1.0.0"

// NewHandler builds the HTTP surface. metrics may be nil to omit /metrics.
func NewHandler(svc service.HeatmapAnalysisService, cfg *config.Config, metrics http.Handler) http.Handler {
	r := gin.New()

	// Add middleware
	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
	)

	// Configure routes
	r.GET("/health", healthCheck(svc))
	r.POST("/analyze", analyzeHeatmap(svc, cfg))
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}
	r.NoRoute(func(c *gin.Context) {
		respondError(c, apperrors.NewNotFoundError("no such route", nil))
	})

	return r
}

func analyzeHeatmap(svc service.HeatmapAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.HeatmapRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				appErr := apperrors.NewValidationError("request body too large", err)
				appErr.StatusCode = http.StatusRequestEntityTooLarge
				respondError(c, appErr)
				return
			}
			respondError(c, apperrors.NewValidationError("invalid request format", err))
			return
		}

		analysis, err := svc.AnalyzeHeatmap(ctx, &req)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.HeatmapResponse{Heatmap: analysis})
	}
}

func healthCheck(svc service.HeatmapAnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "available",
			Version: Version,
			Backend: svc.BackendName(),
			Time:    time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":             c.Request.Method,
			"path":               c.Request.URL.Path,
			"status":             c.Writer.Status(),
			"ip":                 c.ClientIP(),
			"user_agent":         c.Request.UserAgent(),
			"processing_time_ms": time.Since(start).Milliseconds(),
		}).Info("Handled request")
	}
}

// ErrorResponse builds the wire form of a failed request
func ErrorResponse(err error) models.HeatmapResponse {
	return models.HeatmapResponse{
		Error:     apperrors.Message(err),
		ErrorKind: string(apperrors.KindOf(err)),
	}
}

func respondError(c *gin.Context, err error) {
	code := apperrors.GetStatusCode(err)

	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"error_kind":  apperrors.KindOf(err),
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Debug("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse(err))
}
