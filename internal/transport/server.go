package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/heatmap-inspector-go/internal/config"
	"github.com/anime-shed/heatmap-inspector-go/internal/logger"
)

const shutdownTimeout = 30 * time.Second

// Serve runs the HTTP server until ctx ends, then shuts it down gracefully
func Serve(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	listener, err := net.Listen("tcp", cfg.ServerAddress())
	if err != nil {
		return err
	}
	return ServeListener(ctx, listener, cfg, handler)
}

// ServeListener is Serve on an existing listener
func ServeListener(ctx context.Context, listener net.Listener, cfg *config.Config, handler http.Handler) error {
	server := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout + time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"address": listener.Addr().String(),
			"timeout": cfg.RequestTimeout,
		}).Info("Starting HTTP server")

		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Server exited")
	return nil
}
