package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/anime-shed/heatmap-inspector-go/internal/config"
	"github.com/anime-shed/heatmap-inspector-go/internal/container"
	"github.com/anime-shed/heatmap-inspector-go/internal/logger"
	"github.com/anime-shed/heatmap-inspector-go/internal/transport"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	// Initialize dependency injection container
	c, err := container.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer c.Close()

	// Wait for interrupt signal to gracefully shutdown the server
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := transport.Serve(ctx, cfg, c.Handler()); err != nil {
		logger.WithError(err).Error("Server stopped with error")
		os.Exit(1)
	}
}
