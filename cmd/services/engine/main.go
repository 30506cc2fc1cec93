package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gridcast/gridcast/internal/config"
	"github.com/gridcast/gridcast/internal/events"
	"github.com/gridcast/gridcast/internal/logging"
	"github.com/gridcast/gridcast/internal/pipeline"
	"github.com/gridcast/gridcast/internal/router"
	"github.com/gridcast/gridcast/internal/source"
	"github.com/gridcast/gridcast/internal/store"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Engine starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	// Connect to store
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := store.New(ctx, cfg.Store)
	cancel()
	if err != nil {
		logger.Fatal("Failed to connect to store", "error", err, "type", cfg.Store.Type)
	}
	defer st.Close()
	logger.Info("Store connection established", "type", cfg.Store.Type)

	// Connect to events broker
	publisher, err := events.NewPublisher(cfg.Events)
	if err != nil {
		logger.Fatal("Failed to connect to events broker", "error", err, "type", cfg.Events.Type)
	}
	defer func() { _ = publisher.Close() }()
	if cfg.Events.Type != "" && cfg.Events.Type != "none" {
		logger.Info("Events publisher connected", "type", cfg.Events.Type)
	}

	// Data source and pipeline
	src := source.NewEIAClient(cfg.Source.BaseURL, cfg.Source.APIKey, cfg.Source.Sector, cfg.Source.Timeout)
	orc := pipeline.New(st, src, publisher, logger, cfg.Pipeline)

	// Log authentication status
	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	// Initialize router
	app := router.New(logger, st, orc, *cfg)

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort)
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}

	logger.Info("Engine stopped")
}
