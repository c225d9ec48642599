package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/DonAlex1897/listener-web/internal/audio"
	"github.com/DonAlex1897/listener-web/internal/capture"
	"github.com/DonAlex1897/listener-web/internal/config"
	"github.com/DonAlex1897/listener-web/internal/metrics"
	"github.com/DonAlex1897/listener-web/internal/server"
	"github.com/DonAlex1897/listener-web/internal/session"
	"github.com/DonAlex1897/listener-web/internal/transcription"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "listener-web"
	serviceVersion    = "1.0.0"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load .env overrides if present; a missing file is not an error
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger based on configuration
	logger := initLogger(cfg.Logging)

	// Log service startup
	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	// Log configuration summary (without sensitive data)
	logger.Info("Configuration loaded",
		slog.Int("http_port", cfg.HTTP.Port),
		slog.String("http_address", cfg.HTTP.Address),
		slog.String("capture_device", cfg.Capture.Device),
		slog.Int("sample_rate", cfg.Capture.SampleRate),
		slog.Float64("retention_seconds", cfg.Buffer.RetentionSeconds),
		slog.Float64("default_export_seconds", cfg.Buffer.DefaultExportSeconds),
		slog.String("transcription_endpoint", cfg.Transcription.Endpoint),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Prometheus metrics
	appMetrics := metrics.NewMetrics()
	logger.Info("Prometheus metrics initialized")

	// Create the rolling capture buffer
	ring, err := audio.NewRingBuffer(cfg.Buffer.RetentionSeconds)
	if err != nil {
		logger.Error("Failed to create rolling buffer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create the capture source
	source := capture.NewMalgoSource(capture.Config{
		Device:     cfg.Capture.Device,
		SampleRate: cfg.Capture.SampleRate,
	}, logger)

	// Create the transcription client
	transcriptionClient, err := transcription.NewClient(transcription.Config{
		Endpoint: cfg.Transcription.Endpoint,
		APIKey:   cfg.Transcription.APIKey,
		Timeout:  cfg.Transcription.GetTimeoutDuration(),
		Language: cfg.Transcription.Language,
		Model:    cfg.Transcription.Model,
	})
	if err != nil {
		logger.Error("Failed to create transcription client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create the recorder
	recorder, err := session.NewRecorder(session.Config{
		DefaultExportSeconds: cfg.Buffer.DefaultExportSeconds,
	}, ring, source, transcriptionClient, appMetrics, logger)
	if err != nil {
		logger.Error("Failed to create recorder", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Recorder initialized",
		slog.Float64("retention_seconds", cfg.Buffer.RetentionSeconds),
		slog.String("transcription_endpoint", cfg.Transcription.Endpoint),
	)

	// Initialize HTTP API server
	httpServer := server.NewHTTPServer(cfg.HTTP, logger, cfg, recorder, appMetrics)
	logger.Info("HTTP API server initialized",
		slog.String("address", fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)),
	)

	// Start HTTP server
	if err := httpServer.Start(); err != nil {
		logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...",
		slog.String("http_address", fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)),
	)

	// Wait for shutdown signal
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down")
	}

	logger.Info("Starting graceful shutdown...")

	// Stop HTTP server first (stop accepting new requests)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
	}

	// Stop the recorder (release the capture device)
	if err := recorder.Close(); err != nil {
		logger.Error("Error stopping recorder", slog.String("error", err.Error()))
	}

	// Get final statistics
	stats := recorder.Stats()
	logger.Info("Final recorder statistics",
		slog.Uint64("sessions", stats.Sessions),
		slog.Uint64("exports", stats.Exports),
		slog.Uint64("samples_appended", stats.Buffer.TotalAppended),
		slog.Uint64("transcription_requests", stats.Client.TotalRequests),
	)

	logger.Info("Service stopped")
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	// Parse log level
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo // default fallback
	}

	// Configure handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug, // Add source info for debug level
	}

	// Determine output destination
	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	// Create handler based on format
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text", "":
		handler = slog.NewTextHandler(output, opts)
	default:
		// Default to text format
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
