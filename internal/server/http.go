package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DonAlex1897/listener-web/internal/audio"
	"github.com/DonAlex1897/listener-web/internal/config"
	"github.com/DonAlex1897/listener-web/internal/metrics"
	"github.com/DonAlex1897/listener-web/internal/session"
)

// HTTPServer exposes the recorder over an HTTP API: session control,
// WAV export, transcription, and monitoring endpoints.
type HTTPServer struct {
	server   *http.Server
	logger   *slog.Logger
	config   *config.Config
	recorder *session.Recorder
	metrics  *metrics.Metrics

	startTime time.Time
}

// NewHTTPServer creates a new HTTP API server
func NewHTTPServer(cfg config.HTTPConfig, logger *slog.Logger,
	appConfig *config.Config, recorder *session.Recorder, m *metrics.Metrics) *HTTPServer {

	h := &HTTPServer{
		logger:    logger,
		config:    appConfig,
		recorder:  recorder,
		metrics:   m,
		startTime: time.Now(),
	}

	// Create HTTP server with routes
	mux := http.NewServeMux()
	h.setupRoutes(mux)

	h.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // transcription proxies a slow upstream
		IdleTimeout:  60 * time.Second,
	}

	return h
}

// setupRoutes configures HTTP API routes
func (h *HTTPServer) setupRoutes(mux *http.ServeMux) {
	// Session control endpoints
	mux.HandleFunc("/record/start", h.withMetrics("/record/start", h.handleRecordStart))
	mux.HandleFunc("/record/stop", h.withMetrics("/record/stop", h.handleRecordStop))

	// Export and transcription endpoints
	mux.HandleFunc("/export", h.withMetrics("/export", h.handleExport))
	mux.HandleFunc("/transcribe", h.withMetrics("/transcribe", h.handleTranscribe))

	// Health check endpoint
	mux.HandleFunc("/health", h.withMetrics("/health", h.handleHealth))

	// Configuration endpoint
	mux.HandleFunc("/config", h.withMetrics("/config", h.handleConfig))

	// Statistics endpoint
	mux.HandleFunc("/stats", h.withMetrics("/stats", h.handleStats))

	// Prometheus metrics endpoint (no metrics needed for metrics endpoint)
	mux.Handle("/metrics", promhttp.Handler())

	// Root endpoint with API documentation
	mux.HandleFunc("/", h.withMetrics("/", h.handleRoot))
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		// Create a response writer wrapper to capture status code
		ww := &responseWriter{ResponseWriter: w, statusCode: 200}

		// Call the original handler
		handler(ww, r)

		// Record metrics
		duration := time.Since(startTime).Seconds()
		statusCode := fmt.Sprintf("%d", ww.statusCode)

		h.metrics.RecordHTTPRequest(r.Method, endpoint, statusCode, duration)

		// Record error if status code indicates an error
		if ww.statusCode >= 400 {
			errorType := "client_error"
			if ww.statusCode >= 500 {
				errorType = "server_error"
			}
			h.metrics.RecordHTTPError(r.Method, endpoint, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server
func (h *HTTPServer) Start() error {
	h.logger.Info("Starting HTTP API server",
		slog.String("address", h.server.Addr),
	)

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping HTTP API server...")

	return h.server.Shutdown(ctx)
}

// Handler returns the route handler for tests.
func (h *HTTPServer) Handler() http.Handler {
	return h.server.Handler
}

// parseSeconds reads the optional "seconds" query parameter. A missing or
// empty parameter returns 0, which the recorder maps to its default window.
func parseSeconds(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("seconds")
	if raw == "" {
		return 0, nil
	}

	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds parameter %q", raw)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("seconds must be positive, got %g", seconds)
	}
	return seconds, nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}

// handleRecordStart implements the POST /record/start endpoint
func (h *HTTPServer) handleRecordStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.recorder.Start(); err != nil {
		h.logger.Error("Failed to start capture session", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state":     h.recorder.State().String(),
		"timestamp": time.Now().UTC(),
	})
}

// handleRecordStop implements the POST /record/stop endpoint
func (h *HTTPServer) handleRecordStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.recorder.Stop(); err != nil {
		h.logger.Error("Failed to stop capture session", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state":     h.recorder.State().String(),
		"timestamp": time.Now().UTC(),
	})
}

// handleExport implements the GET /export endpoint. It returns the most
// recent window of retained audio as a WAV download.
func (h *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	seconds, err := parseSeconds(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.recorder.ExportLast(seconds)
	if err != nil {
		if errors.Is(err, audio.ErrInvalidConfiguration) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Export failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := fmt.Sprintf("listener_%d.wav", time.Now().Unix())
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// handleTranscribe implements the POST /transcribe endpoint. It exports
// the most recent window and relays it to the transcription endpoint.
func (h *HTTPServer) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	seconds, err := parseSeconds(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	segments, err := h.recorder.TranscribeLast(r.Context(), seconds)
	if err != nil {
		if errors.Is(err, audio.ErrInvalidConfiguration) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Transcription failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"segments":  segments,
		"timestamp": time.Now().UTC(),
	})
}

// handleHealth implements the /health endpoint
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(h.startTime)
	recorderStats := h.recorder.Stats()

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    uptime.String(),
		"service": map[string]interface{}{
			"name":    "listener-web",
			"version": "1.0.0",
		},
		"components": map[string]interface{}{
			"recorder": map[string]interface{}{
				"state":    recorderStats.State,
				"sessions": recorderStats.Sessions,
			},
			"buffer": map[string]interface{}{
				"retained_seconds": recorderStats.Buffer.RetainedSeconds,
				"retained_samples": recorderStats.Buffer.RetainedSamples,
			},
			"transcription": map[string]interface{}{
				"total_requests": recorderStats.Client.TotalRequests,
				"success_rate":   recorderStats.Client.SuccessRate,
			},
		},
	}

	writeJSON(w, http.StatusOK, health)
}

// handleConfig implements the /config endpoint
func (h *HTTPServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Return sanitized configuration (remove sensitive data)
	sanitizedConfig := map[string]interface{}{
		"http": map[string]interface{}{
			"port":    h.config.HTTP.Port,
			"address": h.config.HTTP.Address,
		},
		"capture": map[string]interface{}{
			"device":      h.config.Capture.Device,
			"sample_rate": h.config.Capture.SampleRate,
		},
		"buffer": map[string]interface{}{
			"retention_seconds":      h.config.Buffer.RetentionSeconds,
			"default_export_seconds": h.config.Buffer.DefaultExportSeconds,
		},
		"transcription": map[string]interface{}{
			"endpoint": h.config.Transcription.Endpoint,
			"timeout":  h.config.Transcription.Timeout,
			"language": h.config.Transcription.Language,
			"model":    h.config.Transcription.Model,
			// Note: API key is intentionally omitted for security
		},
		"logging": map[string]interface{}{
			"level":  h.config.Logging.Level,
			"format": h.config.Logging.Format,
			"output": h.config.Logging.Output,
		},
	}

	writeJSON(w, http.StatusOK, sanitizedConfig)
}

// handleStats implements the /stats endpoint
func (h *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(h.startTime)

	stats := map[string]interface{}{
		"uptime":    uptime.String(),
		"timestamp": time.Now().UTC(),
		"recorder":  h.recorder.Stats(),
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleRoot implements the / endpoint with API documentation
func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	apiDoc := map[string]interface{}{
		"service": "Listener Capture Service",
		"version": "1.0.0",
		"endpoints": map[string]interface{}{
			"GET /":                      "API documentation",
			"POST /record/start":         "Start a capture session",
			"POST /record/stop":          "Stop the capture session",
			"GET /export?seconds=N":      "Download the last N seconds as WAV",
			"POST /transcribe?seconds=N": "Transcribe the last N seconds",
			"GET /health":                "Service health check",
			"GET /config":                "Get service configuration",
			"GET /stats":                 "Get service statistics",
			"GET /metrics":               "Prometheus metrics",
		},
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, apiDoc)
}
