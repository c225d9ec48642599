// Package metrics defines the Prometheus metrics for the listener capture
// service, covering the capture path, the rolling buffer, exports, and
// transcription uploads.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the listener capture service
type Metrics struct {
	// Capture metrics
	ChunksAppended  prometheus.Counter
	SamplesAppended prometheus.Counter
	SamplesRetained prometheus.Gauge
	RetainedSeconds prometheus.Gauge

	// Session metrics
	SessionsStarted prometheus.Counter
	SessionsStopped prometheus.Counter
	SessionDuration prometheus.Histogram

	// Export metrics
	Exports        prometheus.Counter
	ExportWindow   prometheus.Histogram
	ExportSamples  prometheus.Histogram
	EncodeDuration prometheus.Histogram

	// Transcription metrics
	TranscriptionRequests  prometheus.Counter
	TranscriptionSuccesses prometheus.Counter
	TranscriptionFailures  prometheus.Counter
	TranscriptionDuration  prometheus.Histogram

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Capture metrics
		ChunksAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "listener_chunks_appended_total",
			Help: "Total number of audio chunks appended to the rolling buffer",
		}),
		SamplesAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "listener_samples_appended_total",
			Help: "Total number of audio samples appended to the rolling buffer",
		}),
		SamplesRetained: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "listener_samples_retained",
			Help: "Current number of samples retained in the rolling buffer",
		}),
		RetainedSeconds: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "listener_retained_seconds",
			Help: "Current duration of audio retained in the rolling buffer",
		}),

		// Session metrics
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "listener_sessions_started_total",
			Help: "Total number of capture sessions started",
		}),
		SessionsStopped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "listener_sessions_stopped_total",
			Help: "Total number of capture sessions stopped",
		}),
		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "listener_session_duration_seconds",
			Help:    "Duration of capture sessions in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~1 hour
		}),

		// Export metrics
		Exports: promauto.NewCounter(prometheus.CounterOpts{
			Name: "listener_exports_total",
			Help: "Total number of buffer exports encoded to WAV",
		}),
		ExportWindow: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "listener_export_window_seconds",
			Help:    "Requested export window in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8), // 1s to ~2 minutes
		}),
		ExportSamples: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "listener_export_samples",
			Help:    "Number of samples in exported snapshots",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8), // 1K to ~16M samples
		}),
		EncodeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "listener_encode_duration_seconds",
			Help:    "Time spent encoding snapshots to WAV",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8), // 100us to ~27min
		}),

		// Transcription metrics
		TranscriptionRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "listener_transcription_requests_total",
			Help: "Total number of transcription requests sent",
		}),
		TranscriptionSuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "listener_transcription_successes_total",
			Help: "Total number of successful transcription requests",
		}),
		TranscriptionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "listener_transcription_failures_total",
			Help: "Total number of failed transcription requests",
		}),
		TranscriptionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "listener_transcription_duration_seconds",
			Help:    "Duration of transcription requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~2 minutes
		}),

		// HTTP API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "listener_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "listener_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "listener_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordChunkAppended records one appended chunk and the resulting buffer state
func (m *Metrics) RecordChunkAppended(samples, retained int, retainedSeconds float64) {
	m.ChunksAppended.Inc()
	m.SamplesAppended.Add(float64(samples))
	m.SamplesRetained.Set(float64(retained))
	m.RetainedSeconds.Set(retainedSeconds)
}

// RecordSessionStarted increments the sessions started counter and resets gauges
func (m *Metrics) RecordSessionStarted() {
	m.SessionsStarted.Inc()
	m.SamplesRetained.Set(0)
	m.RetainedSeconds.Set(0)
}

// RecordSessionStopped increments the sessions stopped counter and records duration
func (m *Metrics) RecordSessionStopped(durationSeconds float64) {
	m.SessionsStopped.Inc()
	m.SessionDuration.Observe(durationSeconds)
}

// RecordExport records an encoded export
func (m *Metrics) RecordExport(windowSeconds float64, samples int, encodeSeconds float64) {
	m.Exports.Inc()
	m.ExportWindow.Observe(windowSeconds)
	m.ExportSamples.Observe(float64(samples))
	m.EncodeDuration.Observe(encodeSeconds)
}

// RecordTranscriptionRequest increments transcription requests counter
func (m *Metrics) RecordTranscriptionRequest() {
	m.TranscriptionRequests.Inc()
}

// RecordTranscriptionSuccess records a successful transcription
func (m *Metrics) RecordTranscriptionSuccess(durationSeconds float64) {
	m.TranscriptionSuccesses.Inc()
	m.TranscriptionDuration.Observe(durationSeconds)
}

// RecordTranscriptionFailure records a failed transcription
func (m *Metrics) RecordTranscriptionFailure(durationSeconds float64) {
	m.TranscriptionFailures.Inc()
	m.TranscriptionDuration.Observe(durationSeconds)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
