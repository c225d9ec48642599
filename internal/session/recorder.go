package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DonAlex1897/listener-web/internal/audio"
	"github.com/DonAlex1897/listener-web/internal/capture"
	"github.com/DonAlex1897/listener-web/internal/metrics"
	"github.com/DonAlex1897/listener-web/internal/transcription"
)

// State describes the recorder lifecycle.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateStopped
)

// String returns the state name for logs and the stats endpoint.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config contains recorder configuration
type Config struct {
	DefaultExportSeconds float64 // export window used when the caller does not name one
}

// Recorder owns one capture pipeline: device callbacks feed the rolling
// buffer, and exports cut WAV files from whatever the buffer retains.
type Recorder struct {
	config Config

	ring   *audio.RingBuffer
	source capture.Source
	client *transcription.Client

	logger  *slog.Logger
	metrics *metrics.Metrics

	mu           sync.Mutex
	state        State
	sessionStart time.Time
	sessionCount uint64
	exportCount  uint64
}

// Stats is a point-in-time view of the recorder for the stats endpoint.
type Stats struct {
	State        string                    `json:"state"`
	Sessions     uint64                    `json:"sessions"`
	Exports      uint64                    `json:"exports"`
	SessionStart *time.Time                `json:"session_start,omitempty"`
	Buffer       audio.RingStats           `json:"buffer"`
	Client       transcription.ClientStats `json:"transcription_client"`
}

// NewRecorder creates a recorder over an already constructed buffer,
// capture source and transcription client.
func NewRecorder(config Config, ring *audio.RingBuffer, source capture.Source, client *transcription.Client, m *metrics.Metrics, logger *slog.Logger) (*Recorder, error) {
	if ring == nil {
		return nil, fmt.Errorf("ring buffer cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("capture source cannot be nil")
	}
	if client == nil {
		return nil, fmt.Errorf("transcription client cannot be nil")
	}
	if config.DefaultExportSeconds <= 0 {
		return nil, fmt.Errorf("default export window must be positive, got %g: %w",
			config.DefaultExportSeconds, audio.ErrInvalidConfiguration)
	}

	return &Recorder{
		config:  config,
		ring:    ring,
		source:  source,
		client:  client,
		logger:  logger,
		metrics: m,
		state:   StateIdle,
	}, nil
}

// Start begins a capture session. The buffer is reset to empty even when a
// session is already running, so a second Start acts as a fresh session on
// the same open device.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sampleRate := r.source.SampleRate()
	if err := r.ring.Start(sampleRate); err != nil {
		return fmt.Errorf("failed to start buffer: %w", err)
	}

	if r.state != StateRecording {
		if err := r.source.Open(r.onChunk); err != nil {
			return fmt.Errorf("failed to open capture source: %w", err)
		}
		if err := r.source.Start(); err != nil {
			_ = r.source.Close()
			return fmt.Errorf("failed to start capture source: %w", err)
		}
	}

	r.state = StateRecording
	r.sessionStart = time.Now()
	r.sessionCount++
	r.metrics.RecordSessionStarted()

	r.logger.Info("Capture session started",
		slog.Int("sample_rate", sampleRate),
		slog.Float64("retention_seconds", r.ring.RetentionSeconds()),
		slog.Uint64("session", r.sessionCount))

	return nil
}

// Stop ends the capture session and releases the device. Stopping an idle
// or already stopped recorder is a no-op; retained samples stay available
// for export until the next Start.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRecording {
		return nil
	}

	if err := r.source.Stop(); err != nil {
		r.logger.Warn("Failed to stop capture source", slog.String("error", err.Error()))
	}
	if err := r.source.Close(); err != nil {
		r.logger.Warn("Failed to close capture source", slog.String("error", err.Error()))
	}

	duration := time.Since(r.sessionStart)
	r.state = StateStopped
	r.metrics.RecordSessionStopped(duration.Seconds())

	r.logger.Info("Capture session stopped",
		slog.Duration("duration", duration),
		slog.Float64("retained_seconds", r.ring.RetainedDuration()))

	return nil
}

// ExportLast encodes the most recent seconds of retained audio as a WAV
// file. Zero or negative seconds selects the configured default window.
// The window saturates at what the buffer holds; exporting more than was
// captured returns everything retained.
func (r *Recorder) ExportLast(seconds float64) ([]byte, error) {
	if seconds <= 0 {
		seconds = r.config.DefaultExportSeconds
	}

	sampleRate := r.ring.SampleRate()
	if sampleRate == 0 {
		return nil, fmt.Errorf("no capture session has been started: %w", audio.ErrInvalidConfiguration)
	}

	samples, err := r.ring.SnapshotLast(seconds)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot buffer: %w", err)
	}

	encodeStart := time.Now()
	data, err := audio.EncodeWAV(samples, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to encode WAV: %w", err)
	}

	r.mu.Lock()
	r.exportCount++
	r.mu.Unlock()
	r.metrics.RecordExport(seconds, len(samples), time.Since(encodeStart).Seconds())

	r.logger.Debug("Exported audio window",
		slog.Float64("window_seconds", seconds),
		slog.Int("samples", len(samples)),
		slog.Int("bytes", len(data)))

	return data, nil
}

// TranscribeLast exports the most recent seconds of audio and submits the
// WAV file to the transcription endpoint.
func (r *Recorder) TranscribeLast(ctx context.Context, seconds float64) ([]transcription.Segment, error) {
	data, err := r.ExportLast(seconds)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("listener_%d.wav", time.Now().Unix())

	r.metrics.RecordTranscriptionRequest()
	start := time.Now()

	segments, err := r.client.Transcribe(ctx, data, filename)
	elapsed := time.Since(start)
	if err != nil {
		r.metrics.RecordTranscriptionFailure(elapsed.Seconds())
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	r.metrics.RecordTranscriptionSuccess(elapsed.Seconds())

	r.logger.Info("Transcription completed",
		slog.Int("segments", len(segments)),
		slog.Duration("duration", elapsed))

	return segments, nil
}

// State returns the current lifecycle state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Stats returns current recorder statistics.
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	state := r.state
	sessions := r.sessionCount
	exports := r.exportCount
	var sessionStart *time.Time
	if state == StateRecording {
		t := r.sessionStart
		sessionStart = &t
	}
	r.mu.Unlock()

	return Stats{
		State:        state.String(),
		Sessions:     sessions,
		Exports:      exports,
		SessionStart: sessionStart,
		Buffer:       r.ring.Stats(),
		Client:       r.client.GetStats(),
	}
}

// Close stops any running session. It is safe to call during shutdown
// regardless of state.
func (r *Recorder) Close() error {
	return r.Stop()
}

// onChunk is invoked from the capture device callback. It must not take
// the recorder mutex; the ring has its own lock and the callback can fire
// while Start or Stop holds r.mu.
func (r *Recorder) onChunk(chunk []float32) {
	r.ring.Append(chunk)
	r.metrics.RecordChunkAppended(len(chunk), r.ring.Len(), r.ring.RetainedDuration())
}
