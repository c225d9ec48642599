package audio

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrInvalidConfiguration is returned for non-positive sample rates and
// durations. Callers match it with errors.Is; the wrapped message carries
// the offending value.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// RingBuffer retains the most recent retentionSeconds of mono audio as
// normalized float32 samples. New chunks are appended at the tail; once the
// retained count reaches sample_rate x retention, the oldest samples are
// overwritten in place. A single mutex covers append and snapshot so the
// capture callback and an export request can run from different goroutines.
//
// The retention window bounds memory; the export window is chosen per
// snapshot and saturates at whatever is retained.
type RingBuffer struct {
	retention float64 // seconds, fixed at construction

	// Session state, reset by every Start
	samples    []float32 // circular storage, capacity = rate x retention
	sampleRate int
	writePos   int    // next write index
	size       int    // retained sample count, <= len(samples)
	appended   uint64 // total samples appended this session

	mu sync.Mutex
}

// RingStats is a point-in-time view of the buffer for monitoring.
type RingStats struct {
	SampleRate      int     `json:"sample_rate"`
	RetainedSamples int     `json:"retained_samples"`
	RetainedSeconds float64 `json:"retained_seconds"`
	CapacitySamples int     `json:"capacity_samples"`
	TotalAppended   uint64  `json:"total_appended"`
}

// NewRingBuffer creates an unstarted buffer with a fixed retention window.
func NewRingBuffer(retentionSeconds float64) (*RingBuffer, error) {
	if retentionSeconds <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %g: %w",
			retentionSeconds, ErrInvalidConfiguration)
	}
	return &RingBuffer{retention: retentionSeconds}, nil
}

// Start resets the buffer to empty and fixes the sample rate for the new
// capture session. Any samples retained from a previous session are
// discarded; the backing array is reallocated so stale data cannot leak
// into a later export.
func (rb *RingBuffer) Start(sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d: %w",
			sampleRate, ErrInvalidConfiguration)
	}

	fcap := math.Round(float64(sampleRate) * rb.retention)
	if fcap > math.MaxInt32 {
		return fmt.Errorf("retention window of %g samples is too large: %w",
			fcap, ErrInvalidConfiguration)
	}

	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.samples = make([]float32, int(fcap))
	rb.sampleRate = sampleRate
	rb.writePos = 0
	rb.size = 0
	rb.appended = 0

	return nil
}

// Append adds a chunk of samples to the end of the retained sequence,
// overwriting the oldest samples once the retention ceiling is reached.
// Chunks of any length are accepted; an empty chunk and a chunk arriving
// before Start are no-ops. Cost is O(len(chunk)).
func (rb *RingBuffer) Append(chunk []float32) {
	if len(chunk) == 0 {
		return
	}

	rb.mu.Lock()
	defer rb.mu.Unlock()

	capacity := len(rb.samples)
	if capacity == 0 {
		return // no session started
	}

	rb.appended += uint64(len(chunk))

	// A chunk at least as long as the whole window replaces it outright.
	if len(chunk) >= capacity {
		copy(rb.samples, chunk[len(chunk)-capacity:])
		rb.writePos = 0
		rb.size = capacity
		return
	}

	n := copy(rb.samples[rb.writePos:], chunk)
	if n < len(chunk) {
		copy(rb.samples, chunk[n:])
	}
	rb.writePos = (rb.writePos + len(chunk)) % capacity

	rb.size += len(chunk)
	if rb.size > capacity {
		rb.size = capacity
	}
}

// SnapshotLast returns a copy of the most recent seconds of audio,
// oldest-first. The result holds min(round(seconds x rate), retained)
// samples: asking for more than is retained yields everything retained,
// never an error and never padding. An empty buffer yields an empty slice.
// The buffer itself is not mutated.
func (rb *RingBuffer) SnapshotLast(seconds float64) ([]float32, error) {
	if seconds <= 0 {
		return nil, fmt.Errorf("snapshot duration must be positive, got %g: %w",
			seconds, ErrInvalidConfiguration)
	}

	rb.mu.Lock()
	defer rb.mu.Unlock()

	// Compare in float space before converting: seconds x rate can exceed
	// the int range, where the conversion would wrap negative and skip the
	// saturation below.
	n := rb.size
	if wanted := math.Round(seconds * float64(rb.sampleRate)); wanted < float64(rb.size) {
		n = int(wanted)
	}

	out := make([]float32, n)
	if n == 0 {
		return out, nil
	}

	start := rb.writePos - n
	if start < 0 {
		start += len(rb.samples)
	}

	if start+n <= len(rb.samples) {
		copy(out, rb.samples[start:start+n])
	} else {
		first := len(rb.samples) - start
		copy(out, rb.samples[start:])
		copy(out[first:], rb.samples[:n-first])
	}

	return out, nil
}

// RetainedDuration returns the retained audio length in seconds, 0 before
// the first Start.
func (rb *RingBuffer) RetainedDuration() float64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.sampleRate == 0 {
		return 0
	}
	return float64(rb.size) / float64(rb.sampleRate)
}

// Len returns the current number of retained samples.
func (rb *RingBuffer) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.size
}

// SampleRate returns the session's sample rate, 0 before the first Start.
func (rb *RingBuffer) SampleRate() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.sampleRate
}

// RetentionSeconds returns the fixed retention window length.
func (rb *RingBuffer) RetentionSeconds() float64 {
	return rb.retention
}

// Stats returns current buffer statistics.
func (rb *RingBuffer) Stats() RingStats {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	retainedSeconds := float64(0)
	if rb.sampleRate > 0 {
		retainedSeconds = float64(rb.size) / float64(rb.sampleRate)
	}

	return RingStats{
		SampleRate:      rb.sampleRate,
		RetainedSamples: rb.size,
		RetainedSeconds: retainedSeconds,
		CapacitySamples: len(rb.samples),
		TotalAppended:   rb.appended,
	}
}
