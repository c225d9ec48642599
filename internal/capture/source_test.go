package capture

import (
	"encoding/binary"
	"math"
	"testing"
)

func encodeF32Frames(samples []float32) []byte {
	buf := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(s))
	}
	return buf
}

func TestDecodeF32Frames(t *testing.T) {
	original := []float32{0.0, 0.5, -0.5, 1.0, -1.0, 0.123}
	input := encodeF32Frames(original)

	samples := decodeF32Frames(input, uint32(len(original)))

	if len(samples) != len(original) {
		t.Fatalf("Expected %d samples, got %d", len(original), len(samples))
	}

	for i, s := range samples {
		if s != original[i] {
			t.Errorf("Sample %d: expected %g, got %g", i, original[i], s)
		}
	}
}

func TestDecodeF32FramesEmpty(t *testing.T) {
	samples := decodeF32Frames(nil, 0)
	if len(samples) != 0 {
		t.Errorf("Expected empty chunk, got %d samples", len(samples))
	}
}

func TestDecodeF32FramesTruncatedBuffer(t *testing.T) {
	// A short callback buffer must not cause an out-of-range read.
	input := encodeF32Frames([]float32{0.25, 0.75})

	samples := decodeF32Frames(input, 10)

	if len(samples) != 2 {
		t.Fatalf("Expected 2 samples, got %d", len(samples))
	}
	if samples[0] != 0.25 || samples[1] != 0.75 {
		t.Errorf("Expected [0.25 0.75], got %v", samples)
	}
}

func TestNewMalgoSourceSampleRate(t *testing.T) {
	src := NewMalgoSource(Config{SampleRate: 16000}, nil)
	if src.SampleRate() != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", src.SampleRate())
	}
}
