package capture

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"
)

// Source abstracts the capture device so the recorder can be tested without
// a microphone. Open wires the chunk consumer, Start/Stop control the
// device, Close releases it.
type Source interface {
	Open(onChunk func([]float32)) error
	Start() error
	Stop() error
	Close() error
	SampleRate() int
}

// Config contains capture device configuration
type Config struct {
	Device     string // substring of the device name; empty selects the default device
	SampleRate int    // Hz
}

// MalgoSource captures mono float32 audio from a miniaudio device.
type MalgoSource struct {
	cfg    Config
	logger *slog.Logger

	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	onChunk func([]float32)

	mu sync.Mutex
}

// NewMalgoSource creates an unopened capture source.
func NewMalgoSource(cfg Config, logger *slog.Logger) *MalgoSource {
	return &MalgoSource{cfg: cfg, logger: logger}
}

// SampleRate returns the configured capture sample rate.
func (s *MalgoSource) SampleRate() int {
	return s.cfg.SampleRate
}

// Open initializes the audio context and the capture device. Each data
// callback is decoded into a []float32 chunk and handed to onChunk; the
// chunk is a fresh copy, so the consumer may keep or discard it freely.
func (s *MalgoSource) Open(onChunk func([]float32)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device != nil {
		return fmt.Errorf("capture device already open")
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		s.logger.Debug("malgo", slog.String("message", strings.TrimSpace(message)))
	})
	if err != nil {
		return fmt.Errorf("failed to initialize audio context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(s.cfg.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	if s.cfg.Device != "" {
		id, err := s.findDeviceID(ctx, s.cfg.Device)
		if err != nil {
			uninitContext(ctx)
			return err
		}
		deviceConfig.Capture.DeviceID = id.Pointer()
	}

	s.onChunk = onChunk

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, frameCount uint32) {
			s.onChunk(decodeF32Frames(input, frameCount))
		},
		Stop: func() {
			s.logger.Warn("capture device stopped")
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		uninitContext(ctx)
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	s.ctx = ctx
	s.device = device

	return nil
}

// Start begins delivering capture callbacks.
func (s *MalgoSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device == nil {
		return fmt.Errorf("capture device not open")
	}

	if err := s.device.Start(); err != nil {
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	return nil
}

// Stop halts capture callbacks without releasing the device.
func (s *MalgoSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device == nil {
		return nil
	}

	if err := s.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}

	return nil
}

// Close releases the device and the audio context.
func (s *MalgoSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device != nil {
		s.device.Uninit()
		s.device = nil
	}

	if s.ctx != nil {
		uninitContext(s.ctx)
		s.ctx = nil
	}

	return nil
}

// findDeviceID matches a capture device by name substring.
func (s *MalgoSource) findDeviceID(ctx *malgo.AllocatedContext, name string) (malgo.DeviceID, error) {
	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return malgo.DeviceID{}, fmt.Errorf("failed to enumerate capture devices: %w", err)
	}

	for i := range infos {
		if strings.Contains(infos[i].Name(), name) {
			return infos[i].ID, nil
		}
	}

	return malgo.DeviceID{}, fmt.Errorf("capture device not found: %s", name)
}

func uninitContext(ctx *malgo.AllocatedContext) {
	_ = ctx.Uninit()
	ctx.Free()
}

// decodeF32Frames converts a little-endian f32 callback buffer into a fresh
// sample slice. Mono, so frames and samples are one-to-one.
func decodeF32Frames(input []byte, frameCount uint32) []float32 {
	n := int(frameCount)
	if max := len(input) / 4; n > max {
		n = max
	}

	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(input[i*4:])
		samples[i] = math.Float32frombits(bits)
	}

	return samples
}
