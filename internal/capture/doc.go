// Package capture provides microphone access for the listener service. It
// opens a mono capture device through miniaudio (malgo) and forwards each
// hardware callback as a chunk of normalized float samples. Chunk sizes are
// whatever the hardware delivers; the rolling buffer downstream accepts any
// length.
package capture
