// Package audio implements the capture core: a sample-accurate ring buffer
// that retains the most recent window of mono audio, and a WAV encoder that
// turns a snapshot of that window into a self-contained 16-bit PCM file
// ready for upload to a transcription endpoint.
package audio
