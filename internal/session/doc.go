// Package session coordinates the capture device, the rolling audio
// buffer and the transcription client into one recorder lifecycle.
package session
