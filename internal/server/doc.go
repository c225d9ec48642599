// Package server implements the HTTP API for the listener capture
// service: session control, WAV export, transcription relay, and
// monitoring/management endpoints.
package server
