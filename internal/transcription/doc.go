// Package transcription implements the HTTP client for the transcription
// API. It submits encoded audio files as multipart form data and decodes
// the returned speaker-attributed segments. Retry and backoff policy is
// deliberately left to the endpoint's operator; each export is one POST.
package transcription
