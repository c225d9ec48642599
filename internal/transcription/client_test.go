package transcription

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	client, err := NewClient(Config{
		Endpoint: "http://localhost:8081/transcribe",
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client == nil {
		t.Fatal("Expected non-nil client")
	}
}

func TestNewClientEmptyEndpoint(t *testing.T) {
	_, err := NewClient(Config{})
	if err == nil {
		t.Error("Expected error for empty endpoint, got nil")
	}
}

func TestTranscribeSuccess(t *testing.T) {
	var gotAuth, gotFilename string
	var gotLanguage string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("Failed to parse multipart form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("Missing file field: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		file.Close()
		gotFilename = header.Filename
		gotLanguage = r.FormValue("language")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Response{
			Segments: []Segment{
				{Text: "hello world", SpeakerID: "speaker_0"},
				{Text: "how are you", SpeakerID: "speaker_1"},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(Config{
		Endpoint: server.URL,
		APIKey:   "test-key",
		Language: "en",
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	segments, err := client.Transcribe(context.Background(), []byte("RIFF fake wav"), "listener_123.wav")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if len(segments) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(segments))
	}
	if segments[0].Text != "hello world" {
		t.Errorf("Expected first segment text 'hello world', got %q", segments[0].Text)
	}
	if segments[1].SpeakerID != "speaker_1" {
		t.Errorf("Expected second segment speaker 'speaker_1', got %q", segments[1].SpeakerID)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Expected Bearer auth header, got %q", gotAuth)
	}
	if gotFilename != "listener_123.wav" {
		t.Errorf("Expected filename 'listener_123.wav', got %q", gotFilename)
	}
	if gotLanguage != "en" {
		t.Errorf("Expected language field 'en', got %q", gotLanguage)
	}
}

func TestTranscribeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal failure", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(Config{Endpoint: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.Transcribe(context.Background(), []byte("data"), "a.wav")
	if err == nil {
		t.Fatal("Expected error for 500 response, got nil")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected error to mention status code, got %q", err.Error())
	}
}

func TestTranscribeContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	client, err := NewClient(Config{Endpoint: server.URL, Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Transcribe(ctx, []byte("data"), "a.wav")
	if err == nil {
		t.Error("Expected error for cancelled context, got nil")
	}
}

func TestClientStats(t *testing.T) {
	var fail bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Response{})
	}))
	defer server.Close()

	client, err := NewClient(Config{Endpoint: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if _, err := client.Transcribe(context.Background(), []byte("data"), "a.wav"); err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	fail = true
	if _, err := client.Transcribe(context.Background(), []byte("data"), "b.wav"); err == nil {
		t.Fatal("Expected error for failed request")
	}

	stats := client.GetStats()
	if stats.TotalRequests != 2 {
		t.Errorf("Expected 2 total requests, got %d", stats.TotalRequests)
	}
	if stats.SuccessRequests != 1 {
		t.Errorf("Expected 1 success, got %d", stats.SuccessRequests)
	}
	if stats.FailedRequests != 1 {
		t.Errorf("Expected 1 failure, got %d", stats.FailedRequests)
	}
	if stats.SuccessRate != 50.0 {
		t.Errorf("Expected 50.0 success rate, got %f", stats.SuccessRate)
	}
}
