package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"
)

type Segment struct {
	Text      string `json:"text"`
	SpeakerID string `json:"speakerId"`
}

type TranscriptionResponse struct {
	Segments []Segment `json:"segments"`
}

func transcribeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse multipart form
	err := r.ParseMultipartForm(50 << 20) // 50 MB
	if err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	// Get optional form fields
	language := r.FormValue("language")
	model := r.FormValue("model")

	// Get audio file
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Error getting audio file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// Read file content to get size
	audioData, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Error reading audio file", http.StatusInternalServerError)
		return
	}

	// Log request information
	log.Printf("🎤 TRANSCRIPTION REQUEST RECEIVED:")
	log.Printf("  ═══════════════════════════════════")
	log.Printf("  🎧 Audio Info:")
	log.Printf("    Filename: %s", header.Filename)
	log.Printf("    Audio Size: %d bytes", len(audioData))
	log.Printf("    Content-Type: %s", header.Header.Get("Content-Type"))
	log.Printf("    Language: %s", language)
	log.Printf("    Model: %s", model)
	log.Printf("  ═══════════════════════════════════")
	log.Printf("  🔑 Auth: %s", r.Header.Get("Authorization"))

	// Simulate processing time
	time.Sleep(200 * time.Millisecond)

	// Create fake transcription response
	response := TranscriptionResponse{
		Segments: []Segment{
			{Text: "This is a test transcription of the first speaker.", SpeakerID: "speaker_0"},
			{Text: "And this is a reply from the second speaker.", SpeakerID: "speaker_1"},
		},
	}

	// Send JSON response
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)

	log.Printf("✅ TRANSCRIPTION RESPONSE SENT: %d segments", len(response.Segments))
	log.Println("---")
}

func main() {
	http.HandleFunc("/transcribe", transcribeHandler)

	port := ":8081"
	log.Printf("🚀 Test Transcription Server starting on port %s", port)
	log.Printf("📡 Endpoint: http://localhost%s/transcribe", port)
	log.Println("💡 Update your config to use: http://localhost:8081/transcribe")

	if err := http.ListenAndServe(port, nil); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
