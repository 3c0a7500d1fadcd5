package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testSpeechClient(ts *httptest.Server) *Client {
	c := NewClient("test_key", "voice_1", "", DefaultVoiceSettings())
	c.baseURL = ts.URL
	c.client = ts.Client()
	return c
}

func TestSynthesizeRequest(t *testing.T) {
	var gotPath, gotAPIKey string
	var gotBody synthesizeRequest
	audio := []byte{0xff, 0xfb, 0x90, 0x00, 0x01, 0x02}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("xi-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Write(audio)
	}))
	defer ts.Close()

	c := testSpeechClient(ts)
	got, err := c.Synthesize(context.Background(), "Hello, here is your summary.")
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	if !bytes.Equal(got, audio) {
		t.Errorf("Audio bytes altered: got %v, want %v", got, audio)
	}
	if gotPath != "/v1/text-to-speech/voice_1" {
		t.Errorf("Unexpected path: %s", gotPath)
	}
	if gotAPIKey != "test_key" {
		t.Errorf("Expected xi-api-key header, got %q", gotAPIKey)
	}
	if gotBody.Text != "Hello, here is your summary." {
		t.Errorf("Unexpected text: %q", gotBody.Text)
	}
	if gotBody.ModelID != DefaultModelID {
		t.Errorf("Expected default model id, got %q", gotBody.ModelID)
	}

	vs := gotBody.VoiceSettings
	if vs.Stability != 0.6 || vs.SimilarityBoost != 0.75 || vs.Style != 0.2 || !vs.UseSpeakerBoost {
		t.Errorf("Unexpected voice settings: %+v", vs)
	}
}

func TestSynthesizeBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail": "voice not found"}`))
	}))
	defer ts.Close()

	c := testSpeechClient(ts)
	_, err := c.Synthesize(context.Background(), "text")
	if err == nil {
		t.Fatal("Expected error for 422 status")
	}
	if !strings.Contains(err.Error(), "status 422") || !strings.Contains(err.Error(), "voice not found") {
		t.Errorf("Expected status and body in error, got: %v", err)
	}
}

func TestNarrateWritesAudioVerbatim(t *testing.T) {
	audio := []byte{0x49, 0x44, 0x33, 0x00, 0xfe}
	var gotText string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req synthesizeRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotText = req.Text
		w.Write(audio)
	}))
	defer ts.Close()

	dir := t.TempDir()
	script := filepath.Join(dir, "memo.txt")
	if err := os.WriteFile(script, []byte("Narrate this memo."), 0o644); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}
	outPath := filepath.Join(dir, "out.mp3")

	c := testSpeechClient(ts)
	if err := c.Narrate(context.Background(), script, outPath); err != nil {
		t.Fatalf("Narrate returned error: %v", err)
	}

	if gotText != "Narrate this memo." {
		t.Errorf("Expected full script text submitted, got %q", gotText)
	}
	written, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Failed to read audio file: %v", err)
	}
	if !bytes.Equal(written, audio) {
		t.Errorf("Audio file altered: got %v, want %v", written, audio)
	}
}

func TestNarrateMissingScript(t *testing.T) {
	c := NewClient("k", "v", "", DefaultVoiceSettings())
	err := c.Narrate(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), filepath.Join(t.TempDir(), "out.mp3"))
	if err == nil {
		t.Fatal("Expected error for missing script file")
	}
}
