package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultModelID is the synthesis model used when none is configured.
const DefaultModelID = "eleven_monolingual_v1"

// VoiceSettings tune the synthesis output.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// DefaultVoiceSettings returns the defaults for newsletter narration.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.6,
		SimilarityBoost: 0.75,
		Style:           0.2,
		UseSpeakerBoost: true,
	}
}

// Client calls the ElevenLabs text-to-speech API.
type Client struct {
	apiKey   string
	baseURL  string
	voiceID  string
	modelID  string
	settings VoiceSettings
	client   *http.Client
}

func NewClient(apiKey, voiceID, modelID string, settings VoiceSettings) *Client {
	if modelID == "" {
		modelID = DefaultModelID
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  "https://api.elevenlabs.io",
		voiceID:  voiceID,
		modelID:  modelID,
		settings: settings,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// Synthesize submits text for speech synthesis and returns the raw audio
// bytes. Any non-2xx response is an error carrying the response body.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	reqBody := synthesizeRequest{
		Text:          text,
		ModelID:       c.modelID,
		VoiceSettings: c.settings,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("speech: failed to marshal request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("speech: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech: synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("speech: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("speech: synthesis returned status %d: %s", resp.StatusCode, body)
	}

	return body, nil
}

// Narrate reads the script file, synthesizes it, and writes the returned
// audio verbatim to outPath.
func (c *Client) Narrate(ctx context.Context, scriptPath, outPath string) error {
	text, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("speech: failed to read script %s: %w", scriptPath, err)
	}

	audio, err := c.Synthesize(ctx, string(text))
	if err != nil {
		return err
	}

	if err := os.WriteFile(outPath, audio, 0o644); err != nil {
		return fmt.Errorf("speech: failed to write audio %s: %w", outPath, err)
	}

	return nil
}
