package podcast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const ttsTimeout = 2 * time.Minute

// HTTPSynthesizer posts scripts to a text-to-speech service that answers
// with the URL of the rendered audio.
type HTTPSynthesizer struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	voice      string
}

func NewHTTPSynthesizer(httpClient *http.Client, endpoint, apiKey, voice string) *HTTPSynthesizer {
	return &HTTPSynthesizer{httpClient: httpClient, endpoint: endpoint, apiKey: apiKey, voice: voice}
}

type ttsRequest struct {
	Text   string `json:"text"`
	Voice  string `json:"voice,omitempty"`
	Format string `json:"format"`
}

type ttsResponse struct {
	AudioURL string `json:"audioUrl"`
	Error    string `json:"error"`
}

func (s *HTTPSynthesizer) Synthesize(ctx context.Context, script string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ttsTimeout)
	defer cancel()

	body, err := json.Marshal(ttsRequest{Text: script, Voice: s.voice, Format: "mp3"})
	if err != nil {
		return "", fmt.Errorf("failed to encode TTS request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call TTS service: %w", err)
	}
	defer resp.Body.Close()

	var out ttsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode TTS response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("TTS error: %d %s", resp.StatusCode, out.Error)
	}
	if out.AudioURL == "" {
		return "", fmt.Errorf("TTS response has no audio URL")
	}
	return out.AudioURL, nil
}
