package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// Client is the primary hosted voice-synthesis provider.
type Client struct {
	APIKey  string
	VoiceID string
	Model   string
	BaseURL string
	httpc   *http.Client
}

func NewClient(apiKey, voiceID, model string) *Client {
	return &Client{
		APIKey:  apiKey,
		VoiceID: voiceID,
		Model:   model,
		BaseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

type synthesizeRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize renders text with the fixed voice and model, returning
// complete MP3 bytes or an error.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("elevenlabs api key not configured")
	}

	body, err := json.Marshal(synthesizeRequest{Text: text, ModelID: c.Model})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=mp3_22050_32", c.BaseURL, c.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("elevenlabs returned %d: %s", resp.StatusCode, msg)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("elevenlabs returned empty audio")
	}
	return audio, nil
}
