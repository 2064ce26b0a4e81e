package groq

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"

	domai "github.com/medicare-ai/aidoctor-backend/internal/domain/ai"
)

// Client talks to the Groq OpenAI-compatible API for both Whisper
// transcription and multimodal chat.
type Client struct {
	*openai.Client
	apiKey          string
	TranscribeModel string
	VisionModel     string
}

func NewClient(apiKey, baseURL, transcribeModel, visionModel string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		Client:          openai.NewClientWithConfig(cfg),
		apiKey:          apiKey,
		TranscribeModel: transcribeModel,
		VisionModel:     visionModel,
	}
}

// Transcribe sends the audio file to the hosted speech-to-text model.
// Any upstream failure propagates unmodified.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if c.apiKey == "" {
		return "", domai.ErrMissingAPIKey
	}
	model := c.TranscribeModel
	if model == "" {
		model = "whisper-large-v3"
	}
	resp, err := c.CreateTranscription(ctx, openai.AudioRequest{
		Model:    model,
		FilePath: audioPath,
		Language: "en",
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return resp.Text, nil
}

// Analyze embeds the image as a base64 data URL in a single user-role
// multimodal message and returns the first choice's text content.
func (c *Client) Analyze(ctx context.Context, prompt, imagePath string) (string, error) {
	if c.apiKey == "" {
		return "", domai.ErrMissingAPIKey
	}
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return "", err
	}
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw)

	model := c.VisionModel
	if model == "" {
		model = "meta-llama/llama-4-scout-17b-16e-instruct"
	}
	resp, err := c.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
