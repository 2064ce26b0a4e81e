package ai

import "context"

// Transcriber converts a stored audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// VisionAnalyzer sends a prompt plus an inline image to a multimodal
// chat model and returns the model's text reply.
type VisionAnalyzer interface {
	Analyze(ctx context.Context, prompt, imagePath string) (string, error)
}
