package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/medicare-ai/aidoctor-backend/internal/application"
	"github.com/medicare-ai/aidoctor-backend/internal/domain/ai"
	"github.com/medicare-ai/aidoctor-backend/internal/domain/diagnosis"
	"github.com/medicare-ai/aidoctor-backend/internal/domain/media"
	"github.com/medicare-ai/aidoctor-backend/internal/domain/speech"
	"github.com/medicare-ai/aidoctor-backend/internal/infra/ai/prompt"
)

// ErrBadInput marks client mistakes (missing file or field) so the
// HTTP layer can answer 4xx instead of 5xx.
type ErrBadInput struct{ Msg string }

func (e ErrBadInput) Error() string { return e.Msg }

// Service runs the chat pipeline: store media, transcribe, diagnose,
// synthesize, persist. One external call per step, no retries.
type Service struct {
	Media       media.Store
	Transcriber ai.Transcriber
	Vision      ai.VisionAnalyzer
	Speech      speech.Synthesizer
	Repo        diagnosis.Repository
	Clock       application.Clock
}

type ChatCommand struct {
	Audio      io.Reader
	AudioName  string
	Image      io.Reader // nil when no image submitted
	ImageName  string
	Symptom    string
	FrontendID string
}

type ChatResult struct {
	Transcript string `json:"transcript"`
	Diagnosis  string `json:"diagnosis"`
	VoiceURL   string `json:"voice_url"`
	ImageURL   string `json:"image_url,omitempty"`
	AudioURL   string `json:"audio_url"`
}

// Chat executes the whole pipeline. The diagnosis record is persisted
// only after every referenced media file is durably stored; a hard
// failure in any earlier step aborts with nothing recorded.
func (s *Service) Chat(ctx context.Context, cmd ChatCommand) (*ChatResult, error) {
	if cmd.Audio == nil {
		return nil, ErrBadInput{Msg: "audio file is required"}
	}
	if strings.TrimSpace(cmd.FrontendID) == "" {
		return nil, ErrBadInput{Msg: "frontendId is required"}
	}

	audio, err := s.Media.SaveUpload(ctx, cmd.AudioName, cmd.Audio)
	if err != nil {
		return nil, fmt.Errorf("store audio: %w", err)
	}

	var image media.Stored
	hasImage := cmd.Image != nil
	if hasImage {
		if image, err = s.Media.SaveUpload(ctx, cmd.ImageName, cmd.Image); err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
	}

	transcript, err := s.Transcriber.Transcribe(ctx, audio.Path)
	if err != nil {
		return nil, err
	}

	var diag string
	if hasImage {
		query := prompt.BuildQuery(cmd.Symptom, transcript)
		if diag, err = s.Vision.Analyze(ctx, query, image.Path); err != nil {
			return nil, err
		}
	} else {
		diag = prompt.NoImageDiagnosis
	}

	voiceBytes, err := s.Speech.Synthesize(ctx, diag)
	if err != nil {
		return nil, err
	}
	voice, err := s.Media.SaveArtifact(ctx, "voice.mp3", voiceBytes)
	if err != nil {
		return nil, fmt.Errorf("store voice: %w", err)
	}

	rec := &diagnosis.Record{
		UserID:     diagnosis.PlaceholderUserID,
		Diagnosis:  diag,
		Transcript: transcript,
		AudioURL:   audio.URL,
		ImageURL:   image.URL,
		TTSURL:     voice.URL,
		Symptom:    cmd.Symptom,
		FrontendID: cmd.FrontendID,
		CreatedAt:  s.Clock.Now(),
	}
	if _, err := s.Repo.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist diagnosis: %w", err)
	}

	return &ChatResult{
		Transcript: transcript,
		Diagnosis:  diag,
		VoiceURL:   voice.URL,
		ImageURL:   image.URL,
		AudioURL:   audio.URL,
	}, nil
}

// Speak synthesizes arbitrary text into a stored MP3 artifact. Backs
// the standalone /api/tts endpoint.
func (s *Service) Speak(ctx context.Context, text string) (media.Stored, error) {
	if strings.TrimSpace(text) == "" {
		return media.Stored{}, ErrBadInput{Msg: "text is required"}
	}
	audio, err := s.Speech.Synthesize(ctx, text)
	if err != nil {
		return media.Stored{}, err
	}
	return s.Media.SaveArtifact(ctx, "tts.mp3", audio)
}
