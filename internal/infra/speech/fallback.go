package speech

import (
	"context"
	"log"

	domain "github.com/medicare-ai/aidoctor-backend/internal/domain/speech"
)

// FallbackSynthesizer tries the primary provider first and, on any
// error, logs the failure and resynthesizes with the secondary. Errors
// from the primary are never distinguished and never surface to
// callers unless the fallback also fails.
type FallbackSynthesizer struct {
	Primary   domain.Synthesizer
	Secondary domain.Synthesizer

	// OnFallback is bumped when the primary fails. Optional.
	OnFallback func()
}

func NewFallbackSynthesizer(primary, secondary domain.Synthesizer) *FallbackSynthesizer {
	return &FallbackSynthesizer{Primary: primary, Secondary: secondary}
}

func (f *FallbackSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	audio, err := f.Primary.Synthesize(ctx, text)
	if err == nil {
		return audio, nil
	}

	log.Printf("primary tts error: %v - falling back to secondary provider", err)
	if f.OnFallback != nil {
		f.OnFallback()
	}
	return f.Secondary.Synthesize(ctx, text)
}
