package speech

import (
	"context"
	"errors"
	"testing"
)

type stubSynth struct {
	audio []byte
	err   error
	calls int
}

func (s *stubSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	s.calls++
	return s.audio, s.err
}

func TestFallbackNotUsedWhenPrimarySucceeds(t *testing.T) {
	primary := &stubSynth{audio: []byte("primary-mp3")}
	secondary := &stubSynth{audio: []byte("secondary-mp3")}
	s := NewFallbackSynthesizer(primary, secondary)

	audio, err := s.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "primary-mp3" {
		t.Fatalf("expected primary audio, got %q", audio)
	}
	if secondary.calls != 0 {
		t.Fatalf("secondary must not be called, got %d calls", secondary.calls)
	}
}

func TestFallbackMasksPrimaryFailure(t *testing.T) {
	primary := &stubSynth{err: errors.New("rate limited")}
	secondary := &stubSynth{audio: []byte("secondary-mp3")}
	fallbacks := 0
	s := NewFallbackSynthesizer(primary, secondary)
	s.OnFallback = func() { fallbacks++ }

	audio, err := s.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("primary failure must not surface, got: %v", err)
	}
	if len(audio) == 0 {
		t.Fatal("expected non-empty audio from fallback")
	}
	if string(audio) != "secondary-mp3" {
		t.Fatalf("expected secondary audio, got %q", audio)
	}
	if fallbacks != 1 {
		t.Fatalf("expected one fallback, got %d", fallbacks)
	}
}

func TestFallbackErrorSurfacesWhenBothFail(t *testing.T) {
	primary := &stubSynth{err: errors.New("down")}
	secondary := &stubSynth{err: errors.New("also down")}
	s := NewFallbackSynthesizer(primary, secondary)

	if _, err := s.Synthesize(context.Background(), "hello"); err == nil {
		t.Fatal("expected error when both providers fail")
	}
}
