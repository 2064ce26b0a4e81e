package speech

import "context"

// Synthesizer converts text to playable MP3 bytes. Implementations
// return either a complete audio clip or an error, never partial data.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
