package media

import (
	"context"
	"io"
)

// Stored describes a durably written file: the externally reachable URL
// and a locally readable path for adapters that need the raw bytes.
type Stored struct {
	URL  string
	Path string
}

// Store persists media under fresh generated names, never overwriting.
// Uploads are user-submitted files, artifacts are generated outputs
// (synthesized audio, reports).
type Store interface {
	SaveUpload(ctx context.Context, filename string, r io.Reader) (Stored, error)
	SaveArtifact(ctx context.Context, filename string, data []byte) (Stored, error)
}
