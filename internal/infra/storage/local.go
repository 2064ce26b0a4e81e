package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/medicare-ai/aidoctor-backend/internal/domain/media"
)

// LocalStore writes media into two public-servable directories and
// builds externally reachable URLs from the configured base URL.
type LocalStore struct {
	UploadDir string
	TempDir   string
	BaseURL   string
}

func NewLocalStore(uploadDir, tempDir, baseURL string) (*LocalStore, error) {
	for _, dir := range []string{uploadDir, tempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &LocalStore{
		UploadDir: uploadDir,
		TempDir:   tempDir,
		BaseURL:   strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalStore) SaveUpload(ctx context.Context, filename string, r io.Reader) (media.Stored, error) {
	name := freshName(filename)
	path := filepath.Join(s.UploadDir, name)

	// O_EXCL: write under fresh name, never overwrite
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return media.Stored{}, err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return media.Stored{}, err
	}
	if err := f.Close(); err != nil {
		return media.Stored{}, err
	}

	return media.Stored{
		URL:  fmt.Sprintf("%s/uploads/%s", s.BaseURL, name),
		Path: path,
	}, nil
}

func (s *LocalStore) SaveArtifact(ctx context.Context, filename string, data []byte) (media.Stored, error) {
	name := freshName(filename)
	path := filepath.Join(s.TempDir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return media.Stored{}, err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return media.Stored{}, err
	}
	if err := f.Close(); err != nil {
		return media.Stored{}, err
	}

	return media.Stored{
		URL:  fmt.Sprintf("%s/temp/%s", s.BaseURL, name),
		Path: path,
	}, nil
}

// freshName prefixes a uuid so concurrent requests cannot collide, and
// strips any path components a client smuggled into the filename.
func freshName(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	return uuid.New().String() + "-" + base
}
