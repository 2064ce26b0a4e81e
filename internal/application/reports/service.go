package reports

import (
	"context"

	"github.com/medicare-ai/aidoctor-backend/internal/domain/diagnosis"
	"github.com/medicare-ai/aidoctor-backend/internal/infra/pdf"
)

// Service exposes the two report variants: by stored record and from
// an ad hoc client payload.
type Service struct {
	Repo     diagnosis.Repository
	Renderer *pdf.Renderer
}

func NewService(repo diagnosis.Repository, renderer *pdf.Renderer) *Service {
	return &Service{Repo: repo, Renderer: renderer}
}

// ByFrontendID looks up the record by its correlation id and renders
// the basic report.
func (s *Service) ByFrontendID(ctx context.Context, frontendID string) (string, error) {
	rec, err := s.Repo.FindByFrontendID(ctx, frontendID)
	if err != nil {
		return "", err
	}
	return s.Renderer.RenderRecord(rec)
}

// AdHoc renders the enhanced report straight from the caller's payload.
func (s *Service) AdHoc(ctx context.Context, payload map[string]any) (path, filename string, err error) {
	return s.Renderer.RenderPayload(ctx, payload)
}
