package pdf

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"github.com/medicare-ai/aidoctor-backend/internal/domain/diagnosis"
)

const (
	disclaimer = "This report was generated automatically from an AI-assisted consultation. " +
		"It is for informational purposes only and is not a substitute for professional medical advice, diagnosis, or treatment."

	fetchTimeout = 10 * time.Second
	maxImageSize = 10 << 20 // body cap for remote image fetch
)

// Renderer lays out diagnosis reports with gofpdf. Generated files are
// written under TempDir with fresh names.
type Renderer struct {
	TempDir  string
	LogoPath string
	Client   *http.Client
}

func NewRenderer(tempDir, logoPath string) *Renderer {
	return &Renderer{
		TempDir:  tempDir,
		LogoPath: logoPath,
		Client:   &http.Client{Timeout: fetchTimeout},
	}
}

func (r *Renderer) newDoc(headerTitle string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Uncompressed streams, same as the report consumers expect
	pdf.SetCompression(false)
	pdf.SetAutoPageBreak(true, 15)

	pdf.SetHeaderFunc(func() {
		if r.LogoPath != "" {
			if _, err := os.Stat(r.LogoPath); err == nil {
				pdf.ImageOptions(r.LogoPath, 10, 8, 20, 0, false, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
			}
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 10, headerTitle, "", 1, "C", false, 0, "")
		pdf.Ln(6)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-18)
		pdf.SetFont("Arial", "I", 7)
		pdf.MultiCell(0, 4, disclaimer, "", "C", false)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	return pdf
}

// RenderRecord produces the basic report for a stored diagnosis.
func (r *Renderer) RenderRecord(rec *diagnosis.Record) (string, error) {
	if err := os.MkdirAll(r.TempDir, 0o755); err != nil {
		return "", err
	}

	pdf := r.newDoc("Medical Diagnosis Report")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 10, tr("Patient ID: "+orNA(rec.UserID)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 10, tr("Report ID: "+orNA(rec.FrontendID)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 10, tr("Symptom: "+orNA(rec.Symptom)), "", 1, "L", false, 0, "")
	if !rec.CreatedAt.IsZero() {
		pdf.CellFormat(0, 10, "Date: "+rec.CreatedAt.UTC().Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	section(pdf, tr, "Patient's Problem", orNA(rec.Transcript))
	section(pdf, tr, "Diagnosis Summary", orNA(rec.Diagnosis))

	pdf.SetFont("Arial", "", 11)
	if rec.AudioURL != "" {
		pdf.CellFormat(0, 8, tr("Audio URL: "+rec.AudioURL), "", 1, "L", false, 0, "")
	}
	if rec.ImageURL != "" {
		pdf.CellFormat(0, 8, tr("Image URL: "+rec.ImageURL), "", 1, "L", false, 0, "")
	}
	if rec.TTSURL != "" {
		pdf.CellFormat(0, 8, tr("Voice Response URL: "+rec.TTSURL), "", 1, "L", false, 0, "")
	}

	path := filepath.Join(r.TempDir, fmt.Sprintf("report-%s.pdf", hexID()))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", err
	}
	return path, nil
}

// RenderPayload produces the enhanced report from an ad hoc payload.
// When image_url is present the image is fetched, embedded and the
// temporary copy removed; any fetch problem renders as an error line
// and the report still completes.
func (r *Renderer) RenderPayload(ctx context.Context, data map[string]any) (path, filename string, err error) {
	if err := os.MkdirAll(r.TempDir, 0o755); err != nil {
		return "", "", err
	}

	pdf := r.newDoc("MediCare AI - Medical Diagnosis Report")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, "Diagnosis Details", "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 8, "Timestamp: "+time.Now().UTC().Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, tr("Diagnosis Type: "+getString(data, "type")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, tr("Symptom: "+getString(data, "symptom")), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	section(pdf, tr, "Patient's Problem", getString(data, "transcript"))
	section(pdf, tr, "Diagnosis Summary", getString(data, "diagnosis"))

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "Associated Media", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)

	if imageURL, _ := data["image_url"].(string); imageURL != "" {
		pdf.CellFormat(0, 8, tr("Image URL: "+imageURL), "", 1, "L", false, 0, "")
		if err := r.embedRemoteImage(ctx, pdf, imageURL); err != nil {
			pdf.CellFormat(0, 8, tr("Could not embed image: "+err.Error()), "", 1, "L", false, 0, "")
		}
	}

	filename = fmt.Sprintf("diagnosis_report_%s.pdf", hexID())
	path = filepath.Join(r.TempDir, filename)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", "", err
	}
	return path, filename, nil
}

// embedRemoteImage fetches a caller-supplied URL into a temporary file,
// draws it and deletes the copy. The fetch is guarded: public hosts
// only, image content type required, body capped.
func (r *Renderer) embedRemoteImage(ctx context.Context, pdf *gofpdf.Fpdf, imageURL string) error {
	if err := ValidateImageURL(imageURL); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image fetch returned %d", resp.StatusCode)
	}

	ext, err := imageExt(resp.Header.Get("Content-Type"))
	if err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return err
	}
	if len(body) > maxImageSize {
		return fmt.Errorf("image exceeds %d byte limit", maxImageSize)
	}

	tmpPath := filepath.Join(r.TempDir, "temp_image_"+hexID()+ext)
	if err := os.WriteFile(tmpPath, body, 0o644); err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	w, _ := pdf.GetPageSize()
	pdf.ImageOptions(tmpPath, 15, pdf.GetY()+2, w-30, 0, true, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
	return nil
}

func imageExt(contentType string) (string, error) {
	switch {
	case strings.HasPrefix(contentType, "image/jpeg"):
		return ".jpg", nil
	case strings.HasPrefix(contentType, "image/png"):
		return ".png", nil
	case strings.HasPrefix(contentType, "image/gif"):
		return ".gif", nil
	}
	return "", fmt.Errorf("unsupported image content type: %s", contentType)
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title, body string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 8, tr(body), "", "L", false)
	pdf.Ln(6)
}

func getString(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return "N/A"
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func hexID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
