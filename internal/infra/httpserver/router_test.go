package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/medicare-ai/aidoctor-backend/internal/application"
	authapp "github.com/medicare-ai/aidoctor-backend/internal/application/auth"
	"github.com/medicare-ai/aidoctor-backend/internal/application/pipeline"
	"github.com/medicare-ai/aidoctor-backend/internal/application/reports"
	"github.com/medicare-ai/aidoctor-backend/internal/domain/diagnosis"
	"github.com/medicare-ai/aidoctor-backend/internal/domain/media"
	"github.com/medicare-ai/aidoctor-backend/internal/domain/users"
	"github.com/medicare-ai/aidoctor-backend/internal/infra/pdf"
)

type fakeMedia struct{ saves int }

func (f *fakeMedia) SaveUpload(ctx context.Context, filename string, r io.Reader) (media.Stored, error) {
	f.saves++
	name := fmt.Sprintf("%d-%s", f.saves, filename)
	return media.Stored{URL: "http://host/uploads/" + name, Path: "/u/" + name}, nil
}

func (f *fakeMedia) SaveArtifact(ctx context.Context, filename string, data []byte) (media.Stored, error) {
	f.saves++
	name := fmt.Sprintf("%d-%s", f.saves, filename)
	return media.Stored{URL: "http://host/temp/" + name, Path: "/t/" + name}, nil
}

type fakeTranscriber struct{}

func (fakeTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	return "I have a cough", nil
}

type fakeVision struct{ calls int }

func (f *fakeVision) Analyze(ctx context.Context, prompt, imagePath string) (string, error) {
	f.calls++
	return "Sounds like a cold.", nil
}

type fakeSynth struct{}

func (fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return []byte("mp3"), nil
}

type memDiagRepo struct{ records []*diagnosis.Record }

func (m *memDiagRepo) Insert(ctx context.Context, rec *diagnosis.Record) (string, error) {
	m.records = append(m.records, rec)
	return "655f1e9a0000000000000001", nil
}

func (m *memDiagRepo) FindByFrontendID(ctx context.Context, id string) (*diagnosis.Record, error) {
	for _, r := range m.records {
		if r.FrontendID == id {
			return r, nil
		}
	}
	return nil, diagnosis.ErrNotFound
}

func (m *memDiagRepo) FindByUserID(ctx context.Context, userID string) ([]*diagnosis.Record, error) {
	var out []*diagnosis.Record
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memUserRepo struct {
	byEmail map[string]*users.User
	byID    map[string]*users.User
	nextID  int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: map[string]*users.User{}, byID: map[string]*users.User{}}
}

func (m *memUserRepo) Insert(ctx context.Context, u *users.User) (string, error) {
	m.nextID++
	id := fmt.Sprintf("user-%d", m.nextID)
	cp := *u
	cp.ID = id
	m.byEmail[cp.Email] = &cp
	m.byID[id] = &cp
	return id, nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, users.ErrNotFound
}

func (m *memUserRepo) FindByID(ctx context.Context, id string) (*users.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, users.ErrNotFound
}

func newTestRouter(t *testing.T) (http.Handler, *memDiagRepo, *fakeVision) {
	t.Helper()
	diagRepo := &memDiagRepo{}
	vision := &fakeVision{}

	pipelineSvc := &pipeline.Service{
		Media:       &fakeMedia{},
		Transcriber: fakeTranscriber{},
		Vision:      vision,
		Speech:      fakeSynth{},
		Repo:        diagRepo,
		Clock:       application.SystemClock{},
	}
	authSvc := authapp.NewService(newMemUserRepo(), "test-secret")
	reportsSvc := reports.NewService(diagRepo, pdf.NewRenderer(t.TempDir(), ""))

	return NewRouter(Deps{
		Pipeline:  pipelineSvc,
		Auth:      authSvc,
		Reports:   reportsSvc,
		Diagnoses: diagRepo,
	}), diagRepo, vision
}

func postJSON(t *testing.T, router http.Handler, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestChatWithoutImage(t *testing.T) {
	router, repo, vision := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", "cough.wav")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fw.Write([]byte("fake-wav"))
	mw.WriteField("frontendId", "abc123")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var out struct {
		Transcript string `json:"transcript"`
		Diagnosis  string `json:"diagnosis"`
		VoiceURL   string `json:"voice_url"`
		AudioURL   string `json:"audio_url"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Diagnosis != "No image provided for me to analyze." {
		t.Fatalf("expected fixed no-image diagnosis, got %q", out.Diagnosis)
	}
	if out.Transcript == "" || out.VoiceURL == "" || out.AudioURL == "" {
		t.Fatalf("incomplete response: %+v", out)
	}
	if vision.calls != 0 {
		t.Fatalf("vision must not be called, got %d", vision.calls)
	}

	rec, err := repo.FindByFrontendID(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("record not stored: %v", err)
	}
	if rec.ImageURL != "" {
		t.Fatalf("imageUrl must be empty, got %s", rec.ImageURL)
	}
}

func TestChatMissingAudio(t *testing.T) {
	router, _, _ := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("frontendId", "abc123")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSignupLoginAndProtectedRoutes(t *testing.T) {
	router, _, _ := newTestRouter(t)

	resp := postJSON(t, router, "/api/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "pw123456",
	}, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("signup: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var signup struct {
		Token string `json:"token"`
	}
	json.Unmarshal(resp.Body.Bytes(), &signup)
	if signup.Token == "" {
		t.Fatal("signup must return a token")
	}

	// duplicate email
	resp = postJSON(t, router, "/api/auth/signup", map[string]string{
		"name": "Eve", "email": "ada@example.com", "password": "other",
	}, nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: expected 409, got %d", resp.Code)
	}

	// wrong password
	resp = postJSON(t, router, "/api/auth/login", map[string]string{
		"email": "ada@example.com", "password": "wrong",
	}, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", resp.Code)
	}

	// protected route without token
	req := httptest.NewRequest(http.MethodGet, "/api/diagnosis", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: expected 401, got %d", rec.Code)
	}

	// save + list with token
	resp = postJSON(t, router, "/api/diagnosis", map[string]any{
		"diagnosis":  "mild cold",
		"transcript": "sneezing",
		"frontendId": "fe-9",
	}, map[string]string{"Authorization": "Bearer " + signup.Token})
	if resp.Code != http.StatusOK {
		t.Fatalf("save diagnosis: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/diagnosis", nil)
	req.Header.Set("Authorization", "Bearer "+signup.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one record, got %d", len(list))
	}
}

func TestDiagnosisPDFRoundTrip(t *testing.T) {
	router, repo, _ := newTestRouter(t)

	repo.Insert(context.Background(), &diagnosis.Record{
		UserID:     "guest",
		FrontendID: "fe-pdf",
		Transcript: "my throat hurts",
		Diagnosis:  "Probably pharyngitis.",
		CreatedAt:  time.Now().UTC(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/diagnosis/pdf/fe-pdf", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	body := resp.Body.Bytes()
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Fatal("response is not a pdf")
	}
	if !bytes.Contains(body, []byte("my throat hurts")) || !bytes.Contains(body, []byte("Probably pharyngitis.")) {
		t.Fatal("pdf must contain the stored transcript and diagnosis verbatim")
	}
}

func TestDiagnosisPDFUnknownID(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/diagnosis/pdf/nope", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestTTSEndpointMissingText(t *testing.T) {
	router, _, _ := newTestRouter(t)

	resp := postJSON(t, router, "/api/tts", map[string]string{"text": "  "}, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestPDFReportAdHocPayload(t *testing.T) {
	router, _, _ := newTestRouter(t)

	resp := postJSON(t, router, "/api/pdf-report", map[string]any{
		"type":       "general",
		"transcript": "headache for two days",
		"diagnosis":  "Tension headache.",
	}, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("response is not a pdf")
	}
	if !strings.Contains(resp.Header().Get("Content-Disposition"), "diagnosis_report_") {
		t.Fatalf("unexpected disposition: %s", resp.Header().Get("Content-Disposition"))
	}
}
