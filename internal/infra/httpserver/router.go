package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	authapp "github.com/medicare-ai/aidoctor-backend/internal/application/auth"
	"github.com/medicare-ai/aidoctor-backend/internal/application/pipeline"
	"github.com/medicare-ai/aidoctor-backend/internal/application/reports"
	authpkg "github.com/medicare-ai/aidoctor-backend/internal/auth"
	"github.com/medicare-ai/aidoctor-backend/internal/domain/diagnosis"
	"github.com/medicare-ai/aidoctor-backend/internal/domain/users"
	"github.com/medicare-ai/aidoctor-backend/internal/middleware"
)

const maxMultipartMemory = 32 << 20

// Deps carries the process-wide services the router dispatches to.
type Deps struct {
	Pipeline  *pipeline.Service
	Auth      *authapp.Service
	Reports   *reports.Service
	Diagnoses diagnosis.Repository
	Health    http.HandlerFunc

	// Static dirs; empty when the s3 backend serves media directly.
	UploadDir string
	TempDir   string
}

type Router struct {
	deps Deps
}

func NewRouter(deps Deps) http.Handler {
	r := &Router{deps: deps}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}))
	mux.Use(middleware.Logging)
	mux.Use(middleware.MetricsMiddleware)

	if deps.Health != nil {
		mux.Get("/health", deps.Health)
	}
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/api", func(api chi.Router) {
		api.Post("/chat", r.wrap(r.handleChat))
		api.Post("/tts", r.wrap(r.handleTTS))

		api.Post("/auth/signup", r.wrap(r.handleSignup))
		api.Post("/auth/login", r.wrap(r.handleLogin))
		api.Get("/auth/me", r.wrap(r.handleMe))

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.BearerAuth(deps.Auth))
			protected.Post("/diagnosis", r.wrap(r.handleSaveDiagnosis))
			protected.Get("/diagnosis", r.wrap(r.handleListDiagnoses))
		})

		api.Get("/diagnosis/pdf/{id}", r.wrap(r.handleDiagnosisPDF))
		api.Post("/pdf-report", r.wrap(r.handlePDFReport))
	})

	// read-only artifact mounts
	if deps.TempDir != "" {
		fileServer(mux, "/temp", deps.TempDir)
	}
	if deps.UploadDir != "" {
		fileServer(mux, "/uploads", deps.UploadDir)
	}

	return mux
}

func fileServer(mux chi.Router, prefix, dir string) {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	mux.Get(prefix+"/*", func(w http.ResponseWriter, r *http.Request) {
		fs.ServeHTTP(w, r)
	})
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap translates domain errors to status codes; everything unknown is
// an opaque 500 so callers cannot tell which upstream went down.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var bad pipeline.ErrBadInput
		switch {
		case errors.As(err, &bad):
			respondError(w, http.StatusBadRequest, bad.Msg)
		case errors.Is(err, diagnosis.ErrNotFound):
			respondError(w, http.StatusNotFound, "diagnosis not found")
		case errors.Is(err, users.ErrEmailTaken):
			respondError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, authapp.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, authpkg.ErrInvalidToken):
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
		default:
			respondError(w, http.StatusInternalServerError, "internal server error")
		}
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	_ = respondJSON(w, status, map[string]string{"error": message})
}

// POST /api/chat - multipart: audio (required), image (optional),
// symptom (optional), frontendId (required)
func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseMultipartForm(maxMultipartMemory); err != nil {
		return pipeline.ErrBadInput{Msg: "invalid multipart form"}
	}

	cmd := pipeline.ChatCommand{
		Symptom:    req.FormValue("symptom"),
		FrontendID: req.FormValue("frontendId"),
	}

	audioFile, audioHeader, err := req.FormFile("audio")
	if err != nil {
		return pipeline.ErrBadInput{Msg: "audio file is required"}
	}
	defer audioFile.Close()
	cmd.Audio = audioFile
	cmd.AudioName = audioHeader.Filename

	if imageFile, imageHeader, err := req.FormFile("image"); err == nil {
		defer imageFile.Close()
		cmd.Image = imageFile
		cmd.ImageName = imageHeader.Filename
	}

	res, err := r.deps.Pipeline.Chat(req.Context(), cmd)
	if err != nil {
		return err
	}
	middleware.IncrementPipelines()

	return respondJSON(w, http.StatusOK, res)
}

// POST /api/tts - {"text": "..."} -> audio stream
func (r *Router) handleTTS(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return pipeline.ErrBadInput{Msg: "invalid json body"}
	}

	stored, err := r.deps.Pipeline.Speak(req.Context(), body.Text)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeFile(w, req, stored.Path)
	return nil
}

// POST /api/auth/signup
func (r *Router) handleSignup(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return pipeline.ErrBadInput{Msg: "invalid json body"}
	}
	if body.Name == "" || body.Email == "" || body.Password == "" {
		return pipeline.ErrBadInput{Msg: "name, email and password are required"}
	}

	token, err := r.deps.Auth.Signup(req.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, map[string]string{
		"message": "Signup successful",
		"token":   token,
	})
}

// POST /api/auth/login
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return pipeline.ErrBadInput{Msg: "invalid json body"}
	}
	if body.Email == "" || body.Password == "" {
		return pipeline.ErrBadInput{Msg: "email and password are required"}
	}

	token, err := r.deps.Auth.Login(req.Context(), body.Email, body.Password)
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful",
		"token":   token,
	})
}

// GET /api/auth/me - resolves the bearer token to the full user record
func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) error {
	auth := req.Header.Get("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	if token == "" || token == auth {
		return authpkg.ErrInvalidToken
	}

	u, err := r.deps.Auth.ResolveUser(req.Context(), token)
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, u)
}

// POST /api/diagnosis (token-protected)
func (r *Router) handleSaveDiagnosis(w http.ResponseWriter, req *http.Request) error {
	var rec diagnosis.Record
	if err := json.NewDecoder(req.Body).Decode(&rec); err != nil {
		return pipeline.ErrBadInput{Msg: "invalid json body"}
	}
	rec.UserID = middleware.GetUserID(req.Context())

	if _, err := r.deps.Diagnoses.Insert(req.Context(), &rec); err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, map[string]string{"message": "Diagnosis saved"})
}

// GET /api/diagnosis (token-protected)
func (r *Router) handleListDiagnoses(w http.ResponseWriter, req *http.Request) error {
	records, err := r.deps.Diagnoses.FindByUserID(req.Context(), middleware.GetUserID(req.Context()))
	if err != nil {
		return err
	}
	if records == nil {
		records = []*diagnosis.Record{}
	}
	return respondJSON(w, http.StatusOK, records)
}

// GET /api/diagnosis/pdf/{id} - id is the client correlation id
func (r *Router) handleDiagnosisPDF(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	path, err := r.deps.Reports.ByFrontendID(req.Context(), id)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=diagnosis-report-%s.pdf", id))
	http.ServeFile(w, req, path)
	return nil
}

// POST /api/pdf-report - ad hoc payload, enhanced renderer
func (r *Router) handlePDFReport(w http.ResponseWriter, req *http.Request) error {
	var payload map[string]any
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		return pipeline.ErrBadInput{Msg: "invalid json body"}
	}

	path, filename, err := r.deps.Reports.AdHoc(req.Context(), payload)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	http.ServeFile(w, req, path)
	return nil
}
