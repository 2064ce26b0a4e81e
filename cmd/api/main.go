package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/medicare-ai/aidoctor-backend/internal/application"
	authapp "github.com/medicare-ai/aidoctor-backend/internal/application/auth"
	"github.com/medicare-ai/aidoctor-backend/internal/application/pipeline"
	"github.com/medicare-ai/aidoctor-backend/internal/application/reports"
	"github.com/medicare-ai/aidoctor-backend/internal/config"
	"github.com/medicare-ai/aidoctor-backend/internal/domain/media"
	"github.com/medicare-ai/aidoctor-backend/internal/infra/ai/groq"
	mongop "github.com/medicare-ai/aidoctor-backend/internal/infra/db/mongo"
	"github.com/medicare-ai/aidoctor-backend/internal/infra/httpserver"
	"github.com/medicare-ai/aidoctor-backend/internal/infra/pdf"
	speechfb "github.com/medicare-ai/aidoctor-backend/internal/infra/speech"
	"github.com/medicare-ai/aidoctor-backend/internal/infra/speech/elevenlabs"
	"github.com/medicare-ai/aidoctor-backend/internal/infra/speech/gtts"
	"github.com/medicare-ai/aidoctor-backend/internal/infra/storage"
	"github.com/medicare-ai/aidoctor-backend/internal/middleware"
)

func main() {
	// secrets may live in .env
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect Mongo
	client, err := mongop.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		log.Fatalf("mongo connect error: %v", err)
	}
	defer func() {
		ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx2)
	}()
	db := client.Database(cfg.Mongo.Database)

	diagRepo := mongop.NewDiagnosisRepository(db)
	userRepo := mongop.NewUserRepository(db)

	// media store backend
	var store media.Store
	var uploadDir, tempDir string
	switch cfg.Storage.Backend {
	case "s3":
		m := cfg.Storage.Minio
		store, err = storage.NewMinioStore(ctx, m.Endpoint, m.Region, m.BucketName, m.AccessKey, m.SecretKey, m.UseSSL)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
	default:
		local, lerr := storage.NewLocalStore(cfg.Storage.UploadDir, cfg.Storage.TempDir, cfg.Server.BaseURL)
		if lerr != nil {
			log.Fatalf("storage init error: %v", lerr)
		}
		store = local
		uploadDir = cfg.Storage.UploadDir
		tempDir = cfg.Storage.TempDir
	}

	// AI clients built once per process
	aiClient := groq.NewClient(cfg.Groq.APIKey, cfg.Groq.BaseURL, cfg.Groq.TranscribeModel, cfg.Groq.VisionModel)

	synth := speechfb.NewFallbackSynthesizer(
		elevenlabs.NewClient(cfg.ElevenLabs.APIKey, cfg.ElevenLabs.VoiceID, cfg.ElevenLabs.Model),
		gtts.NewClient(),
	)
	synth.OnFallback = middleware.IncrementTTSFallbacks

	pipelineSvc := &pipeline.Service{
		Media:       store,
		Transcriber: aiClient,
		Vision:      aiClient,
		Speech:      synth,
		Repo:        diagRepo,
		Clock:       application.SystemClock{},
	}
	authSvc := authapp.NewService(userRepo, cfg.Auth.JWTSecret)
	reportsSvc := reports.NewService(diagRepo, pdf.NewRenderer(cfg.Storage.TempDir, "assets/logo.png"))

	health := middleware.HealthHandler(map[string]middleware.HealthChecker{
		"mongo": &middleware.DatabaseHealthChecker{
			Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
		},
	})

	mux := httpserver.NewRouter(httpserver.Deps{
		Pipeline:  pipelineSvc,
		Auth:      authSvc,
		Reports:   reportsSvc,
		Diagnoses: diagRepo,
		Health:    health,
		UploadDir: uploadDir,
		TempDir:   tempDir,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
		// pipeline responses wait on several upstream providers, so the
		// write timeout is generous
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
