package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port    int    `yaml:"port"`
		BaseURL string `yaml:"baseURL"`
	} `yaml:"server"`

	Mongo struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`

	Storage struct {
		Backend   string `yaml:"backend"` // "local" or "s3"
		UploadDir string `yaml:"uploadDir"`
		TempDir   string `yaml:"tempDir"`

		Minio struct {
			Endpoint   string `yaml:"endpoint"`
			AccessKey  string `yaml:"accessKey"`
			SecretKey  string `yaml:"secretKey"`
			BucketName string `yaml:"bucketName"`
			Region     string `yaml:"region"`
			UseSSL     bool   `yaml:"useSSL"`
		} `yaml:"minio"`
	} `yaml:"storage"`

	Groq struct {
		APIKey          string `yaml:"apiKey"`
		BaseURL         string `yaml:"baseURL"`
		TranscribeModel string `yaml:"transcribeModel"`
		VisionModel     string `yaml:"visionModel"`
	} `yaml:"groq"`

	ElevenLabs struct {
		APIKey  string `yaml:"apiKey"`
		VoiceID string `yaml:"voiceID"`
		Model   string `yaml:"model"`
	} `yaml:"elevenlabs"`

	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
	} `yaml:"auth"`
}

// Load reads the yaml config file and applies environment overrides for
// secrets so keys can live in .env instead of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		c.Groq.APIKey = v
	}
	if v := os.Getenv("ELEVENLABS_API_KEY"); v != "" {
		c.ElevenLabs.APIKey = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "ai_doctor"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "local"
	}
	if c.Storage.UploadDir == "" {
		c.Storage.UploadDir = "uploads"
	}
	if c.Storage.TempDir == "" {
		c.Storage.TempDir = "temp"
	}
	if c.Groq.BaseURL == "" {
		c.Groq.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.Groq.TranscribeModel == "" {
		c.Groq.TranscribeModel = "whisper-large-v3"
	}
	if c.Groq.VisionModel == "" {
		c.Groq.VisionModel = "meta-llama/llama-4-scout-17b-16e-instruct"
	}
	if c.ElevenLabs.VoiceID == "" {
		c.ElevenLabs.VoiceID = "9BWtsMINqrJLrRacOk9x" // Aria
	}
	if c.ElevenLabs.Model == "" {
		c.ElevenLabs.Model = "eleven_turbo_v2"
	}
}
