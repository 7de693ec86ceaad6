package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all server settings in correct types.
type Config struct {
	Port          string
	UploadDir     string
	ProcessedDir  string
	MaxUploadSize int64

	SupabaseURL string
	SupabaseKey string

	OpenAIAPIKey string
	WhisperModel string

	LingoAPIURL string
	LingoAPIKey string

	PipelineWorkers  int
	PipelineQueueLen int
}

// DefaultMaxUploadSize is the video size ceiling. Oversized uploads are
// rejected and the temp file removed.
const DefaultMaxUploadSize = 1024 * 1024 * 1024 // 1 GB

// Load reads .env (if present) and the environment into a Config.
func Load() *Config {
	// Missing .env is fine; env vars may come from the shell.
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", ":5000"),
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
		ProcessedDir:     getEnv("PROCESSED_DIR", "processed"),
		MaxUploadSize:    int64(getEnvAsInt("MAX_UPLOAD_MB", 1024)) * 1024 * 1024,
		SupabaseURL:      os.Getenv("SUPABASE_URL"),
		SupabaseKey:      getEnv("SUPABASE_SERVICE_KEY", os.Getenv("SUPABASE_ANON_KEY")),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		WhisperModel:     getEnv("WHISPER_MODEL", "whisper-1"),
		LingoAPIURL:      getEnv("LINGO_API_URL", "https://engine.lingo.dev"),
		LingoAPIKey:      os.Getenv("LINGO_API_KEY"),
		PipelineWorkers:  getEnvAsInt("PIPELINE_WORKERS", 2),
		PipelineQueueLen: getEnvAsInt("PIPELINE_QUEUE_LEN", 64),
	}

	validate(cfg)

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if val, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return val
	}
	return fallback
}

// validate ensures the server won't crash due to misconfiguration and that
// working directories exist.
func validate(cfg *Config) {
	if cfg.PipelineWorkers < 1 {
		cfg.PipelineWorkers = 1
	}
	if cfg.PipelineQueueLen < 1 {
		cfg.PipelineQueueLen = 64
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	for _, dir := range []string{cfg.UploadDir, cfg.ProcessedDir} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			os.MkdirAll(dir, 0o755)
		}
	}
}
