package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Session storage: "memory" or "redis".
	SessionStore  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Relational store; empty DSN disables the database-backed features.
	DBDSN string

	// YouTube extraction
	YouTubeAPIKey       string
	TranscriptLanguages []string
	AnalyzeTimeoutSecs  int

	// AI provider
	AIProvider        string
	GeminiAPIKey      string
	GeminiModel       string
	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterSiteURL string
	OpenRouterAppName string

	// Async analysis queue; empty URL disables the async path.
	RabbitURL   string
	RabbitQueue string

	// Uploads
	UploadDir      string
	UploadMaxBytes int64
}

func Load() Config {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	sessionStore := os.Getenv("SESSION_STORE")
	if sessionStore == "" {
		sessionStore = "memory"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}
	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	langs := []string{"id", "en"}
	if v := os.Getenv("TRANSCRIPT_LANGS"); v != "" {
		langs = splitCSV(v)
	}

	analyzeTimeout := 60
	if v := os.Getenv("ANALYZE_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			analyzeTimeout = n
		}
	}

	aiProvider := os.Getenv("AI_PROVIDER")
	if aiProvider == "" {
		aiProvider = "gemini"
	}
	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = "gemini-2.0-flash"
	}

	openRouterBaseURL := os.Getenv("OPENROUTER_BASE_URL")
	if openRouterBaseURL == "" {
		openRouterBaseURL = "https://openrouter.ai/api/v1"
	}
	openRouterModel := os.Getenv("OPENROUTER_MODEL")
	if openRouterModel == "" {
		openRouterModel = "openrouter/auto"
	}

	rabbitQueue := os.Getenv("RABBIT_QUEUE")
	if rabbitQueue == "" {
		rabbitQueue = "analysis_jobs"
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	uploadMax := int64(100 << 20) // 100MB
	if v := os.Getenv("UPLOAD_MAX_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			uploadMax = int64(n) << 20
		}
	}

	return Config{
		Port: port,

		SessionStore:  sessionStore,
		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		DBDSN: os.Getenv("DB_DSN"),

		YouTubeAPIKey:       os.Getenv("YOUTUBE_API_KEY"),
		TranscriptLanguages: langs,
		AnalyzeTimeoutSecs:  analyzeTimeout,

		AIProvider:        aiProvider,
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       geminiModel,
		OpenRouterBaseURL: openRouterBaseURL,
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   openRouterModel,
		OpenRouterSiteURL: os.Getenv("OPENROUTER_SITE_URL"),
		OpenRouterAppName: os.Getenv("OPENROUTER_APP_NAME"),

		RabbitURL:   os.Getenv("RABBIT_URL"),
		RabbitQueue: rabbitQueue,

		UploadDir:      uploadDir,
		UploadMaxBytes: uploadMax,
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
