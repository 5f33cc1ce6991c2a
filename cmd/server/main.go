package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Rydhlnst/capstone-project/internal/ai"
	"github.com/Rydhlnst/capstone-project/internal/analysis"
	"github.com/Rydhlnst/capstone-project/internal/chat"
	"github.com/Rydhlnst/capstone-project/internal/config"
	"github.com/Rydhlnst/capstone-project/internal/httpapi"
	"github.com/Rydhlnst/capstone-project/internal/httpapi/handlers"
	"github.com/Rydhlnst/capstone-project/internal/session"
	"github.com/Rydhlnst/capstone-project/internal/store/database"
	"github.com/Rydhlnst/capstone-project/internal/store/rabbitmq"
	"github.com/Rydhlnst/capstone-project/internal/store/redisstore"
	"github.com/Rydhlnst/capstone-project/internal/youtube"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session store
	var store session.Store
	switch cfg.SessionStore {
	case "redis":
		rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, 0)
		if err := rds.Ping(ctx); err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		defer rds.Close()
		store = rds
		log.Printf("session store: redis addr=%s", cfg.RedisAddr)
	default:
		store = session.NewMemoryStore()
		log.Printf("session store: memory")
	}

	// YouTube extraction
	if cfg.YouTubeAPIKey == "" {
		log.Fatalf("YOUTUBE_API_KEY is required")
	}
	ytClient, err := youtube.NewClient(ctx, cfg.YouTubeAPIKey)
	if err != nil {
		log.Fatalf("youtube client: %v", err)
	}
	transcripts := youtube.NewTranscriptFetcher(cfg.TranscriptLanguages...)
	analyzer := analysis.NewService(ytClient, transcripts, time.Duration(cfg.AnalyzeTimeoutSecs)*time.Second)

	// Provider registry
	reg := ai.NewRegistry()
	reg.Register("gemini", func(ctx context.Context) (ai.Provider, error) {
		return ai.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	})
	reg.Register("openrouter", func(ctx context.Context) (ai.Provider, error) {
		_ = ctx
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})

	provider, err := reg.Get(ctx, cfg.AIProvider)
	if err != nil {
		log.Fatalf("ai provider: %v", err)
	}
	log.Printf("ai provider: %s", cfg.AIProvider)

	chatSvc := chat.NewService(store, provider)

	// Relational store (optional)
	var repo *database.Repo
	if cfg.DBDSN != "" {
		gdb, err := database.Connect(cfg.DBDSN)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		repo = database.NewRepo(gdb)

		c := cron.New()
		if _, err := c.AddFunc("@hourly", func() {
			n, err := repo.CleanupExpiredAuthSessions(context.Background())
			if err != nil {
				log.Printf("auth session cleanup: %v", err)
				return
			}
			if n > 0 {
				log.Printf("auth session cleanup: removed %d", n)
			}
		}); err != nil {
			log.Fatalf("cron: %v", err)
		}
		c.Start()
		defer c.Stop()
	}

	// Async job queue (optional)
	var rabbit *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		rabbit, err = rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Fatalf("rabbit: %v", err)
		}
		defer rabbit.Close()
		log.Printf("async analysis queue: %s", cfg.RabbitQueue)
	}

	h := handlers.NewHandler(cfg, store, chatSvc, analyzer, repo, rabbit)
	r := httpapi.NewRouter(h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
