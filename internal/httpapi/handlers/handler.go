package handlers

import (
	"context"

	"github.com/Rydhlnst/capstone-project/internal/analysis"
	"github.com/Rydhlnst/capstone-project/internal/chat"
	"github.com/Rydhlnst/capstone-project/internal/config"
	"github.com/Rydhlnst/capstone-project/internal/session"
	"github.com/Rydhlnst/capstone-project/internal/store/database"
	"github.com/Rydhlnst/capstone-project/internal/store/rabbitmq"
)

// Analyzer is the slice of the analysis pipeline the endpoints need.
type Analyzer interface {
	AnalyzeURL(ctx context.Context, rawURL string) (*analysis.Result, error)
	AnalyzeFile(ctx context.Context, storedPath, originalName, contentType string, size int64) (*analysis.Result, error)
}

type Handler struct {
	Cfg      config.Config
	Store    session.Store
	ChatSvc  *chat.Service
	Analyzer Analyzer

	// Optional: nil when the relational store / broker is not configured.
	Repo   *database.Repo
	Rabbit *rabbitmq.Publisher
}

func NewHandler(cfg config.Config, store session.Store, chatSvc *chat.Service, analyzer Analyzer, repo *database.Repo, rabbit *rabbitmq.Publisher) *Handler {
	return &Handler{
		Cfg:      cfg,
		Store:    store,
		ChatSvc:  chatSvc,
		Analyzer: analyzer,
		Repo:     repo,
		Rabbit:   rabbit,
	}
}
