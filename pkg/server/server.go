// Package server provides the public entry point for initializing the
// Milan agent core server.
//
// This package exists in pkg/ (not internal/) so embedding services can
// compose the full server with their own middleware:
//
//	srv, err := server.New(ctx)
//	http.ListenAndServe(":8080", srv.Handler)
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/milan-ai/milan-core/internal/agents"
	"github.com/milan-ai/milan-core/internal/api"
	"github.com/milan-ai/milan-core/internal/api/handlers"
	"github.com/milan-ai/milan-core/internal/config"
	"github.com/milan-ai/milan-core/internal/embeddings"
	"github.com/milan-ai/milan-core/internal/executor"
	"github.com/milan-ai/milan-core/internal/llm"
	"github.com/milan-ai/milan-core/internal/orchestrator"
	"github.com/milan-ai/milan-core/internal/retention"
	"github.com/milan-ai/milan-core/internal/store"
	"github.com/milan-ai/milan-core/internal/telemetry"
)

// Server holds the initialized Milan agent core.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Store is the execution log store.
	Store store.Store

	// Orchestrator dispatches agent requests; exposed for embedding
	// services that call agents without going through HTTP.
	Orchestrator *orchestrator.Orchestrator

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all components from environment configuration.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the agent core with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	dataStore, err := newStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	gateway := llm.New(cfg.LLM)
	embedder := embeddings.NewFromConfig(cfg.LLM)
	if embedder != nil {
		log.Info().Str("provider", embedder.Kind()).Msg("✅ Embedding provider initialized")
	} else {
		log.Warn().Msg("No embedding provider configured, vector scoring degrades to neutral")
	}

	exec := executor.New(dataStore)
	orch := orchestrator.New(exec, gateway,
		agents.NewProfileAgent(gateway, embedder),
		agents.NewMatchingAgent(gateway),
		agents.NewConversationAgent(gateway),
		agents.NewSafetyAgent(gateway),
		agents.NewFraudAgent(gateway),
		agents.NewImageAgent(),
		agents.NewSubscriptionAgent(),
		agents.NewAnalyticsAgent(),
		agents.NewAdminAgent(),
	)

	if cfg.Retention.Days > 0 {
		janitor := retention.NewJanitor(dataStore, cfg.Retention.Days, cfg.Retention.Interval)
		if cfg.Retention.ArchivePath != "" {
			janitor.SetArchiver(retention.NewLocalFileArchiver(cfg.Retention.ArchivePath, cfg.Retention.Compress))
		}
		go janitor.Start(ctx)
	}

	h := handlers.New(dataStore, orch)
	router := api.NewRouter(cfg, h)

	return &Server{
		Handler:      router,
		Store:        dataStore,
		Orchestrator: orch,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}

// newStore picks PostgreSQL when DATABASE_URL is set, otherwise the
// in-memory store.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Database.URL != "" {
		return store.NewPostgresStore(ctx, cfg.Database.URL)
	}
	log.Info().Msg("✅ In-memory store initialized")
	return store.NewMemoryStore(), nil
}
