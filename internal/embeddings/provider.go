// Package embeddings generates the profile vectors that back semantic
// compatibility scoring. OpenAI (text-embedding-3-small/large) and
// Ollama (nomic-embed-text) are supported; deployments without either
// credential get a nil provider and the scorer falls back to its
// neutral vector score.
package embeddings

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/milan-ai/milan-core/internal/config"
)

// Provider is one embedding backend.
type Provider interface {
	Kind() string
	Dimensions() int
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	HealthCheck(ctx context.Context) error
}

// NewFromConfig selects a provider from available credentials: OpenAI
// first, then Ollama. Returns nil when neither is configured.
func NewFromConfig(cfg config.LLMConfig) Provider {
	switch {
	case cfg.OpenAIKey != "":
		p := NewOpenAIProvider(cfg.OpenAIKey, cfg.EmbeddingModel)
		log.Info().Str("provider", p.Kind()).Int("dims", p.Dimensions()).Msg("✅ Embedding provider initialized")
		return p
	case cfg.OllamaEndpoint != "":
		p := NewOllamaProvider(cfg.OllamaEndpoint, "nomic-embed-text")
		log.Info().Str("provider", p.Kind()).Int("dims", p.Dimensions()).Msg("✅ Embedding provider initialized")
		return p
	default:
		return nil
	}
}

// EmbedOne embeds a single text through a batch provider.
func EmbedOne(ctx context.Context, p Provider, text string) ([]float64, error) {
	if p == nil {
		return nil, fmt.Errorf("no embedding provider configured")
	}
	vecs, err := p.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vecs))
	}
	return vecs[0], nil
}
