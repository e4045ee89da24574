// Package llm is the single choke point between the agents and whatever
// LLM provider the deployment has credentials for. Agents never talk to
// a provider directly: they build a Request, the gateway picks the
// configured driver, applies the retry policy, and hands back plain
// text plus token usage. Provider differences (endpoints, auth headers,
// JSON-mode flags) stay inside the drivers.
package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/milan-ai/milan-core/internal/config"
	"github.com/milan-ai/milan-core/pkg/models"
)

// Request is a provider-agnostic completion request. JSONMode is a hint
// only: drivers that support structured output enable it, others ignore
// it, and callers must still run the response through ParseJSON.
type Request struct {
	Messages    []models.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature,omitempty"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
	JSONMode    bool                 `json:"json_mode,omitempty"`
}

// Response is a provider-agnostic completion response.
type Response struct {
	Content string            `json:"content"`
	Model   string            `json:"model"`
	Usage   models.TokenUsage `json:"usage"`
}

// Client is the surface agents depend on. *Gateway implements it; tests
// substitute fakes.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Configured() bool
}

// driver is one provider backend.
type driver interface {
	name() string
	complete(ctx context.Context, req Request) (*Response, error)
}

// Gateway routes completion requests to the configured provider with
// retry on transient failures.
type Gateway struct {
	driver  driver
	policy  RetryPolicy
	timeout time.Duration
}

// New builds a gateway from config. Provider selection is by credential
// presence, in order: OpenAI, Azure OpenAI, Anthropic, Ollama. With no
// credential the gateway is still usable but every Complete returns
// ErrNotConfigured.
func New(cfg config.LLMConfig) *Gateway {
	g := &Gateway{
		policy: RetryPolicy{
			MaxAttempts:  cfg.MaxRetries,
			InitialDelay: cfg.RetryBaseDelay,
			MaxDelay:     30 * time.Second,
		},
		timeout: cfg.CallTimeout,
	}
	if g.policy.MaxAttempts < 1 {
		g.policy = DefaultRetryPolicy()
	}
	if g.timeout <= 0 {
		g.timeout = 30 * time.Second
	}

	switch {
	case cfg.OpenAIKey != "":
		g.driver = newOpenAIDriver(cfg.OpenAIKey, cfg.Model)
	case cfg.AzureKey != "" && cfg.AzureEndpoint != "":
		g.driver = newAzureDriver(cfg.AzureKey, cfg.AzureEndpoint, cfg.Model)
	case cfg.AnthropicKey != "":
		g.driver = newAnthropicDriver(cfg.AnthropicKey, cfg.Model)
	case cfg.OllamaEndpoint != "":
		g.driver = newOllamaDriver(cfg.OllamaEndpoint, cfg.Model)
	default:
		log.Warn().Msg("No LLM provider configured, agents will run in degraded mode")
	}
	if g.driver != nil {
		log.Info().Str("provider", g.driver.name()).Str("model", cfg.Model).Msg("✅ LLM gateway initialized")
	}
	return g
}

// newWithDriver is the test seam.
func newWithDriver(d driver, policy RetryPolicy, timeout time.Duration) *Gateway {
	return &Gateway{driver: d, policy: policy, timeout: timeout}
}

// Configured reports whether a provider backend is available.
func (g *Gateway) Configured() bool { return g.driver != nil }

// Complete sends the request to the configured provider, retrying
// transient failures per the policy. Missing configuration fails fast
// with ErrNotConfigured; exhausted retries surface as a *ProviderError
// wrapping the last attempt's error.
func (g *Gateway) Complete(ctx context.Context, req Request) (*Response, error) {
	if g.driver == nil {
		return nil, ErrNotConfigured
	}

	var resp *Response
	attempts := 0
	op := func() error {
		attempts++
		cctx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		r, err := g.driver.complete(cctx, req)
		if err != nil {
			if ae, ok := err.(*apiError); ok && !ae.transient() {
				return backoff.Permanent(err)
			}
			log.Warn().
				Str("provider", g.driver.name()).
				Int("attempt", attempts).
				Err(err).
				Msg("LLM call failed, retrying")
			return err
		}
		resp = r
		return nil
	}

	if err := backoff.Retry(op, g.policy.backOff(ctx)); err != nil {
		return nil, &ProviderError{Provider: g.driver.name(), Attempts: attempts, Err: err}
	}
	return resp, nil
}
