// Package executor wraps agent execution in a uniform envelope:
// timing, panic recovery, tracing, and one persisted log entry per
// call. Every request the orchestrator dispatches goes through here,
// so the log table is a complete execution history.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/milan-ai/milan-core/internal/agents"
	"github.com/milan-ai/milan-core/internal/store"
	"github.com/milan-ai/milan-core/pkg/models"
)

// Executor runs agents and records an AgentLog for every execution.
type Executor struct {
	store store.Store
}

// New creates an executor writing logs to the given store.
func New(s store.Store) *Executor {
	return &Executor{store: s}
}

// Execute runs one action against an agent and returns the result
// envelope. The envelope always comes back non-nil; agent errors and
// panics land in Error with Success false rather than propagating.
func (e *Executor) Execute(ctx context.Context, agent agents.Agent, action string, payload map[string]interface{}, userID, sessionID string) *models.AgentResult {
	tracer := otel.Tracer("milan-core/executor")
	ctx, span := tracer.Start(ctx, "agent.execute")
	span.SetAttributes(
		attribute.String("agent.name", agent.Name()),
		attribute.String("agent.action", action),
	)
	defer span.End()

	start := time.Now()
	result, err := e.runSafely(ctx, agent, action, payload)
	elapsed := time.Since(start).Milliseconds()

	envelope := &models.AgentResult{
		AgentName:       agent.Name(),
		AgentVersion:    agent.Version(),
		Action:          action,
		ExecutionTimeMs: elapsed,
	}

	if err != nil {
		envelope.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn().
			Str("agent", agent.Name()).
			Str("action", action).
			Int64("elapsed_ms", elapsed).
			Err(err).
			Msg("Agent execution failed")
	} else {
		envelope.Success = true
		envelope.Result = result
		envelope.TokensUsed = tokensUsed(result)
		log.Info().
			Str("agent", agent.Name()).
			Str("action", action).
			Int64("elapsed_ms", elapsed).
			Int("tokens", envelope.TokensUsed).
			Msg("Agent execution complete")
	}

	e.record(ctx, envelope, payload, userID, sessionID)
	return envelope
}

// runSafely converts agent panics into errors so one misbehaving agent
// cannot take down the server.
func (e *Executor) runSafely(ctx context.Context, agent agents.Agent, action string, payload map[string]interface{}) (result map[string]interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent %s panicked on %s: %v", agent.Name(), action, r)
		}
	}()
	return agent.Process(ctx, action, payload)
}

// record persists the execution log. Logging is best effort: a storage
// outage must not fail the request that already produced a result.
func (e *Executor) record(ctx context.Context, envelope *models.AgentResult, payload map[string]interface{}, userID, sessionID string) {
	if e.store == nil {
		return
	}

	entry := &models.AgentLog{
		ID:              uuid.NewString(),
		AgentName:       envelope.AgentName,
		AgentVersion:    envelope.AgentVersion,
		Action:          envelope.Action,
		UserID:          userID,
		SessionID:       sessionID,
		Payload:         payload,
		Result:          envelope.Result,
		Success:         envelope.Success,
		Error:           envelope.Error,
		ExecutionTimeMs: envelope.ExecutionTimeMs,
		TokensUsed:      envelope.TokensUsed,
		CreatedAt:       time.Now().UTC(),
	}

	if err := e.store.CreateAgentLog(ctx, entry); err != nil {
		log.Warn().Err(err).Str("agent", envelope.AgentName).Msg("Failed to persist agent log")
	}
}

func tokensUsed(result map[string]interface{}) int {
	switch v := result["tokens_used"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
