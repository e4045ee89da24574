// Package store provides the storage interface and implementations for
// the Milan agent core. Execution logs go to PostgreSQL in production;
// an in-memory store backs local dev and tests.
package store

import (
	"context"
	"time"

	"github.com/milan-ai/milan-core/pkg/models"
)

// Store is the persistence interface the executor and API depend on.
// Handlers never touch a database directly, which keeps the in-memory
// (tests) and PostgreSQL (production) implementations swappable.
type Store interface {
	AgentLogStore

	// Ping checks if the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the store.
	Close() error

	// Migrate runs schema migrations.
	Migrate(ctx context.Context) error
}

// ── Agent Log Store ─────────────────────────────────────────

// AgentLogFilter defines optional filters for listing execution logs.
type AgentLogFilter struct {
	AgentName string // exact match on agent_name
	Action    string // exact match on action
	UserID    string // exact match on user_id
	SessionID string // exact match on session_id
	Success   *bool  // nil = both outcomes
	Limit     int    // max results (default 100)
}

// AgentLogStore persists one record per agent execution.
type AgentLogStore interface {
	CreateAgentLog(ctx context.Context, entry *models.AgentLog) error
	GetAgentLog(ctx context.Context, id string) (*models.AgentLog, error)
	ListAgentLogs(ctx context.Context, filter AgentLogFilter) ([]models.AgentLog, error)
	CountAgentLogs(ctx context.Context, filter AgentLogFilter) (int64, error)

	// ListAgentLogsBefore returns up to limit logs created before cutoff,
	// oldest first. Used by the retention janitor to archive before purging.
	ListAgentLogsBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.AgentLog, error)

	// DeleteAgentLogsBefore removes all logs created before cutoff and
	// returns how many were deleted.
	DeleteAgentLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ── Errors ──────────────────────────────────────────────────

// ErrNotFound is returned when a requested entity does not exist.
type ErrNotFound struct {
	Entity string
	Key    string
}

func (e *ErrNotFound) Error() string {
	return e.Entity + " not found: " + e.Key
}
