// In-memory Store implementation, used as a fallback when PostgreSQL
// is not available (local dev, tests).
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/milan-ai/milan-core/pkg/models"
)

// MemoryStore implements Store with an append-only in-memory log.
type MemoryStore struct {
	mu   sync.RWMutex
	logs []*models.AgentLog // oldest first
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) CreateAgentLog(ctx context.Context, entry *models.AgentLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	clone := *entry
	s.logs = append(s.logs, &clone)
	return nil
}

func (s *MemoryStore) GetAgentLog(ctx context.Context, id string) (*models.AgentLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.logs {
		if entry.ID == id {
			clone := *entry
			return &clone, nil
		}
	}
	return nil, &ErrNotFound{Entity: "agent log", Key: id}
}

func (s *MemoryStore) ListAgentLogs(ctx context.Context, filter AgentLogFilter) ([]models.AgentLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	// Newest first.
	out := make([]models.AgentLog, 0, limit)
	for i := len(s.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if matchesFilter(s.logs[i], filter) {
			out = append(out, *s.logs[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) CountAgentLogs(ctx context.Context, filter AgentLogFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, entry := range s.logs {
		if matchesFilter(entry, filter) {
			count++
		}
	}
	return count, nil
}

func matchesFilter(entry *models.AgentLog, filter AgentLogFilter) bool {
	if filter.AgentName != "" && entry.AgentName != filter.AgentName {
		return false
	}
	if filter.Action != "" && entry.Action != filter.Action {
		return false
	}
	if filter.UserID != "" && entry.UserID != filter.UserID {
		return false
	}
	if filter.SessionID != "" && entry.SessionID != filter.SessionID {
		return false
	}
	if filter.Success != nil && entry.Success != *filter.Success {
		return false
	}
	return true
}

func (s *MemoryStore) ListAgentLogsBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.AgentLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	out := make([]models.AgentLog, 0, limit)
	for _, entry := range s.logs {
		if len(out) >= limit {
			break
		}
		if entry.CreatedAt.Before(cutoff) {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (s *MemoryStore) DeleteAgentLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.logs[:0]
	var deleted int64
	for _, entry := range s.logs {
		if entry.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, entry)
	}
	s.logs = kept
	return deleted, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Migrate(ctx context.Context) error { return nil }
