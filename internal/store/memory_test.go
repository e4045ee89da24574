package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/milan-ai/milan-core/internal/store"
	"github.com/milan-ai/milan-core/pkg/models"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s := store.NewMemoryStore()
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleLog(agent, action, userID string, success bool) *models.AgentLog {
	return &models.AgentLog{
		AgentName:    agent,
		AgentVersion: "1.0.0",
		Action:       action,
		UserID:       userID,
		Payload:      map[string]interface{}{"k": "v"},
		Result:       map[string]interface{}{"ok": success},
		Success:      success,
	}
}

// ─── Agent Log CRUD ──────────────────────────────────────────

func TestCreateAndGetAgentLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := sampleLog("matching", "find_matches", "user_1", true)
	if err := s.CreateAgentLog(ctx, entry); err != nil {
		t.Fatalf("CreateAgentLog() error = %v", err)
	}
	if entry.ID == "" {
		t.Fatal("CreateAgentLog() did not assign an ID")
	}
	if entry.CreatedAt.IsZero() {
		t.Fatal("CreateAgentLog() did not assign CreatedAt")
	}

	got, err := s.GetAgentLog(ctx, entry.ID)
	if err != nil {
		t.Fatalf("GetAgentLog() error = %v", err)
	}
	if got.AgentName != "matching" {
		t.Errorf("GetAgentLog().AgentName = %q, want %q", got.AgentName, "matching")
	}
	if got.Action != "find_matches" {
		t.Errorf("GetAgentLog().Action = %q, want %q", got.Action, "find_matches")
	}
}

func TestGetAgentLog_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetAgentLog(context.Background(), "missing")
	if err == nil {
		t.Fatal("GetAgentLog() expected error for missing id")
	}
	var notFound *store.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("GetAgentLog() error = %T, want *store.ErrNotFound", err)
	}
	if notFound.Key != "missing" {
		t.Errorf("ErrNotFound.Key = %q, want %q", notFound.Key, "missing")
	}
}

func TestCreateAgentLog_KeepsCallerTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	entry := sampleLog("safety", "moderate_content", "user_2", true)
	entry.CreatedAt = at

	if err := s.CreateAgentLog(ctx, entry); err != nil {
		t.Fatalf("CreateAgentLog() error = %v", err)
	}
	got, err := s.GetAgentLog(ctx, entry.ID)
	if err != nil {
		t.Fatalf("GetAgentLog() error = %v", err)
	}
	if !got.CreatedAt.Equal(at) {
		t.Errorf("GetAgentLog().CreatedAt = %v, want %v", got.CreatedAt, at)
	}
}

// ─── Listing and filtering ───────────────────────────────────

func TestListAgentLogs_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, action := range []string{"first", "second", "third"} {
		if err := s.CreateAgentLog(ctx, sampleLog("matching", action, "user_1", true)); err != nil {
			t.Fatalf("CreateAgentLog() error = %v", err)
		}
	}

	logs, err := s.ListAgentLogs(ctx, store.AgentLogFilter{})
	if err != nil {
		t.Fatalf("ListAgentLogs() error = %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("ListAgentLogs() returned %d entries, want 3", len(logs))
	}
	if logs[0].Action != "third" || logs[2].Action != "first" {
		t.Errorf("ListAgentLogs() order = [%s %s %s], want newest first",
			logs[0].Action, logs[1].Action, logs[2].Action)
	}
}

func TestListAgentLogs_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.CreateAgentLog(ctx, sampleLog("matching", "find_matches", "user_1", true))
	s.CreateAgentLog(ctx, sampleLog("safety", "moderate_content", "user_1", false))
	s.CreateAgentLog(ctx, sampleLog("safety", "check_message", "user_2", true))

	logs, err := s.ListAgentLogs(ctx, store.AgentLogFilter{AgentName: "safety"})
	if err != nil {
		t.Fatalf("ListAgentLogs() error = %v", err)
	}
	if len(logs) != 2 {
		t.Errorf("ListAgentLogs(agent=safety) returned %d entries, want 2", len(logs))
	}

	failed := false
	logs, err = s.ListAgentLogs(ctx, store.AgentLogFilter{Success: &failed})
	if err != nil {
		t.Fatalf("ListAgentLogs() error = %v", err)
	}
	if len(logs) != 1 || logs[0].Action != "moderate_content" {
		t.Errorf("ListAgentLogs(success=false) = %+v, want the single failed entry", logs)
	}

	logs, err = s.ListAgentLogs(ctx, store.AgentLogFilter{UserID: "user_2"})
	if err != nil {
		t.Fatalf("ListAgentLogs() error = %v", err)
	}
	if len(logs) != 1 || logs[0].AgentName != "safety" {
		t.Errorf("ListAgentLogs(user=user_2) = %+v, want one safety entry", logs)
	}
}

func TestListAgentLogs_Limit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s.CreateAgentLog(ctx, sampleLog("analytics", "track_event", "user_1", true))
	}

	logs, err := s.ListAgentLogs(ctx, store.AgentLogFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListAgentLogs() error = %v", err)
	}
	if len(logs) != 2 {
		t.Errorf("ListAgentLogs(limit=2) returned %d entries, want 2", len(logs))
	}
}

func TestCountAgentLogs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.CreateAgentLog(ctx, sampleLog("matching", "find_matches", "user_1", true))
	s.CreateAgentLog(ctx, sampleLog("matching", "find_matches", "user_2", true))
	s.CreateAgentLog(ctx, sampleLog("admin", "suspend_user", "user_3", true))

	count, err := s.CountAgentLogs(ctx, store.AgentLogFilter{AgentName: "matching"})
	if err != nil {
		t.Fatalf("CountAgentLogs() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountAgentLogs(agent=matching) = %d, want 2", count)
	}
}

func TestCreateAgentLog_CopyIsolatesCaller(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := sampleLog("fraud_detection", "check_fraud", "user_1", true)
	if err := s.CreateAgentLog(ctx, entry); err != nil {
		t.Fatalf("CreateAgentLog() error = %v", err)
	}
	id := entry.ID
	entry.AgentName = "mutated"

	got, err := s.GetAgentLog(ctx, id)
	if err != nil {
		t.Fatalf("GetAgentLog() error = %v", err)
	}
	if got.AgentName != "fraud_detection" {
		t.Errorf("GetAgentLog().AgentName = %q, caller mutation leaked into store", got.AgentName)
	}
}
