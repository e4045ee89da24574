// Package handlers implements the HTTP handlers for the Milan agent
// core. All persistence goes through the Store interface; all agent
// dispatch goes through the orchestrator.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/milan-ai/milan-core/internal/orchestrator"
	"github.com/milan-ai/milan-core/internal/store"
	"github.com/milan-ai/milan-core/pkg/models"
)

// Handlers holds all handler dependencies.
type Handlers struct {
	Store        store.Store
	Orchestrator *orchestrator.Orchestrator
}

// New creates a new Handlers instance.
func New(s store.Store, o *orchestrator.Orchestrator) *Handlers {
	return &Handlers{Store: s, Orchestrator: o}
}

// ── Execution Handlers ───────────────────────────────────────

// Execute runs one agent action: POST /api/v1/agents/execute.
func (h *Handlers) Execute(w http.ResponseWriter, r *http.Request) {
	var req models.AgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Action == "" {
		respondError(w, http.StatusBadRequest, "action is required")
		return
	}

	result := h.Orchestrator.Execute(r.Context(), &req)
	respondJSON(w, http.StatusOK, result)
}

// ExecuteParallel fans several requests out at once:
// POST /api/v1/agents/execute/parallel.
func (h *Handlers) ExecuteParallel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Requests []models.AgentRequest `json:"requests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Requests) == 0 {
		respondError(w, http.StatusBadRequest, "requests must not be empty")
		return
	}
	for i := range req.Requests {
		if req.Requests[i].Agent == "" {
			respondError(w, http.StatusBadRequest, "every parallel request must name an agent")
			return
		}
	}

	results := h.Orchestrator.ExecuteParallel(r.Context(), req.Requests)
	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// ExecutePipeline runs a sequential pipeline:
// POST /api/v1/agents/execute/pipeline.
func (h *Handlers) ExecutePipeline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Steps     []models.PipelineStep  `json:"steps"`
		Payload   map[string]interface{} `json:"payload"`
		UserID    string                 `json:"user_id"`
		SessionID string                 `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Steps) == 0 {
		respondError(w, http.StatusBadRequest, "steps must not be empty")
		return
	}

	result := h.Orchestrator.ExecutePipeline(r.Context(), req.Steps, req.Payload, req.UserID, req.SessionID)
	respondJSON(w, http.StatusOK, result)
}

// Status lists registered agents: GET /api/v1/agents/status.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"agents": h.Orchestrator.Status(),
	})
}

// ── Log Handlers ─────────────────────────────────────────────

// ListLogs returns execution logs, newest first: GET /api/v1/logs.
func (h *Handlers) ListLogs(w http.ResponseWriter, r *http.Request) {
	filter := store.AgentLogFilter{
		AgentName: r.URL.Query().Get("agent"),
		Action:    r.URL.Query().Get("action"),
		UserID:    r.URL.Query().Get("user_id"),
		SessionID: r.URL.Query().Get("session_id"),
	}
	if v := r.URL.Query().Get("success"); v != "" {
		success, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid success filter: "+v)
			return
		}
		filter.Success = &success
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			respondError(w, http.StatusBadRequest, "invalid limit: "+v)
			return
		}
		filter.Limit = limit
	}

	logs, err := h.Store.ListAgentLogs(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if logs == nil {
		logs = []models.AgentLog{}
	}

	count, err := h.Store.CountAgentLogs(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": count,
	})
}

// ── Helpers ──────────────────────────────────────────────────

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
