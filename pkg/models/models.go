// Package models defines the shared types that flow between the
// orchestrator, the capability agents, the execution log store, and the
// HTTP surface. Everything here is plain data: no behavior beyond small
// constructors and formatting helpers.
package models

import (
	"time"
)

// ── Agent Invocation ─────────────────────────────────────────

// AgentRequest is a single unit of work for the orchestrator.
// Action selects the operation; Agent, when set, bypasses routing and
// names the target agent directly.
type AgentRequest struct {
	Action    string                 `json:"action"`
	Agent     string                 `json:"agent,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	UserID    string                 `json:"user_id,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
}

// AgentResult is the uniform envelope every agent invocation produces,
// success or failure. Result carries the agent's domain output; Error is
// set only when Success is false.
type AgentResult struct {
	Success         bool                   `json:"success"`
	AgentName       string                 `json:"agent_name"`
	AgentVersion    string                 `json:"agent_version,omitempty"`
	Action          string                 `json:"action"`
	Result          map[string]interface{} `json:"result,omitempty"`
	Error           string                 `json:"error,omitempty"`
	ExecutionTimeMs int64                  `json:"execution_time_ms"`
	TokensUsed      int                    `json:"tokens_used,omitempty"`

	// RoutingAttempt is populated only when LLM-assisted routing ran and
	// failed to produce a registered agent.
	RoutingAttempt map[string]interface{} `json:"routing_attempt,omitempty"`
}

// ── Execution Log ────────────────────────────────────────────

// AgentLog is one append-only record of an agent invocation. Written
// best-effort after every execution; a failed write never fails the
// invocation itself.
type AgentLog struct {
	ID              string                 `json:"id" db:"id"`
	AgentName       string                 `json:"agent_name" db:"agent_name"`
	AgentVersion    string                 `json:"agent_version" db:"agent_version"`
	Action          string                 `json:"action" db:"action"`
	UserID          string                 `json:"user_id,omitempty" db:"user_id"`
	SessionID       string                 `json:"session_id,omitempty" db:"session_id"`
	Payload         map[string]interface{} `json:"payload,omitempty" db:"payload"`
	Result          map[string]interface{} `json:"result,omitempty" db:"result"`
	Success         bool                   `json:"success" db:"success"`
	Error           string                 `json:"error,omitempty" db:"error"`
	ExecutionTimeMs int64                  `json:"execution_time_ms" db:"execution_time_ms"`
	TokensUsed      int                    `json:"tokens_used,omitempty" db:"tokens_used"`
	CreatedAt       time.Time              `json:"created_at" db:"created_at"`
}

// ── LLM Plumbing ─────────────────────────────────────────────

// ChatMessage is a single message in an LLM conversation.
type ChatMessage struct {
	Role    string `json:"role"` // system | user | assistant
	Content string `json:"content"`
}

// TokenUsage tracks token consumption for a completion.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ── Compatibility Scoring ────────────────────────────────────

// CompatibilityBreakdown is the deterministic output of the match
// scorer. Every field is on a 0..100 scale rounded to two decimals.
type CompatibilityBreakdown struct {
	OverallScore    float64 `json:"overall_score"`
	VectorScore     float64 `json:"vector_similarity"`
	PreferenceScore float64 `json:"preference_alignment"`
	BehavioralScore float64 `json:"behavioral_compatibility"`
	DiversityScore  float64 `json:"diversity_bonus"`
}

// ── Pipelines ────────────────────────────────────────────────

// PipelineStep is one stage of a sequential agent pipeline. Transform,
// when set, is an expression evaluated against the step's result map to
// produce the payload for the next step.
type PipelineStep struct {
	Agent     string `json:"agent,omitempty"`
	Action    string `json:"action"`
	Transform string `json:"transform,omitempty"`

	// StopOnError defaults to true; set false to let the pipeline
	// continue past a failed step.
	StopOnError *bool `json:"stop_on_error,omitempty"`
}

// PipelineStepResult records the outcome of one executed step.
type PipelineStepResult struct {
	Step    int          `json:"step"`
	Agent   string       `json:"agent"`
	Action  string       `json:"action"`
	Success bool         `json:"success"`
	Result  *AgentResult `json:"result"`
}

// PipelineResult is the aggregate outcome of a pipeline run. Success is
// true only when every executed step succeeded. FinalPayload is the
// payload as it stood after the last successful step.
type PipelineResult struct {
	Success      bool                   `json:"success"`
	Steps        []PipelineStepResult   `json:"steps"`
	FinalPayload map[string]interface{} `json:"final_payload,omitempty"`
}

// ── Status ───────────────────────────────────────────────────

// AgentStatus describes one registered agent for the status endpoint.
type AgentStatus struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	LLMConfigured bool   `json:"llm_configured"`
}
