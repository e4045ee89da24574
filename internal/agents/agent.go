// Package agents implements the capability agents behind the Milan
// orchestrator: profile analysis, matching, conversation coaching,
// safety moderation, fraud detection, image verification, billing,
// analytics, and admin operations.
//
// Agents are stateless. Each Process call dispatches on the action
// name and returns a plain result map; the executor wraps every call
// in the uniform AgentResult envelope. An action an agent does not
// know is a soft condition, not an error: the agent answers with an
// "error" key and the envelope still reports success.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/milan-ai/milan-core/internal/llm"
	"github.com/milan-ai/milan-core/pkg/models"
)

// Agent is one capability handler. Implementations must be safe for
// concurrent use: the orchestrator fans out over them from multiple
// goroutines.
type Agent interface {
	Name() string
	Version() string
	Process(ctx context.Context, action string, payload map[string]interface{}) (map[string]interface{}, error)
}

const defaultMaxTokens = 1000

func unknownAction(action string) map[string]interface{} {
	return map[string]interface{}{"error": fmt.Sprintf("Unknown action: %s", action)}
}

// completeJSON runs a system+user prompt through the gateway in JSON
// mode, normalizes the response, and attaches token usage under
// "tokens_used".
func completeJSON(ctx context.Context, client llm.Client, system, user string, temperature float64) (map[string]interface{}, error) {
	resp, err := client.Complete(ctx, llm.Request{
		Messages: []models.ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   defaultMaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}
	result := llm.ParseJSON(resp.Content)
	result["tokens_used"] = resp.Usage.TotalTokens
	return result, nil
}

// completeText runs a prompt expecting free text back.
func completeText(ctx context.Context, client llm.Client, system, user string, temperature float64, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	resp, err := client.Complete(ctx, llm.Request{
		Messages: []models.ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(resp.Content), `"`), nil
}

// jsonify renders a payload fragment for embedding into a prompt.
func jsonify(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
