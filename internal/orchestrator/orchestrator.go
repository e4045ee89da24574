// Package orchestrator dispatches agent requests: a static routing
// table maps known actions to agents, explicit agent selection bypasses
// it, and the LLM breaks ties for actions neither covers. Parallel
// fan-out and sequential pipelines build on the same dispatch path.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/rs/zerolog/log"

	"github.com/milan-ai/milan-core/internal/agents"
	"github.com/milan-ai/milan-core/internal/executor"
	"github.com/milan-ai/milan-core/internal/llm"
	"github.com/milan-ai/milan-core/pkg/models"
)

const routingPrompt = `You are the Orchestrator Agent for Milan AI, a dating platform for Nepal.
Your role is to coordinate between specialized AI agents to provide the best user experience.

Available Agents:
- user_profile: Analyzes and enhances user profiles
- matching: Finds compatible matches
- conversation: Suggests conversation improvements
- safety: Moderates content and ensures safety
- fraud_detection: Identifies suspicious behavior
- subscription: Handles billing and payments

Route requests to the appropriate agent based on the user's intent.
Always respond in JSON format.
`

// routingTable maps every well-known action to its agent. Actions not
// listed here fall through to LLM-assisted routing.
var routingTable = map[string]string{
	// user_profile
	"analyze_profile":              "user_profile",
	"generate_embedding":           "user_profile",
	"extract_interests":            "user_profile",
	"suggest_profile_improvements": "user_profile",

	// matching
	"find_matches":            "matching",
	"calculate_compatibility": "matching",
	"get_recommendations":     "matching",
	"explain_match":           "matching",

	// conversation
	"suggest_reply":         "conversation",
	"generate_icebreaker":   "conversation",
	"analyze_conversation":  "conversation",
	"get_conversation_tips": "conversation",

	// safety
	"moderate_content": "safety",
	"check_message":    "safety",
	"flag_content":     "safety",

	// fraud_detection
	"check_fraud":      "fraud_detection",
	"analyze_behavior": "fraud_detection",
	"verify_account":   "fraud_detection",

	// image_verification
	"verify_photo":   "image_verification",
	"moderate_image": "image_verification",
	"check_face":     "image_verification",

	// subscription
	"process_payment":    "subscription",
	"check_subscription": "subscription",
	"upgrade_plan":       "subscription",

	// analytics
	"track_event":     "analytics",
	"generate_report": "analytics",
	"analyze_funnel":  "analytics",

	// admin
	"get_user_details": "admin",
	"suspend_user":     "admin",
	"resolve_report":   "admin",
}

// Orchestrator owns the agent registry and all dispatch paths.
type Orchestrator struct {
	exec   *executor.Executor
	client llm.Client
	agents map[string]agents.Agent
}

// New builds an orchestrator over the given agents, keyed by Name().
func New(exec *executor.Executor, client llm.Client, registered ...agents.Agent) *Orchestrator {
	registry := make(map[string]agents.Agent, len(registered))
	for _, agent := range registered {
		registry[agent.Name()] = agent
	}

	log.Info().Int("agents", len(registry)).Msg("✅ Orchestrator initialized")
	return &Orchestrator{exec: exec, client: client, agents: registry}
}

// Execute routes one request and runs it. The returned envelope is
// always non-nil; routing failures come back as unsuccessful results.
func (o *Orchestrator) Execute(ctx context.Context, req *models.AgentRequest) *models.AgentResult {
	if agent, ok := o.agents[req.Agent]; req.Agent != "" && ok {
		return o.exec.Execute(ctx, agent, req.Action, req.Payload, req.UserID, req.SessionID)
	}

	if name, ok := routingTable[req.Action]; ok {
		if agent, ok := o.agents[name]; ok {
			return o.exec.Execute(ctx, agent, req.Action, req.Payload, req.UserID, req.SessionID)
		}
	}

	return o.llmRoute(ctx, req)
}

// llmRoute asks the LLM which agent should handle an action the table
// does not cover.
func (o *Orchestrator) llmRoute(ctx context.Context, req *models.AgentRequest) *models.AgentResult {
	failure := &models.AgentResult{
		AgentName: "orchestrator",
		Action:    req.Action,
		Error:     fmt.Sprintf("Could not route action: %s", req.Action),
	}

	if o.client == nil || !o.client.Configured() {
		return failure
	}

	user := fmt.Sprintf(`
Route this request to the appropriate agent:

Action: %s
Payload: %v

Available agents: %v

Respond with JSON:
{
    "agent": "agent_name",
    "reasoning": "why this agent",
    "confidence": 0.0-1.0
}
`, req.Action, req.Payload, o.agentNames())

	resp, err := o.client.Complete(ctx, llm.Request{
		Messages: []models.ChatMessage{
			{Role: "system", Content: routingPrompt},
			{Role: "user", Content: user},
		},
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		log.Warn().Err(err).Str("action", req.Action).Msg("LLM routing failed")
		return failure
	}

	routing := llm.ParseJSON(resp.Content)
	name, _ := routing["agent"].(string)
	if agent, ok := o.agents[name]; ok {
		log.Debug().Str("action", req.Action).Str("agent", name).Msg("LLM-routed action")
		return o.exec.Execute(ctx, agent, req.Action, req.Payload, req.UserID, req.SessionID)
	}

	failure.RoutingAttempt = routing
	return failure
}

// ExecuteParallel fans requests out over goroutines. Results align by
// index with the input; a request naming an unregistered agent yields a
// failed envelope at its slot instead of being skipped.
func (o *Orchestrator) ExecuteParallel(ctx context.Context, reqs []models.AgentRequest) []*models.AgentResult {
	results := make([]*models.AgentResult, len(reqs))

	var wg sync.WaitGroup
	for i := range reqs {
		req := &reqs[i]
		agent, ok := o.agents[req.Agent]
		if !ok {
			results[i] = &models.AgentResult{
				AgentName: req.Agent,
				Action:    req.Action,
				Error:     fmt.Sprintf("Agent %s not found", req.Agent),
			}
			continue
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = o.exec.Execute(ctx, agent, req.Action, req.Payload, req.UserID, req.SessionID)
		}(i)
	}
	wg.Wait()

	return results
}

// ExecutePipeline runs steps sequentially, feeding each step's result
// into the next. A step's Transform expression, when present, reshapes
// the result map before it becomes the next payload.
func (o *Orchestrator) ExecutePipeline(ctx context.Context, steps []models.PipelineStep, initial map[string]interface{}, userID, sessionID string) *models.PipelineResult {
	current := make(map[string]interface{}, len(initial))
	for k, v := range initial {
		current[k] = v
	}

	out := &models.PipelineResult{Success: true}

	for i, step := range steps {
		stepResult := models.PipelineStepResult{
			Step:   i,
			Agent:  step.Agent,
			Action: step.Action,
		}

		agent, ok := o.agents[step.Agent]
		if !ok {
			stepResult.Result = &models.AgentResult{
				AgentName: step.Agent,
				Action:    step.Action,
				Error:     fmt.Sprintf("Agent %s not found", step.Agent),
			}
			out.Steps = append(out.Steps, stepResult)
			out.Success = false
			if stopOnError(step) {
				break
			}
			continue
		}

		envelope := o.exec.Execute(ctx, agent, step.Action, current, userID, sessionID)
		stepResult.Result = envelope
		stepResult.Success = envelope.Success

		if envelope.Success {
			next := envelope.Result
			if step.Transform != "" {
				transformed, err := applyTransform(step.Transform, envelope.Result)
				if err != nil {
					stepResult.Success = false
					stepResult.Result = &models.AgentResult{
						AgentName: step.Agent,
						Action:    step.Action,
						Error:     fmt.Sprintf("transform failed: %v", err),
					}
					out.Steps = append(out.Steps, stepResult)
					out.Success = false
					if stopOnError(step) {
						break
					}
					continue
				}
				next = transformed
			}
			current = next
		}

		out.Steps = append(out.Steps, stepResult)

		if !envelope.Success {
			out.Success = false
			if stopOnError(step) {
				break
			}
		}
	}

	out.FinalPayload = current
	return out
}

// applyTransform evaluates the expression against the step result and
// requires a map back, since the output becomes the next payload.
func applyTransform(src string, result map[string]interface{}) (map[string]interface{}, error) {
	program, err := expr.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}

	value, err := expr.Run(program, result)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", src, err)
	}

	transformed, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("transform %q produced %T, want map", src, value)
	}
	return transformed, nil
}

func stopOnError(step models.PipelineStep) bool {
	if step.StopOnError == nil {
		return true
	}
	return *step.StopOnError
}

// Status reports every registered agent, sorted by name.
func (o *Orchestrator) Status() []models.AgentStatus {
	configured := o.client != nil && o.client.Configured()

	out := make([]models.AgentStatus, 0, len(o.agents))
	for _, agent := range o.agents {
		out = append(out, models.AgentStatus{
			Name:          agent.Name(),
			Version:       agent.Version(),
			LLMConfigured: configured,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (o *Orchestrator) agentNames() []string {
	names := make([]string, 0, len(o.agents))
	for name := range o.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
