package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milan-ai/milan-core/internal/agents"
	"github.com/milan-ai/milan-core/internal/executor"
	"github.com/milan-ai/milan-core/internal/llm"
	"github.com/milan-ai/milan-core/internal/store"
	"github.com/milan-ai/milan-core/pkg/models"
)

// stubAgent records calls and returns a scripted result.
type stubAgent struct {
	name    string
	result  map[string]interface{}
	err     error
	calls   int
	lastAct string
}

func (a *stubAgent) Name() string    { return a.name }
func (a *stubAgent) Version() string { return "1.0.0" }

func (a *stubAgent) Process(ctx context.Context, action string, payload map[string]interface{}) (map[string]interface{}, error) {
	a.calls++
	a.lastAct = action
	if a.err != nil {
		return nil, a.err
	}
	if a.result != nil {
		return a.result, nil
	}
	return map[string]interface{}{"handled_by": a.name, "action": action}, nil
}

// routerLLM scripts the routing completion.
type routerLLM struct {
	configured bool
	response   string
	err        error
	calls      int
}

func (f *routerLLM) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.response}, nil
}

func (f *routerLLM) Configured() bool { return f.configured }

func newTestOrchestrator(client llm.Client, agentList ...*stubAgent) *Orchestrator {
	exec := executor.New(store.NewMemoryStore())
	registered := make([]agents.Agent, 0, len(agentList))
	for _, a := range agentList {
		registered = append(registered, a)
	}
	return New(exec, client, registered...)
}

func TestExecuteRoutesByTable(t *testing.T) {
	matching := &stubAgent{name: "matching"}
	o := newTestOrchestrator(&routerLLM{}, matching)

	result := o.Execute(context.Background(), &models.AgentRequest{
		Action:  "find_matches",
		Payload: map[string]interface{}{"limit": 5},
		UserID:  "user_1",
	})

	require.True(t, result.Success, "error: %s", result.Error)
	assert.Equal(t, "matching", result.AgentName)
	assert.Equal(t, 1, matching.calls)
	assert.Equal(t, "find_matches", matching.lastAct)
}

func TestExecuteExplicitAgentBypassesTable(t *testing.T) {
	safety := &stubAgent{name: "safety"}
	matching := &stubAgent{name: "matching"}
	o := newTestOrchestrator(&routerLLM{}, safety, matching)

	// find_matches normally routes to matching; the explicit agent wins.
	result := o.Execute(context.Background(), &models.AgentRequest{
		Action: "find_matches",
		Agent:  "safety",
	})

	require.True(t, result.Success)
	assert.Equal(t, "safety", result.AgentName)
	assert.Equal(t, 1, safety.calls)
	assert.Equal(t, 0, matching.calls)
}

func TestExecuteUnroutableWithoutLLM(t *testing.T) {
	o := newTestOrchestrator(&routerLLM{configured: false})

	result := o.Execute(context.Background(), &models.AgentRequest{Action: "read_palm"})

	assert.False(t, result.Success)
	assert.Equal(t, "Could not route action: read_palm", result.Error)
	assert.Nil(t, result.RoutingAttempt)
}

func TestExecuteLLMRoutesUnknownAction(t *testing.T) {
	conversation := &stubAgent{name: "conversation"}
	client := &routerLLM{
		configured: true,
		response:   `{"agent": "conversation", "reasoning": "chat related", "confidence": 0.9}`,
	}
	o := newTestOrchestrator(client, conversation)

	result := o.Execute(context.Background(), &models.AgentRequest{Action: "draft_opening_line"})

	require.True(t, result.Success, "error: %s", result.Error)
	assert.Equal(t, "conversation", result.AgentName)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, "draft_opening_line", conversation.lastAct)
}

func TestExecuteLLMRouteToUnknownAgentFails(t *testing.T) {
	client := &routerLLM{
		configured: true,
		response:   `{"agent": "astrology", "reasoning": "stars", "confidence": 0.4}`,
	}
	o := newTestOrchestrator(client)

	result := o.Execute(context.Background(), &models.AgentRequest{Action: "read_stars"})

	assert.False(t, result.Success)
	assert.Equal(t, "Could not route action: read_stars", result.Error)
	require.NotNil(t, result.RoutingAttempt)
	assert.Equal(t, "astrology", result.RoutingAttempt["agent"])
}

func TestExecuteLLMRouteErrorFails(t *testing.T) {
	client := &routerLLM{configured: true, err: errors.New("provider down")}
	o := newTestOrchestrator(client)

	result := o.Execute(context.Background(), &models.AgentRequest{Action: "mystery"})

	assert.False(t, result.Success)
	assert.Equal(t, "Could not route action: mystery", result.Error)
}

func TestExecuteParallelAlignsResults(t *testing.T) {
	matching := &stubAgent{name: "matching"}
	safety := &stubAgent{name: "safety"}
	o := newTestOrchestrator(&routerLLM{}, matching, safety)

	results := o.ExecuteParallel(context.Background(), []models.AgentRequest{
		{Agent: "matching", Action: "find_matches"},
		{Agent: "missing", Action: "whatever"},
		{Agent: "safety", Action: "moderate_content"},
	})

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.Equal(t, "matching", results[0].AgentName)

	assert.False(t, results[1].Success)
	assert.Equal(t, "Agent missing not found", results[1].Error)

	assert.True(t, results[2].Success)
	assert.Equal(t, "safety", results[2].AgentName)
}

func TestExecutePipelinePassesResultForward(t *testing.T) {
	profile := &stubAgent{
		name:   "user_profile",
		result: map[string]interface{}{"embedding_text": "likes trekking"},
	}
	matching := &stubAgent{name: "matching"}
	o := newTestOrchestrator(&routerLLM{}, profile, matching)

	result := o.ExecutePipeline(context.Background(), []models.PipelineStep{
		{Agent: "user_profile", Action: "analyze_profile"},
		{Agent: "matching", Action: "find_matches"},
	}, map[string]interface{}{"profile": map[string]interface{}{}}, "user_1", "")

	require.True(t, result.Success)
	require.Len(t, result.Steps, 2)
	assert.True(t, result.Steps[0].Success)
	assert.True(t, result.Steps[1].Success)

	// The second step consumed the first step's result as payload.
	assert.Equal(t, 0, result.Steps[0].Step)
	assert.Equal(t, 1, result.Steps[1].Step)
	assert.Equal(t, "matching", result.FinalPayload["handled_by"])
}

func TestExecutePipelineTransform(t *testing.T) {
	profile := &stubAgent{
		name:   "user_profile",
		result: map[string]interface{}{"embedding_text": "likes trekking", "noise": true},
	}
	echo := &stubAgent{name: "analytics"}
	o := newTestOrchestrator(&routerLLM{}, profile, echo)

	result := o.ExecutePipeline(context.Background(), []models.PipelineStep{
		{Agent: "user_profile", Action: "analyze_profile", Transform: `{"text": embedding_text}`},
		{Agent: "analytics", Action: "track_event"},
	}, nil, "", "")

	require.True(t, result.Success)
	assert.Equal(t, "analytics", result.FinalPayload["handled_by"])
}

func TestExecutePipelineTransformErrorFailsStep(t *testing.T) {
	profile := &stubAgent{
		name:   "user_profile",
		result: map[string]interface{}{"embedding_text": "x"},
	}
	o := newTestOrchestrator(&routerLLM{}, profile)

	result := o.ExecutePipeline(context.Background(), []models.PipelineStep{
		{Agent: "user_profile", Action: "analyze_profile", Transform: `embedding_text`},
	}, nil, "", "")

	assert.False(t, result.Success)
	require.Len(t, result.Steps, 1)
	assert.False(t, result.Steps[0].Success)
	assert.Contains(t, result.Steps[0].Result.Error, "transform failed")
}

func TestExecutePipelineStopsOnError(t *testing.T) {
	broken := &stubAgent{name: "safety", err: errors.New("down")}
	after := &stubAgent{name: "matching"}
	o := newTestOrchestrator(&routerLLM{}, broken, after)

	result := o.ExecutePipeline(context.Background(), []models.PipelineStep{
		{Agent: "safety", Action: "moderate_content"},
		{Agent: "matching", Action: "find_matches"},
	}, nil, "", "")

	assert.False(t, result.Success)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, 0, after.calls)
}

func TestExecutePipelineContinuesWhenConfigured(t *testing.T) {
	broken := &stubAgent{name: "safety", err: errors.New("down")}
	after := &stubAgent{name: "matching"}
	o := newTestOrchestrator(&routerLLM{}, broken, after)

	keepGoing := false
	result := o.ExecutePipeline(context.Background(), []models.PipelineStep{
		{Agent: "safety", Action: "moderate_content", StopOnError: &keepGoing},
		{Agent: "matching", Action: "find_matches"},
	}, nil, "", "")

	assert.False(t, result.Success)
	require.Len(t, result.Steps, 2)
	assert.Equal(t, 1, after.calls)
}

func TestExecutePipelineUnknownAgent(t *testing.T) {
	o := newTestOrchestrator(&routerLLM{})

	result := o.ExecutePipeline(context.Background(), []models.PipelineStep{
		{Agent: "ghost", Action: "spook"},
	}, nil, "", "")

	assert.False(t, result.Success)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, "Agent ghost not found", result.Steps[0].Result.Error)
}

func TestStatusSortedByName(t *testing.T) {
	o := newTestOrchestrator(&routerLLM{configured: true},
		&stubAgent{name: "safety"},
		&stubAgent{name: "admin"},
		&stubAgent{name: "matching"},
	)

	status := o.Status()

	require.Len(t, status, 3)
	assert.Equal(t, "admin", status[0].Name)
	assert.Equal(t, "matching", status[1].Name)
	assert.Equal(t, "safety", status[2].Name)
	assert.True(t, status[0].LLMConfigured)
}
