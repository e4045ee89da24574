package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/milan-ai/milan-core/internal/llm"
	"github.com/milan-ai/milan-core/pkg/models"
)

// fakeLLM satisfies llm.Client with a scripted response.
type fakeLLM struct {
	configured bool
	response   string
	err        error
	calls      int
	lastReq    llm.Request
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{
		Content: f.response,
		Model:   "fake-model",
		Usage:   models.TokenUsage{TotalTokens: 42},
	}, nil
}

func (f *fakeLLM) Configured() bool { return f.configured }

// fakeEmbedder satisfies embeddings.Provider.
type fakeEmbedder struct {
	vector []float64
	err    error
}

func (f *fakeEmbedder) Kind() string    { return "fake" }
func (f *fakeEmbedder) Dimensions() int { return len(f.vector) }

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbedder) HealthCheck(ctx context.Context) error { return f.err }

var errFakeDown = errors.New("backend down")

func TestUnknownActionIsSoft(t *testing.T) {
	agents := []Agent{
		NewSafetyAgent(&fakeLLM{}),
		NewFraudAgent(&fakeLLM{}),
		NewMatchingAgent(&fakeLLM{}),
		NewConversationAgent(&fakeLLM{}),
		NewProfileAgent(&fakeLLM{}, &fakeEmbedder{}),
		NewImageAgent(),
		NewSubscriptionAgent(),
		NewAnalyticsAgent(),
		NewAdminAgent(),
	}
	for _, ag := range agents {
		result, err := ag.Process(context.Background(), "no_such_action", nil)
		if err != nil {
			t.Errorf("%s: Process(no_such_action) error = %v, want nil", ag.Name(), err)
			continue
		}
		if result["error"] != "Unknown action: no_such_action" {
			t.Errorf("%s: result[error] = %v, want unknown-action message", ag.Name(), result["error"])
		}
	}
}
