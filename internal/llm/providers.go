package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/milan-ai/milan-core/pkg/models"
)

// ── OpenAI ───────────────────────────────────────────────────

type openAIDriver struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

func newOpenAIDriver(apiKey, model string) *openAIDriver {
	return &openAIDriver{
		apiKey:   apiKey,
		model:    model,
		endpoint: "https://api.openai.com/v1/chat/completions",
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (d *openAIDriver) name() string { return "openai" }

type openAIRequest struct {
	Model          string               `json:"model"`
	Messages       []models.ChatMessage `json:"messages"`
	Temperature    float64              `json:"temperature,omitempty"`
	MaxTokens      int                  `json:"max_tokens,omitempty"`
	ResponseFormat *openAIFormat        `json:"response_format,omitempty"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (d *openAIDriver) complete(ctx context.Context, req Request) (*Response, error) {
	body := openAIRequest{
		Model:       d.model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		body.ResponseFormat = &openAIFormat{Type: "json_object"}
	}

	raw, err := postJSON(ctx, d.client, d.endpoint, body, map[string]string{
		"Authorization": "Bearer " + d.apiKey,
	}, d.name())
	if err != nil {
		return nil, err
	}

	var resp openAIResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal openai response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}
	return &Response{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: models.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

// ── Azure OpenAI ─────────────────────────────────────────────

// azureDriver speaks the same chat-completions wire format as OpenAI
// but with deployment-scoped URLs and the api-key header. The model
// name doubles as the deployment name.
type azureDriver struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

const azureAPIVersion = "2024-02-15-preview"

func newAzureDriver(apiKey, endpoint, model string) *azureDriver {
	return &azureDriver{
		apiKey:   apiKey,
		model:    model,
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (d *azureDriver) name() string { return "azure" }

func (d *azureDriver) complete(ctx context.Context, req Request) (*Response, error) {
	body := openAIRequest{
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		body.ResponseFormat = &openAIFormat{Type: "json_object"}
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		d.endpoint, d.model, azureAPIVersion)

	raw, err := postJSON(ctx, d.client, url, body, map[string]string{
		"api-key": d.apiKey,
	}, d.name())
	if err != nil {
		return nil, err
	}

	var resp openAIResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal azure response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("azure returned no choices")
	}
	return &Response{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: models.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

// ── Anthropic ────────────────────────────────────────────────

type anthropicDriver struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

func newAnthropicDriver(apiKey, model string) *anthropicDriver {
	return &anthropicDriver{
		apiKey:   apiKey,
		model:    model,
		endpoint: "https://api.anthropic.com/v1/messages",
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (d *anthropicDriver) name() string { return "anthropic" }

type anthropicRequest struct {
	Model     string               `json:"model"`
	System    string               `json:"system,omitempty"`
	Messages  []models.ChatMessage `json:"messages"`
	MaxTokens int                  `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (d *anthropicDriver) complete(ctx context.Context, req Request) (*Response, error) {
	// Anthropic takes the system prompt as a top-level field.
	var system string
	chat := make([]models.ChatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == "system" {
			if system != "" {
				system += "\n"
			}
			system += m.Content
			continue
		}
		chat = append(chat, m)
	}
	if req.JSONMode {
		if system != "" {
			system += "\n"
		}
		system += "Respond with a single valid JSON object and nothing else."
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	body := anthropicRequest{
		Model:       d.model,
		System:      system,
		Messages:    chat,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}

	raw, err := postJSON(ctx, d.client, d.endpoint, body, map[string]string{
		"x-api-key":         d.apiKey,
		"anthropic-version": "2023-06-01",
	}, d.name())
	if err != nil {
		return nil, err
	}

	var resp anthropicResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal anthropic response: %w", err)
	}
	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	usage := models.TokenUsage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		TotalTokens:  resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}
	return &Response{Content: text.String(), Model: resp.Model, Usage: usage}, nil
}

// ── Ollama ───────────────────────────────────────────────────

type ollamaDriver struct {
	endpoint string
	model    string
	client   *http.Client
}

func newOllamaDriver(endpoint, model string) *ollamaDriver {
	return &ollamaDriver{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (d *ollamaDriver) name() string { return "ollama" }

type ollamaRequest struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
	Format   string               `json:"format,omitempty"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type ollamaResponse struct {
	Model   string `json:"model"`
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	PromptEvalCount int `json:"prompt_eval_count"`
	EvalCount       int `json:"eval_count"`
}

func (d *ollamaDriver) complete(ctx context.Context, req Request) (*Response, error) {
	body := ollamaRequest{
		Model:    d.model,
		Messages: req.Messages,
		Stream:   false,
	}
	if req.JSONMode {
		body.Format = "json"
	}
	if req.Temperature > 0 {
		body.Options = map[string]interface{}{"temperature": req.Temperature}
	}

	raw, err := postJSON(ctx, d.client, d.endpoint+"/api/chat", body, nil, d.name())
	if err != nil {
		return nil, err
	}

	var resp ollamaResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal ollama response: %w", err)
	}
	usage := models.TokenUsage{
		InputTokens:  resp.PromptEvalCount,
		OutputTokens: resp.EvalCount,
		TotalTokens:  resp.PromptEvalCount + resp.EvalCount,
	}
	return &Response{Content: resp.Message.Content, Model: resp.Model, Usage: usage}, nil
}

// ── Shared HTTP plumbing ─────────────────────────────────────

func postJSON(ctx context.Context, client *http.Client, url string, body interface{}, headers map[string]string, provider string) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &apiError{provider: provider, status: resp.StatusCode, body: truncate(string(raw), 512)}
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
