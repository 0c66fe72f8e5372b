package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	AnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"
)

// jsonDirective is appended to the system prompt for providers without a
// native JSON response mode.
const jsonDirective = "Respond with a single valid JSON document and nothing else."

type AnthropicProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewAnthropicProvider(apiKey, model string, opts ...Option) *AnthropicProvider {
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	o := buildOptions(AnthropicBaseURL, opts)
	return &AnthropicProvider{
		apiKey:     apiKey,
		model:      model,
		baseURL:    o.baseURL,
		httpClient: o.httpClient,
	}
}

func (a *AnthropicProvider) Name() string {
	return "anthropic"
}

func (a *AnthropicProvider) Ping(ctx context.Context) error {
	// No cheap health endpoint; a one-token request proves the key works.
	body, _ := json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: 1,
		Messages:  []anthropicMessage{{Role: "user", Content: "hi"}},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	a.headers(req)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cannot connect to Anthropic API: %w", err)
	}
	defer resp.Body.Close()

	// 400 still means the key was accepted
	if resp.StatusCode == http.StatusBadRequest {
		return nil
	}
	return checkResponse("anthropic", resp)
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature,omitempty"`
	Stream      bool               `json:"stream"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (a *AnthropicProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = a.model
	}

	resp, err := a.post(ctx, a.buildRequest(model, req, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var apiResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode anthropic response: %w", err)
	}

	var text strings.Builder
	for _, c := range apiResp.Content {
		text.WriteString(c.Text)
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("no response from anthropic: %w", ErrEmptyResponse)
	}

	return &CompletionResponse{
		Content:      text.String(),
		Model:        model,
		FinishReason: apiResp.StopReason,
		Usage: Usage{
			PromptTokens:     apiResp.Usage.InputTokens,
			CompletionTokens: apiResp.Usage.OutputTokens,
			TotalTokens:      apiResp.Usage.InputTokens + apiResp.Usage.OutputTokens,
		},
	}, nil
}

func (a *AnthropicProvider) Stream(ctx context.Context, req *CompletionRequest) (<-chan StreamEvent, error) {
	model := req.Model
	if model == "" {
		model = a.model
	}

	resp, err := a.post(ctx, a.buildRequest(model, req, true))
	if err != nil {
		return nil, err
	}

	return pipe(ctx, resp.Body, func(out chan<- StreamEvent) error {
		return readSSE(resp.Body, func(data string) bool {
			var event struct {
				Type  string `json:"type"`
				Delta struct {
					Text string `json:"text"`
				} `json:"delta"`
			}
			if err := json.Unmarshal([]byte(data), &event); err != nil {
				return true
			}

			switch event.Type {
			case "content_block_delta":
				return emit(ctx, out, StreamEvent{Chunk: event.Delta.Text})
			case "message_stop":
				emit(ctx, out, StreamEvent{Done: true})
				return false
			}
			return true
		})
	}), nil
}

func (a *AnthropicProvider) buildRequest(model string, req *CompletionRequest, stream bool) anthropicRequest {
	system, turns := splitSystem(req.Messages)
	if req.JSON {
		system = strings.TrimSpace(system + "\n\n" + jsonDirective)
	}

	messages := make([]anthropicMessage, len(turns))
	for i, m := range turns {
		messages[i] = anthropicMessage{Role: m.Role, Content: m.Content}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	return anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      system,
		Messages:    messages,
		Temperature: req.Temperature,
		Stream:      stream,
	}
}

func (a *AnthropicProvider) post(ctx context.Context, apiReq anthropicRequest) (*http.Response, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	a.headers(httpReq)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}
	if err := checkResponse("anthropic", resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func (a *AnthropicProvider) headers(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}
