package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Endpoints of hosted OpenAI-compatible APIs.
const (
	OpenAIBaseURL     = "https://api.openai.com/v1"
	GroqBaseURL       = "https://api.groq.com/openai/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// OpenAIProvider talks to any API that implements the OpenAI chat
// completions protocol.
type OpenAIProvider struct {
	name       string
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewOpenAIProvider(apiKey, model string, opts ...Option) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return newCompatProvider("openai", OpenAIBaseURL, apiKey, model, opts)
}

func NewGroqProvider(apiKey, model string, opts ...Option) *OpenAIProvider {
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	return newCompatProvider("groq", GroqBaseURL, apiKey, model, opts)
}

func NewOpenRouterProvider(apiKey, model string, opts ...Option) *OpenAIProvider {
	if model == "" {
		model = "meta-llama/llama-3.1-70b-instruct"
	}
	return newCompatProvider("openrouter", OpenRouterBaseURL, apiKey, model, opts)
}

// NewCustomProvider targets a self-hosted OpenAI-compatible server.
func NewCustomProvider(baseURL, apiKey, model string, opts ...Option) *OpenAIProvider {
	return newCompatProvider("custom", baseURL, apiKey, model, opts)
}

func newCompatProvider(name, baseURL, apiKey, model string, opts []Option) *OpenAIProvider {
	o := buildOptions(baseURL, opts)
	return &OpenAIProvider{
		name:       name,
		apiKey:     apiKey,
		model:      model,
		baseURL:    o.baseURL,
		httpClient: o.httpClient,
	}
}

func (o *OpenAIProvider) Name() string {
	return o.name
}

func (o *OpenAIProvider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	o.authorize(req)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cannot connect to %s API: %w", o.name, err)
	}
	defer resp.Body.Close()

	return checkResponse(o.name, resp)
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	Stream         bool            `json:"stream"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type openAIStreamResponse struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

func (o *OpenAIProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = o.model
	}

	resp, err := o.post(ctx, o.buildRequest(model, req, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var apiResp openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", o.name, err)
	}

	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s: %w", o.name, ErrEmptyResponse)
	}

	return &CompletionResponse{
		Content:      apiResp.Choices[0].Message.Content,
		Model:        model,
		FinishReason: apiResp.Choices[0].FinishReason,
		Usage: Usage{
			PromptTokens:     apiResp.Usage.PromptTokens,
			CompletionTokens: apiResp.Usage.CompletionTokens,
			TotalTokens:      apiResp.Usage.TotalTokens,
		},
	}, nil
}

func (o *OpenAIProvider) Stream(ctx context.Context, req *CompletionRequest) (<-chan StreamEvent, error) {
	model := req.Model
	if model == "" {
		model = o.model
	}

	resp, err := o.post(ctx, o.buildRequest(model, req, true))
	if err != nil {
		return nil, err
	}

	return pipe(ctx, resp.Body, func(out chan<- StreamEvent) error {
		return readSSE(resp.Body, func(data string) bool {
			if data == "[DONE]" {
				emit(ctx, out, StreamEvent{Done: true})
				return false
			}

			var chunk openAIStreamResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				return true
			}
			if len(chunk.Choices) == 0 {
				return true
			}
			if c := chunk.Choices[0].Delta.Content; c != "" {
				if !emit(ctx, out, StreamEvent{Chunk: c}) {
					return false
				}
			}
			if chunk.Choices[0].FinishReason != nil {
				emit(ctx, out, StreamEvent{Done: true})
				return false
			}
			return true
		})
	}), nil
}

func (o *OpenAIProvider) buildRequest(model string, req *CompletionRequest, stream bool) openAIRequest {
	apiReq := openAIRequest{
		Model:       model,
		Messages:    toOpenAIMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
	}
	if req.JSON {
		apiReq.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return apiReq
}

func (o *OpenAIProvider) post(ctx context.Context, apiReq openAIRequest) (*http.Response, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/chat/completions",
		bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	o.authorize(httpReq)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", o.name, err)
	}
	if err := checkResponse(o.name, resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func (o *OpenAIProvider) authorize(req *http.Request) {
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}
}

func toOpenAIMessages(msgs []Message) []openAIMessage {
	result := make([]openAIMessage, len(msgs))
	for i, m := range msgs {
		result[i] = openAIMessage{Role: m.Role, Content: m.Content}
	}
	return result
}
