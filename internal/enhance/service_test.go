package enhance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sant0-9/polish/internal/formatting"
	"github.com/sant0-9/polish/internal/llm"
)

type scriptedProvider struct {
	content string
	err     error
	last    *llm.CompletionRequest
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.last = req
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Content: p.content}, nil
}

func (p *scriptedProvider) Stream(ctx context.Context, req *llm.CompletionRequest) (<-chan llm.StreamEvent, error) {
	return nil, errors.New("not supported")
}

func (p *scriptedProvider) Ping(ctx context.Context) error { return nil }

func TestServiceFetch(t *testing.T) {
	p := &scriptedProvider{content: "```json\n" + `{"suggestions":[{"technique":"Role Prompting","suggestion":"Act as a poet"},{"technique":"Specify Format","suggestion":"Use quatrains"}]}` + "\n```"}
	svc := NewService(p, nil)

	got, err := svc.Fetch(context.Background(), moonRequest)
	require.NoError(t, err)
	assert.Equal(t, []Suggestion{
		{Technique: "Role Prompting", Suggestion: "Act as a poet"},
		{Technique: "Specify Format", Suggestion: "Use quatrains"},
	}, got)

	require.NotNil(t, p.last)
	assert.True(t, p.last.JSON)
	assert.InDelta(t, 0.5, p.last.Temperature, 1e-9)
	assert.Contains(t, p.last.Messages[len(p.last.Messages)-1].Content, moonRequest.Prompt)
}

func TestServiceFetchErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider llm.Provider
		want     error
	}{
		{"no provider", nil, llm.ErrMissingAPIKey},
		{"provider error", &scriptedProvider{err: &llm.APIError{Provider: "gemini", StatusCode: 429}}, llm.ErrRateLimited},
		{"empty reply", &scriptedProvider{content: "  "}, formatting.ErrEmptyContent},
		{"not json", &scriptedProvider{content: "I cannot help with that."}, formatting.ErrParseFailed},
		{"missing key", &scriptedProvider{content: `{"ideas":[]}`}, ErrInvalidResponse},
		{"blank suggestion", &scriptedProvider{content: `{"suggestions":[{"technique":"Add Context","suggestion":""}]}`}, ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var svc *Service
			if tt.provider == nil {
				svc = NewService(nil, nil)
			} else {
				svc = NewService(tt.provider, nil)
			}

			_, err := svc.Fetch(context.Background(), moonRequest)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var se *ServiceError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "get suggestions", se.Op)
			assert.Contains(t, err.Error(), "failed to get suggestions: ")
		})
	}
}

func TestServiceFetchEmptyList(t *testing.T) {
	svc := NewService(&scriptedProvider{content: `{"suggestions":[]}`}, nil)

	got, err := svc.Fetch(context.Background(), moonRequest)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestServiceApply(t *testing.T) {
	p := &scriptedProvider{content: `{"enhancedPrompt":"As a poet, write...","changes":["Added a persona"]}`}
	svc := NewService(p, nil)

	got, err := svc.Apply(context.Background(), moonRequest, []string{"Act as a poet", "Use quatrains"})
	require.NoError(t, err)
	assert.Equal(t, &Enhancement{EnhancedPrompt: "As a poet, write...", Changes: []string{"Added a persona"}}, got)

	assert.InDelta(t, 0.4, p.last.Temperature, 1e-9)
	user := p.last.Messages[len(p.last.Messages)-1].Content
	assert.Contains(t, user, "- Act as a poet\n- Use quatrains")
}

func TestServiceApplyInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing prompt", `{"changes":["x"]}`},
		{"blank prompt", `{"enhancedPrompt":"  ","changes":[]}`},
		{"missing changes", `{"enhancedPrompt":"better"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&scriptedProvider{content: tt.content}, nil)
			_, err := svc.Apply(context.Background(), moonRequest, []string{"a"})
			assert.ErrorIs(t, err, ErrInvalidResponse)
			assert.Contains(t, err.Error(), "failed to apply enhancements: ")
		})
	}
}

func TestServiceDrivesWorkflow(t *testing.T) {
	p := &scriptedProvider{content: `{"suggestions":[{"technique":"Add Context","suggestion":"Mention the season"}]}`}
	svc := NewService(p, nil)
	w := New(svc, svc)

	require.True(t, w.Run(context.Background(), w.Submit(moonRequest)))
	require.Equal(t, StateReviewing, w.State())

	p.content = `{"enhancedPrompt":"write a poem about the autumn moon","changes":["Mentioned the season"]}`
	call := w.Apply()
	require.NotNil(t, call)
	res := w.Handle(call(context.Background()))
	require.NotNil(t, res)
	assert.Equal(t, "write a poem about the autumn moon", res.EnhancedPrompt)
}
