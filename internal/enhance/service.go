package enhance

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sant0-9/polish/internal/formatting"
	"github.com/sant0-9/polish/internal/llm"
	"github.com/sant0-9/polish/internal/prompts"
)

const (
	opSuggest = "get suggestions"
	opApply   = "apply enhancements"

	suggestTemperature = 0.5
	applyTemperature   = 0.4
)

// Service implements SuggestionService and ApplyService on top of a model
// provider.
type Service struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewService returns a Service backed by provider. A nil provider is
// allowed; every call then fails with llm.ErrMissingAPIKey.
func NewService(provider llm.Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, logger: logger.Named("service")}
}

type suggestionsPayload struct {
	Suggestions []Suggestion `json:"suggestions"`
}

func (s *Service) Fetch(ctx context.Context, req Request) ([]Suggestion, error) {
	prompt, err := prompts.Suggest(prompts.Input{
		Prompt:   req.Prompt,
		Category: req.Category,
		Target:   req.Model,
	})
	if err != nil {
		return nil, &ServiceError{Op: opSuggest, Err: err}
	}

	content, err := s.complete(ctx, prompt, suggestTemperature)
	if err != nil {
		return nil, &ServiceError{Op: opSuggest, Err: err}
	}

	payload, err := formatting.Parse[suggestionsPayload](content)
	if err != nil {
		return nil, &ServiceError{Op: opSuggest, Err: err}
	}
	if payload.Suggestions == nil {
		return nil, &ServiceError{Op: opSuggest, Err: fmt.Errorf("%w: missing suggestions", ErrInvalidResponse)}
	}
	for i, sg := range payload.Suggestions {
		if strings.TrimSpace(sg.Suggestion) == "" {
			return nil, &ServiceError{Op: opSuggest, Err: fmt.Errorf("%w: suggestion %d has no text", ErrInvalidResponse, i)}
		}
	}

	s.logger.Debug("suggestions received", zap.Int("count", len(payload.Suggestions)))
	return payload.Suggestions, nil
}

func (s *Service) Apply(ctx context.Context, req Request, selected []string) (*Enhancement, error) {
	prompt, err := prompts.Apply(prompts.Input{
		Prompt:   req.Prompt,
		Category: req.Category,
		Target:   req.Model,
		Changes:  selected,
	})
	if err != nil {
		return nil, &ServiceError{Op: opApply, Err: err}
	}

	content, err := s.complete(ctx, prompt, applyTemperature)
	if err != nil {
		return nil, &ServiceError{Op: opApply, Err: err}
	}

	enh, err := formatting.Parse[Enhancement](content)
	if err != nil {
		return nil, &ServiceError{Op: opApply, Err: err}
	}
	if strings.TrimSpace(enh.EnhancedPrompt) == "" || enh.Changes == nil {
		return nil, &ServiceError{Op: opApply, Err: ErrInvalidResponse}
	}

	s.logger.Debug("enhancement received", zap.Int("changes", len(enh.Changes)))
	return &enh, nil
}

func (s *Service) complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	if s.provider == nil {
		return "", llm.ErrMissingAPIKey
	}

	req := llm.NewRequest("", prompts.System, prompt)
	req.Temperature = temperature
	req.JSON = true

	resp, err := s.provider.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	s.logger.Debug("completion",
		zap.String("provider", s.provider.Name()),
		zap.Int("tokens", resp.Usage.TotalTokens),
	)
	return resp.Content, nil
}
