// Package sandbox runs prompts against a model so users can see what a
// prompt actually produces before they use it.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sant0-9/polish/internal/llm"
)

const (
	testTemperature = 0.7
	testMaxTokens   = 2048
)

var ErrEmptyPrompt = errors.New("prompt is empty")

// Tester sends prompts verbatim to a provider.
type Tester struct {
	provider llm.Provider
	model    string
	logger   *zap.Logger
}

func NewTester(provider llm.Provider, model string, logger *zap.Logger) *Tester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tester{provider: provider, model: model, logger: logger.Named("sandbox")}
}

// Comparison holds the outputs of an A/B run. B is empty when no second
// variation was given.
type Comparison struct {
	A string
	B string
}

func (c Comparison) HasB() bool {
	return c.B != ""
}

func (t *Tester) request(prompt string) *llm.CompletionRequest {
	return &llm.CompletionRequest{
		Model:       t.model,
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens:   testMaxTokens,
		Temperature: testTemperature,
	}
}

// Run returns the model's answer to prompt.
func (t *Tester) Run(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	if t.provider == nil {
		return "", fmt.Errorf("failed to generate test response: %w", llm.ErrMissingAPIKey)
	}

	resp, err := t.provider.Complete(ctx, t.request(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate test response: %w", err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("failed to generate test response: %w", llm.ErrEmptyResponse)
	}

	t.logger.Debug("test response", zap.Int("tokens", resp.Usage.TotalTokens))
	return resp.Content, nil
}

// Stream is Run with incremental output.
func (t *Tester) Stream(ctx context.Context, prompt string) (<-chan llm.StreamEvent, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if t.provider == nil {
		return nil, fmt.Errorf("failed to generate test response: %w", llm.ErrMissingAPIKey)
	}

	events, err := t.provider.Stream(ctx, t.request(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate test response: %w", err)
	}
	return events, nil
}

// Compare runs both variations concurrently. b may be blank, in which case
// only a is run. The first failure cancels the other run.
func (t *Tester) Compare(ctx context.Context, a, b string) (Comparison, error) {
	if strings.TrimSpace(a) == "" {
		return Comparison{}, ErrEmptyPrompt
	}

	var out Comparison
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := t.Run(ctx, a)
		if err != nil {
			return fmt.Errorf("variation A: %w", err)
		}
		out.A = res
		return nil
	})
	if strings.TrimSpace(b) != "" {
		g.Go(func() error {
			res, err := t.Run(ctx, b)
			if err != nil {
				return fmt.Errorf("variation B: %w", err)
			}
			out.B = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Comparison{}, err
	}
	return out, nil
}
