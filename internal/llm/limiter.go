package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// limited wraps a Provider so that every outbound call waits for a token.
type limited struct {
	Provider
	limiter *rate.Limiter
}

// Limit caps p at rpm requests per minute. A non-positive rpm returns p as is.
func Limit(p Provider, rpm int) Provider {
	if rpm <= 0 || p == nil {
		return p
	}
	return &limited{
		Provider: p,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
	}
}

func (l *limited) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.Provider.Complete(ctx, req)
}

func (l *limited) Stream(ctx context.Context, req *CompletionRequest) (<-chan StreamEvent, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.Provider.Stream(ctx, req)
}
