package llm

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// emit delivers ev unless the consumer has gone away.
func emit(ctx context.Context, out chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// readSSE calls fn with the payload of every "data:" line in body until fn
// returns false or the body ends.
func readSSE(body io.Reader, fn func(data string) bool) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		if !fn(strings.TrimSpace(strings.TrimPrefix(line, "data:"))) {
			return nil
		}
	}
	return scanner.Err()
}

// pipe runs produce on its own goroutine and returns the channel it writes to.
// The channel and body are closed when produce returns.
func pipe(ctx context.Context, body io.ReadCloser, produce func(out chan<- StreamEvent) error) <-chan StreamEvent {
	events := make(chan StreamEvent)
	go func() {
		defer close(events)
		defer body.Close()
		if err := produce(events); err != nil && ctx.Err() == nil {
			emit(ctx, events, StreamEvent{Error: err})
		}
	}()
	return events
}
