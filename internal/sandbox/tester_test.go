package sandbox

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sant0-9/polish/internal/llm"
)

func TestMain(m *testing.M) {
	// genai pulls in opencensus, which starts a worker at init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// echoProvider answers every prompt with "echo: <prompt>" and fails on
// prompts containing "fail".
type echoProvider struct {
	mu   sync.Mutex
	reqs []*llm.CompletionRequest
}

func (p *echoProvider) Name() string { return "echo" }

func (p *echoProvider) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.reqs = append(p.reqs, req)
	p.mu.Unlock()

	prompt := req.Messages[len(req.Messages)-1].Content
	if strings.Contains(prompt, "fail") {
		return nil, errors.New("model overloaded")
	}
	if strings.Contains(prompt, "block") {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return &llm.CompletionResponse{Content: "echo: " + prompt}, nil
}

func (p *echoProvider) Stream(ctx context.Context, req *llm.CompletionRequest) (<-chan llm.StreamEvent, error) {
	prompt := req.Messages[len(req.Messages)-1].Content
	ch := make(chan llm.StreamEvent)
	go func() {
		defer close(ch)
		for _, word := range strings.Fields(prompt) {
			select {
			case ch <- llm.StreamEvent{Chunk: word}:
			case <-ctx.Done():
				return
			}
		}
		select {
		case ch <- llm.StreamEvent{Done: true}:
		case <-ctx.Done():
		}
	}()
	return ch, nil
}

func (p *echoProvider) Ping(ctx context.Context) error { return nil }

func TestRun(t *testing.T) {
	p := &echoProvider{}
	tester := NewTester(p, "test-model", nil)

	out, err := tester.Run(context.Background(), "hello there")
	require.NoError(t, err)
	assert.Equal(t, "echo: hello there", out)

	require.Len(t, p.reqs, 1)
	assert.Equal(t, "test-model", p.reqs[0].Model)
	assert.InDelta(t, 0.7, p.reqs[0].Temperature, 1e-9)
	assert.False(t, p.reqs[0].JSON)
}

func TestRunErrors(t *testing.T) {
	tester := NewTester(&echoProvider{}, "", nil)

	_, err := tester.Run(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	_, err = tester.Run(context.Background(), "please fail")
	require.Error(t, err)
	assert.Equal(t, "failed to generate test response: model overloaded", err.Error())

	_, err = NewTester(nil, "", nil).Run(context.Background(), "hi")
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
}

func TestStream(t *testing.T) {
	tester := NewTester(&echoProvider{}, "", nil)

	events, err := tester.Stream(context.Background(), "one two three")
	require.NoError(t, err)

	var chunks []string
	for ev := range events {
		if ev.Chunk != "" {
			chunks = append(chunks, ev.Chunk)
		}
	}
	assert.Equal(t, []string{"one", "two", "three"}, chunks)

	_, err = tester.Stream(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestCompare(t *testing.T) {
	tester := NewTester(&echoProvider{}, "", nil)

	got, err := tester.Compare(context.Background(), "variant a", "variant b")
	require.NoError(t, err)
	assert.Equal(t, Comparison{A: "echo: variant a", B: "echo: variant b"}, got)
	assert.True(t, got.HasB())
}

func TestCompareWithoutB(t *testing.T) {
	p := &echoProvider{}
	tester := NewTester(p, "", nil)

	got, err := tester.Compare(context.Background(), "only a", "   ")
	require.NoError(t, err)
	assert.Equal(t, "echo: only a", got.A)
	assert.False(t, got.HasB())
	assert.Len(t, p.reqs, 1)
}

func TestCompareFailureCancelsOther(t *testing.T) {
	tester := NewTester(&echoProvider{}, "", nil)

	_, err := tester.Compare(context.Background(), "block until cancelled", "fail fast")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variation B")
}

func TestCompareEmptyA(t *testing.T) {
	tester := NewTester(&echoProvider{}, "", nil)
	_, err := tester.Compare(context.Background(), "", "b")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}
