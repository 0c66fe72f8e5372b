package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sant0-9/polish/internal/config"
	"github.com/sant0-9/polish/internal/history"
	"github.com/sant0-9/polish/internal/llm"
	"github.com/sant0-9/polish/internal/prompts"
)

// scriptedProvider answers completions from replies in order and streams
// chunks.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []string
	chunks  []string
	err     error
	reqs    []*llm.CompletionRequest
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reqs = append(p.reqs, req)
	if p.err != nil {
		return nil, p.err
	}
	if len(p.replies) == 0 {
		return nil, errors.New("no reply scripted")
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return &llm.CompletionResponse{Content: reply}, nil
}

func (p *scriptedProvider) Stream(ctx context.Context, req *llm.CompletionRequest) (<-chan llm.StreamEvent, error) {
	events := make(chan llm.StreamEvent)
	go func() {
		defer close(events)
		for _, c := range p.chunks {
			select {
			case events <- llm.StreamEvent{Chunk: c}:
			case <-ctx.Done():
				return
			}
		}
		select {
		case events <- llm.StreamEvent{Done: true}:
		case <-ctx.Done():
		}
	}()
	return events, nil
}

func (p *scriptedProvider) Ping(ctx context.Context) error { return nil }

const suggestReply = `{"suggestions": [
  {"technique": "Role Prompting", "suggestion": "Add a persona"},
  {"technique": "Specify Format", "suggestion": "Specify the form"}
]}`

const applyReply = "```json\n" + `{"enhancedPrompt": "As a poet, write a sonnet about the moon.", "changes": ["Asked for a sonnet"]}` + "\n```"

// useTestEnv points config, history and the provider at test doubles and
// restores the command globals afterwards.
func useTestEnv(t *testing.T, p llm.Provider) {
	t.Helper()
	t.Setenv("POLISH_CONFIG_DIR", t.TempDir())

	cfg = config.DefaultConfig()
	logger = zap.NewNop()
	orig := newProvider
	newProvider = func(ctx context.Context, c *config.Config) (llm.Provider, error) {
		return p, nil
	}
	t.Cleanup(func() {
		newProvider = orig
		category = prompts.DefaultCategory
		target = prompts.DefaultTarget
		selection = ""
		asJSON = false
		noHistory = false
		compareWith = ""
		techniqueLevel = ""
	})
	category = prompts.DefaultCategory
	target = prompts.DefaultTarget
}

func newCmd(stdin string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	return cmd, out
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in      string
		n       int
		want    []int
		wantErr bool
	}{
		{"1", 3, []int{0}, false},
		{"1,3", 3, []int{0, 2}, false},
		{" 2 , 2 ,1", 3, []int{1, 0}, false},
		{"4", 3, nil, true},
		{"0", 3, nil, true},
		{"x", 3, nil, true},
		{",", 3, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSelection(tt.in, tt.n)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadPrompt(t *testing.T) {
	cmd, _ := newCmd("from stdin\n")
	got, err := readPrompt(cmd, []string{"write", "a", "poem"})
	require.NoError(t, err)
	assert.Equal(t, "write a poem", got)

	got, err = readPrompt(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	cmd, _ = newCmd("  \n")
	_, err = readPrompt(cmd, nil)
	assert.Error(t, err)
}

func TestEnhanceAppliesSelection(t *testing.T) {
	p := &scriptedProvider{replies: []string{suggestReply, applyReply}}
	useTestEnv(t, p)
	selection = "2"
	asJSON = true

	cmd, out := newCmd("")
	require.NoError(t, runEnhance(cmd, []string{"write a poem about the moon"}))

	var got enhanceOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, []string{"Specify the form"}, got.Applied)
	assert.Equal(t, "As a poet, write a sonnet about the moon.", got.EnhancedPrompt)
	assert.Equal(t, []string{"Asked for a sonnet"}, got.Changes)
	assert.Len(t, got.Suggestions, 2)

	require.Len(t, p.reqs, 2)
	applyPrompt := p.reqs[1].Messages[len(p.reqs[1].Messages)-1].Content
	assert.Contains(t, applyPrompt, "Specify the form")
	assert.NotContains(t, applyPrompt, "Add a persona")

	store, err := openHistory()
	require.NoError(t, err)
	defer store.Close()
	entries, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "write a poem about the moon", entries[0].OriginalPrompt)
	assert.Equal(t, prompts.DefaultTarget, entries[0].Model)
}

func TestEnhanceNoHistory(t *testing.T) {
	useTestEnv(t, &scriptedProvider{replies: []string{suggestReply, applyReply}})
	noHistory = true

	cmd, out := newCmd("write a poem")
	require.NoError(t, runEnhance(cmd, nil))
	assert.Contains(t, out.String(), "As a poet, write a sonnet about the moon.")
	assert.Contains(t, out.String(), "- Asked for a sonnet")

	store, err := openHistory()
	require.NoError(t, err)
	defer store.Close()
	entries, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEnhanceSuggestFailure(t *testing.T) {
	useTestEnv(t, &scriptedProvider{err: errors.New("quota exceeded")})

	cmd, _ := newCmd("")
	err := runEnhance(cmd, []string{"write a poem"})
	require.Error(t, err)
	assert.Equal(t, "failed to get suggestions: quota exceeded", err.Error())
}

func TestEnhanceRejectsUnknownCategory(t *testing.T) {
	useTestEnv(t, &scriptedProvider{})
	category = "Poetry"

	cmd, _ := newCmd("")
	err := runEnhance(cmd, []string{"write a poem"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown category "Poetry"`)
}

func TestSuggestPrintsNumberedList(t *testing.T) {
	useTestEnv(t, &scriptedProvider{replies: []string{suggestReply}})

	cmd, out := newCmd("")
	require.NoError(t, runSuggest(cmd, []string{"write a poem"}))
	assert.Contains(t, out.String(), " 1. [Role Prompting] Add a persona")
	assert.Contains(t, out.String(), " 2. [Specify Format] Specify the form")
}

func TestTestCommandStreams(t *testing.T) {
	useTestEnv(t, &scriptedProvider{chunks: []string{"Silver ", "light"}})

	cmd, out := newCmd("")
	require.NoError(t, runTest(cmd, []string{"write a poem"}))
	assert.Equal(t, "Silver light\n", out.String())
}

func TestTestCommandCompares(t *testing.T) {
	useTestEnv(t, &scriptedProvider{replies: []string{"answer", "answer"}})
	compareWith = "As a poet, write a poem"

	cmd, out := newCmd("")
	require.NoError(t, runTest(cmd, []string{"write a poem"}))
	assert.Contains(t, out.String(), "=== A ===")
	assert.Contains(t, out.String(), "=== B ===")
}

func TestHistoryCommands(t *testing.T) {
	useTestEnv(t, &scriptedProvider{})

	store, err := openHistory()
	require.NoError(t, err)
	added, err := store.Add(context.Background(), history.Entry{
		OriginalPrompt: "summarize this report",
		EnhancedPrompt: "As an analyst, summarize this report in five bullets",
		Category:       "Business",
		Model:          "GPT-4o",
		Changes:        []string{"Added a persona"},
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	cmd, out := newCmd("")
	require.NoError(t, runHistoryList(cmd, nil))
	assert.Contains(t, out.String(), "summarize this report")
	assert.Contains(t, out.String(), added.ID[:8])

	cmd, out = newCmd("")
	require.NoError(t, runHistoryShow(cmd, []string{added.ID[:8]}))
	assert.Contains(t, out.String(), "As an analyst, summarize this report in five bullets")
	assert.Contains(t, out.String(), "- Added a persona")

	cmd, _ = newCmd("")
	require.NoError(t, runHistoryDelete(cmd, []string{added.ID}))

	cmd, _ = newCmd("")
	err = runHistoryShow(cmd, []string{added.ID})
	assert.ErrorIs(t, err, history.ErrNotFound)

	cmd, out = newCmd("")
	require.NoError(t, runHistoryList(cmd, nil))
	assert.Contains(t, out.String(), "No history yet.")
}

func TestTemplatesCommand(t *testing.T) {
	useTestEnv(t, &scriptedProvider{})

	cmd, out := newCmd("")
	require.NoError(t, runTemplates(cmd, nil))
	assert.Contains(t, out.String(), "Creative Content")
	assert.Contains(t, out.String(), "SQL Query")

	cmd, out = newCmd("")
	require.NoError(t, runTemplates(cmd, []string{"sql", "query"}))
	assert.NotEmpty(t, strings.TrimSpace(out.String()))

	cmd, _ = newCmd("")
	assert.Error(t, runTemplates(cmd, []string{"Limerick"}))
}

func TestTechniquesCommand(t *testing.T) {
	useTestEnv(t, &scriptedProvider{})

	techniqueLevel = "advanced"
	cmd, out := newCmd("")
	require.NoError(t, runTechniques(cmd, nil))
	assert.NotContains(t, out.String(), "Role Prompting")

	techniqueLevel = "expert"
	cmd, _ = newCmd("")
	assert.Error(t, runTechniques(cmd, nil))
}

func TestRootRunsSetupForSubcommands(t *testing.T) {
	t.Setenv("POLISH_CONFIG_DIR", t.TempDir())
	out := &bytes.Buffer{}
	rootCmd.SetArgs([]string{"version"})
	rootCmd.SetOut(out)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})
	cfg, logger = nil, nil

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "polish "+version+"\n", out.String())
	require.NotNil(t, cfg)
	require.NotNil(t, logger)
}
