package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sant0-9/polish/internal/config"
	"github.com/sant0-9/polish/internal/enhance"
	"github.com/sant0-9/polish/internal/history"
	"github.com/sant0-9/polish/internal/llm"
	"github.com/sant0-9/polish/internal/prompts"
	"github.com/sant0-9/polish/internal/sandbox"
)

// focus is the editor field receiving keys while the form is shown.
type focus int

const (
	focusPrompt focus = iota
	focusCategory
	focusTarget
)

type state struct {
	// Config
	config     *config.Config
	needsSetup bool

	// Setup wizard state
	setupStep        int
	selectedProvider int
	apiKeyInput      textinput.Model
	baseURLInput     textinput.Model

	// Provider
	provider      llm.Provider
	providerReady bool
	providerError error

	// Editor
	workflow     *enhance.Workflow
	prompt       textarea.Model
	category     int
	target       int
	focus        focus
	reviewCursor int
	spinner      spinner.Model

	// Result
	result  *enhance.Result
	output  viewport.Model
	notice  string
	copyErr error

	// Sandbox
	tester        *sandbox.Tester
	sandboxRun    int
	sandboxTitle  string
	sandboxOut    strings.Builder
	sandboxCmp    *sandbox.Comparison
	sandboxBusy   bool
	sandboxErr    error
	cancelSandbox context.CancelFunc

	// History
	entries       []history.Entry
	historyCursor int
	historyErr    error

	// Library
	libraryCursor int

	// Techniques
	guide viewport.Model

	// Settings
	settingsMode     string
	settingsSelected int
}

func newState() *state {
	apiKey := textinput.New()
	apiKey.Placeholder = "Paste your API key here..."
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.CharLimit = 200
	apiKey.Width = 50

	baseURL := textinput.New()
	baseURL.Placeholder = "http://localhost:8080/v1"
	baseURL.CharLimit = 200
	baseURL.Width = 50

	prompt := textarea.New()
	prompt.Placeholder = "Describe what you want the model to do..."
	prompt.CharLimit = maxPromptChars
	prompt.ShowLineNumbers = false
	prompt.SetWidth(70)
	prompt.SetHeight(8)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleSelected

	return &state{
		apiKeyInput:  apiKey,
		baseURLInput: baseURL,
		prompt:       prompt,
		spinner:      sp,
		output:       viewport.New(80, 20),
		guide:        viewport.New(80, 20),
	}
}

func (s *state) categoryName() string {
	return prompts.Categories[s.category]
}

func (s *state) targetName() string {
	return prompts.Targets[s.target].Name
}

// request captures the editor fields for a submit.
func (s *state) request() enhance.Request {
	return enhance.Request{
		Prompt:   s.prompt.Value(),
		Category: s.categoryName(),
		Model:    s.targetName(),
	}
}

// selectCategory points the category picker at name, leaving it unchanged
// when name is unknown.
func (s *state) selectCategory(name string) {
	for i, c := range prompts.Categories {
		if strings.EqualFold(c, name) {
			s.category = i
			return
		}
	}
}

func (s *state) selectTarget(name string) {
	for i, t := range prompts.Targets {
		if strings.EqualFold(t.Name, name) {
			s.target = i
			return
		}
	}
}

// stopSandbox cancels any running test and invalidates its pending messages.
func (s *state) stopSandbox() {
	if s.cancelSandbox != nil {
		s.cancelSandbox()
		s.cancelSandbox = nil
	}
	s.sandboxRun++
	s.sandboxBusy = false
}
