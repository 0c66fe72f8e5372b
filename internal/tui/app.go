// Package tui is the interactive terminal front end.
package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sant0-9/polish/internal/config"
	"github.com/sant0-9/polish/internal/enhance"
	"github.com/sant0-9/polish/internal/history"
	"github.com/sant0-9/polish/internal/library"
	"github.com/sant0-9/polish/internal/llm"
	"github.com/sant0-9/polish/internal/sandbox"
)

const pingTimeout = 10 * time.Second

// clipboardWriteAll is swapped out in tests.
var clipboardWriteAll = clipboard.WriteAll

type view int

const (
	viewSetup view = iota
	viewEditor
	viewResult
	viewSandbox
	viewHistory
	viewLibrary
	viewTechniques
	viewSettings
	viewHelp
)

// Deps are the collaborators the app runs against. Config is required.
// Suggester, Applier and Tester replace the provider-backed services when
// set, and the app then skips connecting to a provider.
type Deps struct {
	Config     *config.Config
	NeedsSetup bool

	History *history.Store
	Library *library.Library
	Logger  *zap.Logger

	Suggester enhance.SuggestionService
	Applier   enhance.ApplyService
	Tester    *sandbox.Tester
}

type App struct {
	width    int
	height   int
	view     view
	back     view
	state    *state
	quitting bool

	history *history.Store
	library *library.Library
	logger  *zap.Logger
}

func NewApp(deps Deps) *App {
	s := newState()
	s.config = deps.Config
	if s.config == nil {
		s.config = config.DefaultConfig()
	}
	s.needsSetup = deps.NeedsSetup
	applyTheme(s.config.Theme)

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{
		view:    viewEditor,
		back:    viewEditor,
		state:   s,
		history: deps.History,
		library: deps.Library,
		logger:  logger.Named("tui"),
	}
	if a.library == nil {
		lib, err := library.Load("")
		if err != nil {
			a.logger.Warn("built-in templates unavailable", zap.Error(err))
			lib = &library.Library{}
		}
		a.library = lib
	}

	if deps.Suggester != nil && deps.Applier != nil {
		a.setWorkflow(deps.Suggester, deps.Applier)
		s.tester = deps.Tester
		s.providerReady = true
	} else {
		// Until a provider connects, runs fail with a missing key error.
		svc := enhance.NewService(nil, a.logger)
		a.setWorkflow(svc, svc)
	}

	if s.needsSetup {
		a.view = viewSetup
	}
	return a
}

func (a *App) setWorkflow(suggester enhance.SuggestionService, applier enhance.ApplyService) {
	a.state.workflow = enhance.New(suggester, applier,
		enhance.WithLogger(a.logger),
		enhance.OnTransition(func(_, to enhance.State) {
			if to == enhance.StateReviewing {
				a.state.reviewCursor = 0
			}
		}),
	)
}

func (a *App) Init() tea.Cmd {
	if a.state.needsSetup {
		return tea.Batch(tea.WindowSize(), textinput.Blink)
	}

	cmds := []tea.Cmd{tea.WindowSize(), a.state.prompt.Focus()}
	if !a.state.providerReady {
		cmds = append(cmds, a.connect())
	}
	return tea.Batch(cmds...)
}

// connect builds the configured provider and checks that it answers.
func (a *App) connect() tea.Cmd {
	cfg := *a.state.config
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()

		provider, err := llm.NewProvider(ctx, &cfg)
		if err != nil {
			return providerErrorMsg{err}
		}
		if err := provider.Ping(ctx); err != nil {
			return providerErrorMsg{err}
		}

		testProvider, err := llm.NewSandboxProvider(ctx, &cfg)
		if err != nil {
			return providerErrorMsg{err}
		}
		model := cfg.Model
		if testProvider == nil {
			testProvider = provider
		} else {
			model = cfg.Sandbox.Model
		}
		return providerReadyMsg{provider: provider, tester: testProvider, model: model}
	}
}

func (a *App) bind(msg providerReadyMsg) {
	s := a.state
	s.provider = msg.provider
	s.providerReady = true
	s.providerError = nil

	svc := enhance.NewService(msg.provider, a.logger)
	a.setWorkflow(svc, svc)
	s.tester = sandbox.NewTester(msg.tester, msg.model, a.logger)
	a.logger.Info("provider ready", zap.String("provider", msg.provider.Name()))
}

// runCall executes a workflow call off the update loop.
func (a *App) runCall(call enhance.Call) tea.Cmd {
	if call == nil {
		return nil
	}
	wf := a.state.workflow
	timeout := a.state.config.Timeout
	return tea.Batch(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return workflowMsg{workflow: wf, event: call(ctx)}
		},
		a.state.spinner.Tick,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd, handled := a.handleKey(msg)
		if handled {
			return a, cmd
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()

	case setupCompleteMsg:
		a.state.needsSetup = false
		a.view = viewEditor
		return a, tea.Batch(a.connect(), a.state.prompt.Focus())

	case setupErrorMsg:
		a.state.providerError = msg.error
		return a, nil

	case settingsSavedMsg:
		a.state.notice = "Settings saved"
		if !msg.reconnect {
			return a, nil
		}
		a.state.providerReady = false
		return a, a.connect()

	case providerReadyMsg:
		a.bind(msg)
		return a, nil

	case providerErrorMsg:
		a.state.providerReady = false
		a.state.providerError = msg.error
		a.logger.Warn("provider unavailable", zap.Error(msg.error))
		return a, nil

	case workflowMsg:
		return a, a.handleWorkflow(msg)

	case historySavedMsg:
		if msg.err != nil {
			a.state.historyErr = msg.err
			a.logger.Warn("history save failed", zap.Error(msg.err))
		}
		return a, nil

	case historyLoadedMsg:
		a.state.historyErr = msg.err
		if msg.err == nil {
			a.state.entries = msg.entries
		}
		if a.state.historyCursor >= len(a.state.entries) {
			a.state.historyCursor = max(0, len(a.state.entries)-1)
		}
		return a, nil

	case sandboxChunkMsg:
		return a, a.handleChunk(msg)

	case compareMsg:
		a.handleCompare(msg)
		return a, nil

	case spinner.TickMsg:
		if !a.state.workflow.Busy() && !a.state.sandboxBusy {
			return a, nil
		}
		var cmd tea.Cmd
		a.state.spinner, cmd = a.state.spinner.Update(msg)
		return a, cmd
	}

	// Update inputs based on view
	switch {
	case a.view == viewSetup && a.state.setupStep == 1:
		var cmd tea.Cmd
		a.state.apiKeyInput, cmd = a.state.apiKeyInput.Update(msg)
		cmds = append(cmds, cmd)
	case a.view == viewSetup && a.state.setupStep == 2:
		var cmd tea.Cmd
		a.state.baseURLInput, cmd = a.state.baseURLInput.Update(msg)
		cmds = append(cmds, cmd)
	case a.view == viewSettings && a.state.settingsMode == "apikey":
		var cmd tea.Cmd
		a.state.apiKeyInput, cmd = a.state.apiKeyInput.Update(msg)
		cmds = append(cmds, cmd)
	case a.view == viewEditor && a.editing():
		var cmd tea.Cmd
		a.state.prompt, cmd = a.state.prompt.Update(msg)
		cmds = append(cmds, cmd)
	case a.view == viewResult:
		var cmd tea.Cmd
		a.state.output, cmd = a.state.output.Update(msg)
		cmds = append(cmds, cmd)
	case a.view == viewTechniques:
		var cmd tea.Cmd
		a.state.guide, cmd = a.state.guide.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

// editing reports whether keys go to the prompt textarea.
func (a *App) editing() bool {
	return a.state.workflow.State() == enhance.StateForm && a.state.focus == focusPrompt
}

// handleKey processes global bindings, then the active view's. handled
// means the key must not also reach an input.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, keys.Quit) {
		a.quitting = true
		a.state.stopSandbox()
		return tea.Quit, true
	}

	if a.view == viewSetup {
		return a.handleSetupKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Help):
		a.open(viewHelp)
		return nil, true
	case key.Matches(msg, keys.History):
		a.open(viewHistory)
		return a.loadHistory(), true
	case key.Matches(msg, keys.Library):
		a.open(viewLibrary)
		return nil, true
	case key.Matches(msg, keys.Techniques):
		a.open(viewTechniques)
		a.renderGuide()
		return nil, true
	case key.Matches(msg, keys.Settings):
		a.open(viewSettings)
		a.state.settingsMode = ""
		return nil, true
	case key.Matches(msg, keys.New):
		return a.newPrompt(""), true
	}

	switch a.view {
	case viewEditor:
		return a.handleEditorKey(msg)
	case viewResult:
		return a.handleResultKey(msg)
	case viewSandbox:
		return a.handleSandboxKey(msg)
	case viewHistory:
		return a.handleHistoryKey(msg)
	case viewLibrary:
		return a.handleLibraryKey(msg)
	case viewTechniques:
		if key.Matches(msg, keys.Back) {
			a.close()
			return nil, true
		}
		return nil, false
	case viewSettings:
		return a.handleSettingsKey(msg)
	case viewHelp:
		if key.Matches(msg, keys.Back) {
			a.close()
		}
		return nil, true
	}
	return nil, false
}

// open switches to an overlay view, remembering where to return.
func (a *App) open(v view) {
	if a.view == v {
		return
	}
	if a.view == viewEditor || a.view == viewResult {
		a.back = a.view
	}
	if a.view == viewSandbox {
		a.state.stopSandbox()
		a.back = viewResult
	}
	a.view = v
	if v != viewEditor {
		a.state.prompt.Blur()
	}
}

func (a *App) close() {
	a.view = a.back
	if a.view == viewResult && a.state.result == nil {
		a.view = viewEditor
	}
}

// newPrompt abandons the current run and opens the editor on text.
func (a *App) newPrompt(text string) tea.Cmd {
	s := a.state
	s.stopSandbox()
	s.workflow.Reset()
	s.result = nil
	s.notice = ""
	s.prompt.SetValue(text)
	s.focus = focusPrompt
	a.view = viewEditor
	a.back = viewEditor
	return s.prompt.Focus()
}

func (a *App) handleWorkflow(msg workflowMsg) tea.Cmd {
	if msg.workflow != a.state.workflow {
		return nil
	}
	res := a.state.workflow.Handle(msg.event)
	if res == nil {
		if a.state.workflow.State() == enhance.StateForm && a.view == viewEditor {
			a.state.focus = focusPrompt
			return a.state.prompt.Focus()
		}
		return nil
	}

	a.showResult(*res)
	if a.view == viewEditor {
		a.view = viewResult
	}
	a.back = viewResult
	return a.saveHistory(*res)
}

func (a *App) resize() {
	w := min(100, max(20, a.width-4))
	h := max(5, a.height-10)
	a.state.output.Width = w
	a.state.output.Height = h
	a.state.guide.Width = w
	a.state.guide.Height = h
	a.state.prompt.SetWidth(min(70, max(20, a.width-8)))
	if a.state.result != nil {
		a.renderOutput()
	}
}

type setupCompleteMsg struct{}
type setupErrorMsg struct{ error }
type settingsSavedMsg struct{ reconnect bool }

type providerReadyMsg struct {
	provider llm.Provider
	tester   llm.Provider
	model    string
}

type providerErrorMsg struct{ error }

type workflowMsg struct {
	workflow *enhance.Workflow
	event    enhance.Event
}

func (a *App) View() string {
	if a.quitting {
		return ""
	}

	switch a.view {
	case viewSetup:
		return a.renderSetup()
	case viewResult:
		return a.renderResult()
	case viewSandbox:
		return a.renderSandbox()
	case viewHistory:
		return a.renderHistory()
	case viewLibrary:
		return a.renderLibrary()
	case viewTechniques:
		return a.renderTechniques()
	case viewSettings:
		return a.renderSettings()
	case viewHelp:
		return a.renderHelp()
	default:
		return a.renderEditor()
	}
}

var _ tea.Model = (*App)(nil)
