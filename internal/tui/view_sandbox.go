package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sant0-9/polish/internal/llm"
	"github.com/sant0-9/polish/internal/sandbox"
)

type sandboxChunkMsg struct {
	run    int
	event  llm.StreamEvent
	ok     bool
	events <-chan llm.StreamEvent
}

type compareMsg struct {
	run    int
	result sandbox.Comparison
	err    error
}

func readChunk(run int, events <-chan llm.StreamEvent) tea.Msg {
	ev, ok := <-events
	return sandboxChunkMsg{run: run, event: ev, ok: ok, events: events}
}

// beginSandbox clears the previous test and opens the sandbox view. It
// returns false when there is nothing to run against.
func (a *App) beginSandbox(title string) bool {
	s := a.state
	s.stopSandbox()
	s.sandboxTitle = title
	s.sandboxOut.Reset()
	s.sandboxCmp = nil
	s.sandboxErr = nil
	a.open(viewSandbox)

	if s.tester == nil {
		s.sandboxErr = llm.ErrMissingAPIKey
		return false
	}
	s.sandboxBusy = true
	return true
}

// startTest streams the model's answer to prompt into the sandbox view.
func (a *App) startTest(prompt string) tea.Cmd {
	if !a.beginSandbox("Test run") {
		return nil
	}
	s := a.state
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	s.cancelSandbox = cancel

	run := s.sandboxRun
	tester := s.tester
	return tea.Batch(
		func() tea.Msg {
			events, err := tester.Stream(ctx, prompt)
			if err != nil {
				return sandboxChunkMsg{run: run, event: llm.StreamEvent{Error: err}, ok: true}
			}
			return readChunk(run, events)
		},
		s.spinner.Tick,
	)
}

// startCompare runs the original and enhanced prompts side by side.
func (a *App) startCompare(original, enhanced string) tea.Cmd {
	if !a.beginSandbox("A/B test") {
		return nil
	}
	s := a.state
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	s.cancelSandbox = cancel

	run := s.sandboxRun
	tester := s.tester
	return tea.Batch(
		func() tea.Msg {
			res, err := tester.Compare(ctx, original, enhanced)
			return compareMsg{run: run, result: res, err: err}
		},
		s.spinner.Tick,
	)
}

func (a *App) handleChunk(msg sandboxChunkMsg) tea.Cmd {
	s := a.state
	if msg.run != s.sandboxRun {
		return nil
	}

	s.sandboxOut.WriteString(msg.event.Chunk)
	switch {
	case msg.event.Error != nil:
		s.sandboxErr = msg.event.Error
		a.logger.Warn("sandbox stream failed", zap.Error(msg.event.Error))
		a.finishSandbox()
		return nil
	case !msg.ok, msg.event.Done, msg.events == nil:
		a.finishSandbox()
		return nil
	}

	return func() tea.Msg {
		return readChunk(msg.run, msg.events)
	}
}

func (a *App) handleCompare(msg compareMsg) {
	s := a.state
	if msg.run != s.sandboxRun {
		return
	}
	if msg.err != nil {
		s.sandboxErr = msg.err
		a.logger.Warn("sandbox compare failed", zap.Error(msg.err))
	} else {
		res := msg.result
		s.sandboxCmp = &res
	}
	a.finishSandbox()
}

func (a *App) finishSandbox() {
	s := a.state
	if s.cancelSandbox != nil {
		s.cancelSandbox()
		s.cancelSandbox = nil
	}
	s.sandboxBusy = false
}

func (a *App) handleSandboxKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, keys.Back) {
		a.state.stopSandbox()
		a.close()
	}
	return nil, true
}

func (a *App) renderSandbox() string {
	var b strings.Builder
	s := a.state

	title := styleTitle.Render(s.sandboxTitle)
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	maxLines := max(5, a.height-10)

	switch {
	case s.sandboxCmp != nil:
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, a.renderComparison(maxLines)))
		b.WriteString("\n\n")
	case s.sandboxOut.Len() > 0 || s.sandboxBusy:
		out := s.sandboxOut.String()
		if out == "" {
			out = "..."
		}
		border := colorPrimary
		if s.sandboxBusy {
			border = colorSecondary
		}
		box := styleBox.Copy().
			Width(min(90, max(30, a.width-4))).
			BorderForeground(border).
			Render(tail(out, maxLines))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, box))
		b.WriteString("\n\n")
	}

	if s.sandboxBusy {
		line := s.spinner.View() + " Running..."
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, line))
		b.WriteString("\n\n")
	}
	if s.sandboxErr != nil {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleError.Render("Error: "+s.sandboxErr.Error())))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleStatusBar.Render("[Esc] Back")))
	return a.centerVertically(b.String())
}

func (a *App) renderComparison(maxLines int) string {
	cmp := a.state.sandboxCmp
	colWidth := max(20, (a.width-6)/2)

	column := func(label, body string) string {
		header := styleLabel.Render(label)
		return styleBox.Copy().
			Width(colWidth).
			BorderForeground(colorPrimary).
			Render(header + "\n\n" + tail(body, maxLines))
	}

	left := column("A: original", cmp.A)
	if !cmp.HasB() {
		return left
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, column("B: enhanced", cmp.B))
}

// tail keeps the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
