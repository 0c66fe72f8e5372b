package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sant0-9/polish/internal/config"
	"github.com/sant0-9/polish/internal/enhance"
)

func (a *App) showResult(res enhance.Result) {
	s := a.state
	s.result = &res
	s.notice = ""
	s.copyErr = nil
	a.renderOutput()
	s.output.GotoTop()
}

// renderOutput lays the current result out as markdown in the output pane.
func (a *App) renderOutput() {
	res := a.state.result
	if res == nil {
		a.state.output.SetContent("")
		return
	}

	var md strings.Builder
	md.WriteString("## Enhanced prompt\n\n")
	md.WriteString(res.EnhancedPrompt)
	md.WriteString("\n\n## Changes\n\n")
	if len(res.Changes) == 0 {
		md.WriteString("_No changes reported._\n")
	}
	for _, c := range res.Changes {
		fmt.Fprintf(&md, "- %s\n", c)
	}
	md.WriteString("\n## Original prompt\n\n")
	for _, line := range strings.Split(res.Prompt, "\n") {
		fmt.Fprintf(&md, "> %s\n", line)
	}

	a.state.output.SetContent(a.renderMarkdown(md.String(), a.state.output.Width-2))
}

// renderMarkdown renders md for the terminal, falling back to the raw text.
func (a *App) renderMarkdown(md string, width int) string {
	style := "dark"
	if a.state.config.Theme == config.ThemeLight {
		style = "light"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(max(20, width)),
	)
	if err != nil {
		a.logger.Debug("markdown renderer unavailable", zap.Error(err))
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		a.logger.Debug("markdown render failed", zap.Error(err))
		return md
	}
	return strings.TrimRight(out, "\n")
}

func (a *App) handleResultKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	s := a.state
	if s.result == nil {
		a.view = viewEditor
		return s.prompt.Focus(), true
	}

	switch {
	case key.Matches(msg, keys.Copy):
		if err := clipboardWriteAll(s.result.EnhancedPrompt); err != nil {
			s.copyErr = err
			s.notice = ""
			a.logger.Warn("clipboard write failed", zap.Error(err))
		} else {
			s.copyErr = nil
			s.notice = "Copied enhanced prompt to clipboard"
		}
		return nil, true
	case key.Matches(msg, keys.Test):
		return a.startTest(s.result.EnhancedPrompt), true
	case key.Matches(msg, keys.Compare):
		return a.startCompare(s.result.Prompt, s.result.EnhancedPrompt), true
	case key.Matches(msg, keys.Edit):
		res := *s.result
		cmd := a.newPrompt(res.EnhancedPrompt)
		s.selectCategory(res.Category)
		s.selectTarget(res.Model)
		return cmd, true
	case key.Matches(msg, keys.Back):
		a.view = viewEditor
		s.focus = focusPrompt
		return s.prompt.Focus(), true
	}
	return nil, false
}

func (a *App) renderResult() string {
	var b strings.Builder
	s := a.state
	res := s.result
	if res == nil {
		return a.renderEditor()
	}

	title := styleTitle.Render("Enhanced Prompt")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n")
	meta := styleSubtitle.Render(fmt.Sprintf("%s · %s · %d change(s)", res.Category, res.Model, len(res.Changes)))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, meta))
	b.WriteString("\n\n")

	resultBox := styleBox.Copy().
		BorderForeground(colorPrimary).
		Render(s.output.View())
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, resultBox))
	b.WriteString("\n\n")

	switch {
	case s.copyErr != nil:
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleError.Render("Copy failed: "+s.copyErr.Error())))
		b.WriteString("\n\n")
	case s.notice != "":
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleSuccess.Render(s.notice)))
		b.WriteString("\n\n")
	}
	if s.historyErr != nil {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleError.Render("History: "+s.historyErr.Error())))
		b.WriteString("\n\n")
	}

	status := styleStatusBar.Render("[c] Copy  [t] Test  [b] A/B test  [e] Edit  [Ctrl+N] New  [Up/Down] Scroll  [Esc] Editor")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, status))

	return b.String()
}
