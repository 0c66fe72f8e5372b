package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/polish/internal/config"
	"github.com/sant0-9/polish/internal/enhance"
	"github.com/sant0-9/polish/internal/prompts"
)

const logo = "p o l i s h"

func (a *App) handleEditorKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	s := a.state
	wf := s.workflow

	switch wf.State() {
	case enhance.StateForm:
		switch {
		case key.Matches(msg, keys.Enhance):
			return a.submit(), true
		case key.Matches(msg, keys.Tab):
			s.focus = (s.focus + 1) % 3
			if s.focus == focusPrompt {
				return s.prompt.Focus(), true
			}
			s.prompt.Blur()
			return nil, true
		case key.Matches(msg, keys.Back):
			if s.focus != focusPrompt {
				s.focus = focusPrompt
				return s.prompt.Focus(), true
			}
			if s.result != nil {
				s.prompt.Blur()
				a.view = viewResult
			}
			return nil, true
		}

		if s.focus == focusPrompt {
			return nil, false
		}
		switch {
		case key.Matches(msg, keys.Left):
			a.cycle(-1)
		case key.Matches(msg, keys.Right), key.Matches(msg, keys.Toggle):
			a.cycle(1)
		case key.Matches(msg, keys.Enter):
			return a.submit(), true
		}
		return nil, true

	case enhance.StateReviewing:
		suggestions := wf.Suggestions()
		switch {
		case key.Matches(msg, keys.Up):
			if s.reviewCursor > 0 {
				s.reviewCursor--
			}
		case key.Matches(msg, keys.Down):
			if s.reviewCursor < len(suggestions)-1 {
				s.reviewCursor++
			}
		case key.Matches(msg, keys.Toggle):
			if s.reviewCursor < len(suggestions) {
				text := suggestions[s.reviewCursor].Suggestion
				wf.Toggle(text, !wf.IsSelected(text))
			}
		case key.Matches(msg, keys.ToggleAll):
			wf.SelectAll(!allSelected(wf))
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Enhance):
			return a.runCall(wf.Apply()), true
		case key.Matches(msg, keys.Back):
			wf.CancelReview()
			s.focus = focusPrompt
			return s.prompt.Focus(), true
		}
		return nil, true
	}

	// A call is in flight; only global keys apply.
	return nil, true
}

func (a *App) submit() tea.Cmd {
	s := a.state
	call := s.workflow.Submit(s.request())
	if call == nil {
		return nil
	}
	s.prompt.Blur()
	s.notice = ""
	return a.runCall(call)
}

// cycle moves the focused picker by delta, wrapping around.
func (a *App) cycle(delta int) {
	s := a.state
	switch s.focus {
	case focusCategory:
		n := len(prompts.Categories)
		s.category = (s.category + delta + n) % n
	case focusTarget:
		n := len(prompts.Targets)
		s.target = (s.target + delta + n) % n
	}
}

func allSelected(wf *enhance.Workflow) bool {
	for _, sg := range wf.Suggestions() {
		if !wf.IsSelected(sg.Suggestion) {
			return false
		}
	}
	return true
}

func (a *App) renderEditor() string {
	var b strings.Builder
	s := a.state
	wf := s.workflow
	width := min(74, max(30, a.width-4))

	header := styleLogo.Render(logo)
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, header))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, a.providerStatus()))
	b.WriteString("\n\n")

	// Pickers
	pickers := []string{
		a.renderPicker("Category", s.categoryName(), s.focus == focusCategory),
		a.renderPicker("Target  ", s.targetName(), s.focus == focusTarget),
	}
	pickerBox := styleBox.Copy().
		Width(width).
		Render(strings.Join(pickers, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, pickerBox))
	b.WriteString("\n")

	// Prompt
	border := colorMuted
	if wf.State() == enhance.StateForm && s.focus == focusPrompt {
		border = colorSecondary
	}
	promptBox := styleBox.Copy().
		Width(width).
		BorderForeground(border).
		Render(s.prompt.View())
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, promptBox))
	b.WriteString("\n")

	counter := styleSubtitle.Render(a.promptCounter())
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, counter))
	b.WriteString("\n\n")

	if err := wf.Err(); err != nil {
		msg := styleError.Copy().Width(width).Render("Error: " + err.Error())
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, msg))
		b.WriteString("\n\n")
	}

	switch wf.State() {
	case enhance.StateSuggesting:
		line := s.spinner.View() + " Finding ways to improve your prompt..."
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, line))
		b.WriteString("\n\n")
	case enhance.StateReviewing:
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, a.renderReview(width)))
		b.WriteString("\n\n")
	case enhance.StateApplying:
		line := fmt.Sprintf("%s Applying %d suggestion(s)...", s.spinner.View(), wf.Selected().Len())
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, line))
		b.WriteString("\n\n")
	}

	if s.notice != "" {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleSuccess.Render(s.notice)))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleStatusBar.Render(a.editorHelp())))

	return a.centerVertically(b.String())
}

func (a *App) renderPicker(label, value string, focused bool) string {
	if focused {
		return styleLabel.Render(label+"  ") + styleSelected.Render("< "+value+" >")
	}
	return styleLabel.Render(label+"  ") + styleSubtitle.Render("  "+value)
}

func (a *App) renderReview(width int) string {
	s := a.state
	wf := s.workflow
	suggestions := wf.Suggestions()

	var lines []string
	title := styleTitle.Render(fmt.Sprintf("Suggestions (%d selected)", wf.Selected().Len()))
	lines = append(lines, title, "")

	if len(suggestions) == 0 {
		lines = append(lines, styleSubtitle.Render("The model had no suggestions for this prompt."))
	}
	for i, sg := range suggestions {
		cursor := "  "
		if i == s.reviewCursor {
			cursor = "> "
		}
		check := "[ ]"
		if wf.IsSelected(sg.Suggestion) {
			check = "[x]"
		}
		line := fmt.Sprintf("%s%s %s: %s", cursor, check, sg.Technique, sg.Suggestion)
		style := lipgloss.NewStyle().Foreground(colorMuted).Width(width - 4)
		if i == s.reviewCursor {
			style = styleSelected.Copy().Width(width - 4)
		}
		lines = append(lines, style.Render(line))
	}

	return styleBox.Copy().
		Width(width).
		BorderForeground(colorPrimary).
		Render(strings.Join(lines, "\n"))
}

func (a *App) promptCounter() string {
	value := a.state.prompt.Value()
	tokens := estimateTokens(value)
	limit := getContextLimit(a.state.config.Model)
	return fmt.Sprintf("%d/%d chars  ~%d tokens (%.2f%% of %s context)",
		utf8.RuneCountInString(value), maxPromptChars,
		tokens, float64(tokens)*100/float64(limit), a.state.config.Model)
}

func (a *App) providerStatus() string {
	s := a.state
	name := s.config.Provider
	if p := config.GetProvider(name); p != nil {
		name = p.Name
	}
	switch {
	case s.providerError != nil:
		return styleError.Render(fmt.Sprintf("%s unavailable: %s", name, truncate(s.providerError.Error(), 60)))
	case s.providerReady:
		return styleSuccess.Render("● ") + styleSubtitle.Render(fmt.Sprintf("%s · %s", name, s.config.Model))
	default:
		return styleSubtitle.Render(fmt.Sprintf("Connecting to %s...", name))
	}
}

func (a *App) editorHelp() string {
	switch a.state.workflow.State() {
	case enhance.StateReviewing:
		return "[Space] Toggle  [a] All  [Enter] Apply  [Esc] Cancel"
	case enhance.StateSuggesting, enhance.StateApplying:
		return "[Ctrl+N] Start over  [Ctrl+C] Quit"
	}
	if a.state.focus == focusPrompt {
		return "[Ctrl+S] Enhance  [Tab] Options  [Ctrl+R] History  [Ctrl+O] Templates  [F1] Help"
	}
	return "[Left/Right] Change  [Tab] Next  [Enter] Enhance  [Esc] Prompt"
}
