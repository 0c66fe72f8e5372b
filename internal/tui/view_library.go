package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/polish/internal/library"
)

func (a *App) handleLibraryKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	s := a.state
	templates := a.library.Templates()

	switch {
	case key.Matches(msg, keys.Up):
		if s.libraryCursor > 0 {
			s.libraryCursor--
		}
	case key.Matches(msg, keys.Down):
		if s.libraryCursor < len(templates)-1 {
			s.libraryCursor++
		}
	case key.Matches(msg, keys.Enter):
		if s.libraryCursor < len(templates) {
			return a.useTemplate(templates[s.libraryCursor]), true
		}
	case key.Matches(msg, keys.Back):
		a.close()
	}
	return nil, true
}

// useTemplate starts a new prompt from t.
func (a *App) useTemplate(t library.Template) tea.Cmd {
	cmd := a.newPrompt(t.Prompt)
	a.state.selectCategory(t.Category)
	return cmd
}

func (a *App) renderLibrary() string {
	var b strings.Builder
	s := a.state
	width := min(80, max(30, a.width-4))

	title := styleTitle.Render("Template Library")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	var lines []string
	var selected *library.Template
	i := 0
	for _, c := range a.library.Categories() {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, styleLabel.Render(c.Name))
		for _, t := range c.Templates {
			cursor := "  "
			style := lipgloss.NewStyle().Foreground(colorMuted)
			if i == s.libraryCursor {
				cursor = "> "
				style = styleSelected
				selected = &t
			}
			label := t.Title
			if t.Source != "" {
				label += " (custom)"
			}
			lines = append(lines, style.Render(cursor+label))
			i++
		}
	}
	if i == 0 {
		lines = append(lines, styleSubtitle.Render("No templates found."))
	}

	listBox := styleBox.Copy().
		Width(width).
		Render(strings.Join(lines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, listBox))
	b.WriteString("\n\n")

	if selected != nil {
		desc := styleBox.Copy().
			Width(width).
			BorderForeground(colorPrimary).
			Render(selected.Description + "\n\n" + styleSubtitle.Render(truncate(selected.Prompt, 300)))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, desc))
		b.WriteString("\n\n")
	}

	if n := len(a.library.Problems); n > 0 {
		warn := styleError.Render(fmt.Sprintf("%d template file(s) in %s could not be read", n, a.library.Dir()))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, warn))
		b.WriteString("\n\n")
	}

	instructions := styleStatusBar.Render("[j/k] Navigate  [Enter] Use template  [Esc] Back")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return a.centerVertically(b.String())
}
