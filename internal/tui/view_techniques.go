package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/polish/internal/library"
)

// renderGuide fills the techniques pane.
func (a *App) renderGuide() {
	var md strings.Builder
	sections := []struct {
		title string
		level library.Level
	}{
		{"Foundational techniques", library.Foundational},
		{"Advanced techniques", library.Advanced},
	}
	for _, sec := range sections {
		fmt.Fprintf(&md, "# %s\n\n", sec.title)
		for _, t := range a.library.Techniques(sec.level) {
			fmt.Fprintf(&md, "## %s\n\n%s\n\n", t.Name, t.Description)
			if t.Example != "" {
				fmt.Fprintf(&md, "```\n%s\n```\n\n", strings.TrimSpace(t.Example))
			}
		}
	}

	a.state.guide.SetContent(a.renderMarkdown(md.String(), a.state.guide.Width-2))
	a.state.guide.GotoTop()
}

func (a *App) renderTechniques() string {
	var b strings.Builder

	title := styleTitle.Render("Prompting Techniques")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	box := styleBox.Copy().
		BorderForeground(colorPrimary).
		Render(a.state.guide.View())
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, box))
	b.WriteString("\n\n")

	instructions := styleStatusBar.Render("[Up/Down] Scroll  [Esc] Back")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return b.String()
}
