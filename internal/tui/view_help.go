package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (a *App) renderHelp() string {
	var b strings.Builder

	// Title
	title := styleTitle.Render("Help")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	workflow := []string{
		"  1. Write your prompt and pick a category and target model",
		"  2. Ctrl+S asks the model for suggestions",
		"  3. Keep the suggestions you like and press Enter",
		"  4. Copy the enhanced prompt or test it in the sandbox",
	}
	workflowBox := styleBox.Copy().
		Width(64).
		Render(strings.Join(workflow, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, workflowBox))
	b.WriteString("\n\n")

	// Keyboard shortcuts
	shortcuts := []string{
		"  Ctrl+S       Enhance prompt",
		"  Tab          Switch between prompt, category and target",
		"  Space / a    Toggle one / all suggestions",
		"  Enter        Apply selected suggestions",
		"  Ctrl+N       Start a new prompt",
		"  Ctrl+R       History",
		"  Ctrl+O       Template library",
		"  Ctrl+T       Prompting techniques",
		"  Ctrl+P       Settings",
		"  Esc          Go back",
		"  Ctrl+C       Quit",
	}

	shortcutsTitle := styleSubtitle.Render("Keyboard Shortcuts")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, shortcutsTitle))
	b.WriteString("\n\n")

	shortcutsBox := styleBox.Copy().
		Width(64).
		Render(strings.Join(shortcuts, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, shortcutsBox))
	b.WriteString("\n\n")

	// Instructions
	instructions := styleStatusBar.Render("[Esc] Back")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return a.centerVertically(b.String())
}
