package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/polish/internal/config"
)

// truncate shortens text to maxLen runes, adding "..." if truncated
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

type palette struct {
	primary   lipgloss.Color
	secondary lipgloss.Color
	success   lipgloss.Color
	err       lipgloss.Color
	muted     lipgloss.Color
	text      lipgloss.Color
}

var palettes = map[string]palette{
	config.ThemeDark: {
		primary:   lipgloss.Color("#7C3AED"),
		secondary: lipgloss.Color("#06B6D4"),
		success:   lipgloss.Color("#10B981"),
		err:       lipgloss.Color("#EF4444"),
		muted:     lipgloss.Color("#6B7280"),
		text:      lipgloss.Color("#F9FAFB"),
	},
	config.ThemeLight: {
		primary:   lipgloss.Color("#6D28D9"),
		secondary: lipgloss.Color("#0E7490"),
		success:   lipgloss.Color("#047857"),
		err:       lipgloss.Color("#B91C1C"),
		muted:     lipgloss.Color("#4B5563"),
		text:      lipgloss.Color("#111827"),
	},
}

var (
	// Colors
	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorSuccess   lipgloss.Color
	colorError     lipgloss.Color
	colorMuted     lipgloss.Color
	colorText      lipgloss.Color

	styleLogo      lipgloss.Style
	styleTitle     lipgloss.Style
	styleSubtitle  lipgloss.Style
	styleBox       lipgloss.Style
	styleStatusBar lipgloss.Style
	styleSelected  lipgloss.Style
	styleError     lipgloss.Style
	styleSuccess   lipgloss.Style
	styleLabel     lipgloss.Style
)

func init() {
	applyTheme(config.ThemeDark)
}

// applyTheme rebuilds the package styles for theme.
func applyTheme(theme string) {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[config.ThemeDark]
	}

	colorPrimary = p.primary
	colorSecondary = p.secondary
	colorSuccess = p.success
	colorError = p.err
	colorMuted = p.muted
	colorText = p.text

	styleLogo = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	styleTitle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	styleSubtitle = lipgloss.NewStyle().
		Foreground(colorMuted)

	styleBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(0, 1)

	styleStatusBar = lipgloss.NewStyle().
		Foreground(colorMuted)

	styleSelected = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true)

	styleError = lipgloss.NewStyle().
		Foreground(colorError)

	styleSuccess = lipgloss.NewStyle().
		Foreground(colorSuccess)

	styleLabel = lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true)
}
