package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/polish/internal/config"
)

func (a *App) handleSettingsKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	s := a.state

	switch s.settingsMode {
	case "provider":
		switch {
		case key.Matches(msg, keys.Up):
			if s.settingsSelected > 0 {
				s.settingsSelected--
			}
		case key.Matches(msg, keys.Down):
			if s.settingsSelected < len(config.Providers)-1 {
				s.settingsSelected++
			}
		case key.Matches(msg, keys.Enter):
			p := config.Providers[s.settingsSelected]
			changed := p.ID != s.config.Provider
			s.config.Provider = p.ID
			if changed {
				s.config.Model = p.DefaultModel
				s.config.APIKey = ""
			}
			if p.NeedsAPIKey && s.config.APIKey == "" {
				s.settingsMode = "apikey"
				s.apiKeyInput.Reset()
				return s.apiKeyInput.Focus(), true
			}
			s.settingsMode = ""
			return a.saveSettings(true), true
		case key.Matches(msg, keys.Back):
			s.settingsMode = ""
		}
		return nil, true

	case "model":
		provider := config.GetProvider(s.config.Provider)
		if provider == nil {
			s.settingsMode = ""
			return nil, true
		}
		switch {
		case key.Matches(msg, keys.Up):
			if s.settingsSelected > 0 {
				s.settingsSelected--
			}
		case key.Matches(msg, keys.Down):
			if s.settingsSelected < len(provider.Models)-1 {
				s.settingsSelected++
			}
		case key.Matches(msg, keys.Enter):
			if s.settingsSelected < len(provider.Models) {
				s.config.Model = provider.Models[s.settingsSelected]
				s.settingsMode = ""
				return a.saveSettings(true), true
			}
		case key.Matches(msg, keys.Back):
			s.settingsMode = ""
		}
		return nil, true

	case "apikey":
		switch {
		case key.Matches(msg, keys.Enter):
			s.config.APIKey = strings.TrimSpace(s.apiKeyInput.Value())
			s.apiKeyInput.Reset()
			s.apiKeyInput.Blur()
			s.settingsMode = ""
			return a.saveSettings(true), true
		case key.Matches(msg, keys.Back):
			s.apiKeyInput.Reset()
			s.apiKeyInput.Blur()
			s.settingsMode = ""
			return nil, true
		}
		return nil, false
	}

	switch msg.String() {
	case "p":
		s.settingsMode = "provider"
		s.settingsSelected = 0
		for i, p := range config.Providers {
			if p.ID == s.config.Provider {
				s.settingsSelected = i
			}
		}
	case "m":
		s.settingsMode = "model"
		s.settingsSelected = 0
		if p := config.GetProvider(s.config.Provider); p != nil {
			for i, m := range p.Models {
				if m == s.config.Model {
					s.settingsSelected = i
				}
			}
		}
	case "k":
		s.settingsMode = "apikey"
		s.apiKeyInput.Reset()
		return s.apiKeyInput.Focus(), true
	case "t":
		a.toggleTheme()
		return a.saveSettings(false), true
	case "esc":
		a.close()
	}
	return nil, true
}

func (a *App) toggleTheme() {
	s := a.state
	if s.config.Theme == config.ThemeLight {
		s.config.Theme = config.ThemeDark
	} else {
		s.config.Theme = config.ThemeLight
	}
	applyTheme(s.config.Theme)
	s.spinner.Style = styleSelected
	if s.result != nil {
		a.renderOutput()
	}
}

// saveSettings persists the config. reconnect rebuilds the provider, which
// also starts a fresh workflow.
func (a *App) saveSettings(reconnect bool) tea.Cmd {
	cfg := *a.state.config
	return func() tea.Msg {
		if err := cfg.Save(); err != nil {
			return setupErrorMsg{err}
		}
		return settingsSavedMsg{reconnect: reconnect}
	}
}

func (a *App) renderSettings() string {
	switch a.state.settingsMode {
	case "provider":
		return a.renderSettingsProvider()
	case "model":
		return a.renderSettingsModel()
	case "apikey":
		return a.renderSettingsAPIKey()
	default:
		return a.renderSettingsMain()
	}
}

func (a *App) renderSettingsMain() string {
	var b strings.Builder
	cfg := a.state.config

	// Title
	title := styleTitle.Render("Settings")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	// Current config
	provider := config.GetProvider(cfg.Provider)
	providerName := cfg.Provider
	if provider != nil {
		providerName = provider.Name
	}

	maskedKey := "Not set"
	if cfg.APIKey != "" {
		maskedKey = config.MaskKey(cfg.APIKey)
	}

	configLines := []string{
		fmt.Sprintf("  Provider: %s", providerName),
		fmt.Sprintf("  Model:    %s", cfg.Model),
		fmt.Sprintf("  API Key:  %s", maskedKey),
		fmt.Sprintf("  Theme:    %s", cfg.Theme),
		fmt.Sprintf("  History:  last %d prompts", cfg.HistoryLimit),
	}
	if cfg.BaseURL != "" {
		configLines = append(configLines, fmt.Sprintf("  Endpoint: %s", cfg.BaseURL))
	}

	if cfg.Sandbox != nil && cfg.Sandbox.Enabled {
		configLines = append(configLines, "")
		configLines = append(configLines, "  Sandbox:")
		configLines = append(configLines, fmt.Sprintf("    Provider: %s", cfg.Sandbox.Provider))
		configLines = append(configLines, fmt.Sprintf("    Model:    %s", cfg.Sandbox.Model))
	}

	configBox := styleBox.Copy().
		Width(50).
		Render(strings.Join(configLines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, configBox))
	b.WriteString("\n\n")

	// Actions
	actions := []string{
		"  [p] Change provider",
		"  [m] Change model",
		"  [k] Update API key",
		"  [t] Toggle light/dark theme",
	}
	actionsBox := styleBox.Copy().
		Width(50).
		Render(strings.Join(actions, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, actionsBox))
	b.WriteString("\n\n")

	if a.state.notice != "" {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleSuccess.Render(a.state.notice)))
		b.WriteString("\n\n")
	}
	if err := a.state.providerError; err != nil {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleError.Render(err.Error())))
		b.WriteString("\n\n")
	}

	// Instructions
	instructions := styleStatusBar.Render("[Esc] Back")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return a.centerVertically(b.String())
}

func (a *App) renderSettingsProvider() string {
	var b strings.Builder

	title := styleTitle.Render("Select Provider")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	var lines []string
	for i, p := range config.Providers {
		cursor := "  "
		if i == a.state.settingsSelected {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s", cursor, p.Name)
		if i == a.state.settingsSelected {
			line = styleTitle.Render(line)
		}
		lines = append(lines, line)
	}

	listBox := styleBox.Copy().
		Width(50).
		Render(strings.Join(lines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, listBox))
	b.WriteString("\n\n")

	instructions := styleStatusBar.Render("[Up/Down] Navigate  [Enter] Select  [Esc] Cancel")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return a.centerVertically(b.String())
}

func (a *App) renderSettingsModel() string {
	var b strings.Builder

	title := styleTitle.Render("Select Model")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	provider := config.GetProvider(a.state.config.Provider)
	if provider == nil {
		desc := styleSubtitle.Render("No provider selected")
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, desc))
		return a.centerVertically(b.String())
	}

	providerDesc := styleSubtitle.Render(fmt.Sprintf("Provider: %s", provider.Name))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, providerDesc))
	b.WriteString("\n\n")

	var lines []string
	for i, model := range provider.Models {
		cursor := "  "
		if i == a.state.settingsSelected {
			cursor = "> "
		}
		// Mark current model
		current := ""
		if model == a.state.config.Model {
			current = " (current)"
		}
		line := fmt.Sprintf("%s%s%s", cursor, model, current)
		if i == a.state.settingsSelected {
			line = styleTitle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, styleSubtitle.Render("Set the model in config.yaml for this provider."))
	}

	listBox := styleBox.Copy().
		Width(50).
		Render(strings.Join(lines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, listBox))
	b.WriteString("\n\n")

	instructions := styleStatusBar.Render("[Up/Down] Navigate  [Enter] Select  [Esc] Cancel")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return a.centerVertically(b.String())
}

func (a *App) renderSettingsAPIKey() string {
	var b strings.Builder

	title := styleTitle.Render("Update API Key")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	desc := styleSubtitle.Render("Enter your new API key")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, desc))
	b.WriteString("\n\n")

	inputBox := styleBox.Copy().
		Width(50).
		BorderForeground(colorPrimary).
		Render(a.state.apiKeyInput.View())
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, inputBox))
	b.WriteString("\n\n")

	instructions := styleStatusBar.Render("[Enter] Save  [Esc] Cancel")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return a.centerVertically(b.String())
}
