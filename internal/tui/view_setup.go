package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/polish/internal/config"
)

// Setup steps
const (
	setupProvider = iota
	setupAPIKey
	setupBaseURL
)

func (a *App) handleSetupKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	s := a.state
	switch s.setupStep {
	case setupProvider:
		switch {
		case key.Matches(msg, keys.Up):
			if s.selectedProvider > 0 {
				s.selectedProvider--
			}
		case key.Matches(msg, keys.Down):
			if s.selectedProvider < len(config.Providers)-1 {
				s.selectedProvider++
			}
		case key.Matches(msg, keys.Enter):
			provider := config.Providers[s.selectedProvider]
			s.config.Provider = provider.ID
			s.config.Model = provider.DefaultModel

			switch {
			case provider.NeedsBaseURL:
				s.setupStep = setupBaseURL
				return s.baseURLInput.Focus(), true
			case provider.NeedsAPIKey:
				s.setupStep = setupAPIKey
				return s.apiKeyInput.Focus(), true
			default:
				return a.finishSetup(), true
			}
		}
		return nil, true

	case setupBaseURL:
		switch {
		case key.Matches(msg, keys.Enter):
			url := strings.TrimSpace(s.baseURLInput.Value())
			if url == "" {
				return nil, true
			}
			s.config.BaseURL = url
			// The key is optional for custom endpoints.
			s.setupStep = setupAPIKey
			s.baseURLInput.Blur()
			return s.apiKeyInput.Focus(), true
		case key.Matches(msg, keys.Back):
			s.setupStep = setupProvider
			s.baseURLInput.Reset()
			return nil, true
		}

	case setupAPIKey:
		switch {
		case key.Matches(msg, keys.Enter):
			apiKey := strings.TrimSpace(s.apiKeyInput.Value())
			provider := config.GetProvider(s.config.Provider)
			if apiKey == "" && provider != nil && provider.NeedsAPIKey {
				return nil, true
			}
			s.config.APIKey = apiKey
			s.apiKeyInput.Reset()
			s.apiKeyInput.Blur()
			return a.finishSetup(), true
		case key.Matches(msg, keys.Back):
			// Go back to provider selection
			s.setupStep = setupProvider
			s.apiKeyInput.Reset()
			return nil, true
		}
	}

	return nil, false
}

func (a *App) finishSetup() tea.Cmd {
	cfg := *a.state.config
	return func() tea.Msg {
		if err := cfg.Save(); err != nil {
			return setupErrorMsg{err}
		}
		return setupCompleteMsg{}
	}
}

func (a *App) renderSetup() string {
	switch a.state.setupStep {
	case setupAPIKey:
		return a.renderInputStep(a.state.apiKeyInput, "API key")
	case setupBaseURL:
		return a.renderInputStep(a.state.baseURLInput, "endpoint URL")
	default:
		return a.renderProviderSelection()
	}
}

func (a *App) renderProviderSelection() string {
	var b strings.Builder

	// Header
	header := styleLogo.Render(logo)
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, header))
	b.WriteString("\n\n")

	// Title
	title := styleLabel.Render("Welcome! Choose the model provider that will polish your prompts:")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	// Provider list
	var providerLines []string
	for i, p := range config.Providers {
		var line string
		cursor := "  "
		if i == a.state.selectedProvider {
			cursor = "> "
			line = styleSelected.Render(fmt.Sprintf("%s[x] %-14s %s", cursor, p.Name, p.Description))
		} else {
			line = lipgloss.NewStyle().
				Foreground(colorMuted).
				Render(fmt.Sprintf("%s[ ] %-14s %s", cursor, p.Name, p.Description))
		}
		providerLines = append(providerLines, line)
	}

	providerBox := styleBox.Copy().
		Width(60).
		Render(strings.Join(providerLines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, providerBox))
	b.WriteString("\n\n")

	if err := a.state.providerError; err != nil {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleError.Render(err.Error())))
		b.WriteString("\n\n")
	}

	// Instructions
	instructions := styleStatusBar.Render("[j/k] Navigate  [Enter] Select  [Ctrl+C] Quit")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return a.centerVertically(b.String())
}

func (a *App) renderInputStep(input textinput.Model, what string) string {
	var b strings.Builder

	provider := config.GetProvider(a.state.config.Provider)
	name := a.state.config.Provider
	if provider != nil {
		name = provider.Name
	}

	// Header
	header := styleLogo.Render(logo)
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, header))
	b.WriteString("\n\n")

	title := styleLabel.Render(fmt.Sprintf("Enter your %s %s:", name, what))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	// Signup link
	if provider != nil && provider.SignupURL != "" && what == "API key" {
		link := styleSubtitle.Render(fmt.Sprintf("Get one at: %s", provider.SignupURL))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, link))
		b.WriteString("\n\n")
	}

	inputBox := styleBox.Copy().
		Width(60).
		BorderForeground(colorSecondary).
		Render(input.View())
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, inputBox))
	b.WriteString("\n\n")

	instructions := styleStatusBar.Render("[Enter] Continue  [Esc] Back")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return a.centerVertically(b.String())
}

func (a *App) centerVertically(content string) string {
	lines := strings.Count(content, "\n") + 1
	padding := (a.height - lines) / 2
	if padding < 0 {
		padding = 0
	}
	return strings.Repeat("\n", padding) + content
}
