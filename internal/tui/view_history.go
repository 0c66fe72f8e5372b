package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/polish/internal/enhance"
	"github.com/sant0-9/polish/internal/history"
)

const storeTimeout = 5 * time.Second

type historySavedMsg struct {
	entry history.Entry
	err   error
}

type historyLoadedMsg struct {
	entries []history.Entry
	err     error
}

func (a *App) saveHistory(res enhance.Result) tea.Cmd {
	store := a.history
	if store == nil {
		return nil
	}
	entry := history.Entry{
		OriginalPrompt: res.Prompt,
		EnhancedPrompt: res.EnhancedPrompt,
		Category:       res.Category,
		Model:          res.Model,
		Changes:        res.Changes,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		saved, err := store.Add(ctx, entry)
		return historySavedMsg{entry: saved, err: err}
	}
}

// withStore runs fn against the history store and reloads the list.
func (a *App) withStore(fn func(ctx context.Context, store *history.Store) error) tea.Cmd {
	store := a.history
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if fn != nil {
			if err := fn(ctx, store); err != nil {
				return historyLoadedMsg{err: err}
			}
		}
		entries, err := store.List(ctx)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

func (a *App) loadHistory() tea.Cmd {
	a.state.historyErr = nil
	return a.withStore(nil)
}

func (a *App) handleHistoryKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	s := a.state
	switch {
	case key.Matches(msg, keys.Up):
		if s.historyCursor > 0 {
			s.historyCursor--
		}
	case key.Matches(msg, keys.Down):
		if s.historyCursor < len(s.entries)-1 {
			s.historyCursor++
		}
	case key.Matches(msg, keys.Enter):
		if s.historyCursor < len(s.entries) {
			a.loadEntry(s.entries[s.historyCursor])
		}
	case key.Matches(msg, keys.Delete):
		if s.historyCursor < len(s.entries) {
			id := s.entries[s.historyCursor].ID
			return a.withStore(func(ctx context.Context, store *history.Store) error {
				return store.Delete(ctx, id)
			}), true
		}
	case key.Matches(msg, keys.Clear):
		s.historyCursor = 0
		return a.withStore(func(ctx context.Context, store *history.Store) error {
			return store.Clear(ctx)
		}), true
	case key.Matches(msg, keys.Back):
		a.close()
	}
	return nil, true
}

// loadEntry restores a past enhancement into the editor and result views.
func (a *App) loadEntry(e history.Entry) {
	s := a.state
	a.newPrompt(e.OriginalPrompt)
	s.prompt.Blur()
	s.selectCategory(e.Category)
	s.selectTarget(e.Model)
	a.showResult(enhance.Result{
		Request: enhance.Request{
			Prompt:   e.OriginalPrompt,
			Category: e.Category,
			Model:    e.Model,
		},
		Enhancement: enhance.Enhancement{
			EnhancedPrompt: e.EnhancedPrompt,
			Changes:        e.Changes,
		},
	})
	a.view = viewResult
	a.back = viewResult
}

func (a *App) renderHistory() string {
	var b strings.Builder
	s := a.state
	width := min(90, max(30, a.width-4))

	title := styleTitle.Render("History")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	var lines []string
	switch {
	case a.history == nil:
		lines = append(lines, styleSubtitle.Render("History is not available."))
	case len(s.entries) == 0:
		lines = append(lines, styleSubtitle.Render("No enhancements yet. Your last prompts will show up here."))
	}
	for i, e := range s.entries {
		cursor := "  "
		style := lipgloss.NewStyle().Foreground(colorMuted)
		if i == s.historyCursor {
			cursor = "> "
			style = styleSelected
		}
		line := fmt.Sprintf("%s%s  %-16s %s",
			cursor,
			e.Timestamp.Local().Format("Jan 02 15:04"),
			truncate(e.Category, 16),
			truncate(strings.ReplaceAll(e.OriginalPrompt, "\n", " "), width-40))
		lines = append(lines, style.Render(line))
	}

	listBox := styleBox.Copy().
		Width(width).
		Render(strings.Join(lines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, listBox))
	b.WriteString("\n\n")

	if s.historyCursor < len(s.entries) {
		e := s.entries[s.historyCursor]
		preview := styleBox.Copy().
			Width(width).
			BorderForeground(colorPrimary).
			Render(truncate(e.EnhancedPrompt, 400))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, preview))
		b.WriteString("\n\n")
	}

	if s.historyErr != nil {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleError.Render("Error: "+s.historyErr.Error())))
		b.WriteString("\n\n")
	}

	instructions := styleStatusBar.Render("[j/k] Navigate  [Enter] Load  [d] Delete  [X] Clear all  [Esc] Back")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return a.centerVertically(b.String())
}
