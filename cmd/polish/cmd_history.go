package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sant0-9/polish/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past enhancements",
	Long: `List and manage recorded enhancements. Only the most recent ones are kept
(history_limit in config.yaml, 50 by default).

Subcommands:
  list    - List recorded enhancements, newest first
  show    - Print one enhancement in full
  delete  - Remove one enhancement
  clear   - Remove all enhancements`,
	RunE: runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded enhancements, newest first",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one enhancement in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove one enhancement",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all enhancements",
	RunE:  runHistoryClear,
}

func init() {
	historyListCmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	historyShowCmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	entries, err := store.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	w := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(w, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history yet.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.ID[:8],
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			e.Category,
			clip(e.OriginalPrompt, 50),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "WHEN", "CATEGORY", "PROMPT").
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "Total: %d\n", len(entries))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	id, err := resolveID(cmd.Context(), store, args[0])
	if err != nil {
		return err
	}
	e, err := store.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(w, e)
	}
	fmt.Fprintf(w, "ID:       %s\n", e.ID)
	fmt.Fprintf(w, "When:     %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Category: %s\n", e.Category)
	fmt.Fprintf(w, "Target:   %s\n", e.Model)
	fmt.Fprintf(w, "\nOriginal:\n%s\n", e.OriginalPrompt)
	fmt.Fprintf(w, "\nEnhanced:\n%s\n", e.EnhancedPrompt)
	if len(e.Changes) > 0 {
		fmt.Fprintln(w, "\nChanges:")
		for _, c := range e.Changes {
			fmt.Fprintf(w, "  - %s\n", c)
		}
	}
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	id, err := resolveID(cmd.Context(), store, args[0])
	if err != nil {
		return err
	}
	if err := store.Delete(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	if err := store.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
	return nil
}

// resolveID expands the short ids printed by list to a full entry id.
func resolveID(ctx context.Context, store *history.Store, prefix string) (string, error) {
	entries, err := store.List(ctx)
	if err != nil {
		return "", err
	}
	var match string
	for _, e := range entries {
		if e.ID == prefix {
			return e.ID, nil
		}
		if strings.HasPrefix(e.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("id %q is ambiguous", prefix)
			}
			match = e.ID
		}
	}
	if match == "" {
		// Let the store report the miss.
		return prefix, nil
	}
	return match, nil
}

// clip flattens s to one line of at most n runes.
func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
