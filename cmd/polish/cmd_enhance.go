package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sant0-9/polish/internal/enhance"
	"github.com/sant0-9/polish/internal/history"
	"github.com/sant0-9/polish/internal/prompts"
)

var (
	category  string
	target    string
	selection string
	asJSON    bool
	noHistory bool
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance [prompt]",
	Short: "Suggest improvements and apply them in one go",
	Long: `Fetches suggestions for the prompt, applies them and prints the enhanced
prompt. The prompt is read from the arguments or, when there are none, from stdin.

By default every suggestion is applied. Use --select with the numbers printed
by "polish suggest" to apply only some of them.

Example:
  polish enhance "write a poem about the moon" --category "Creative Content"
  polish enhance --select 1,3 < prompt.txt`,
	RunE: runEnhance,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [prompt]",
	Short: "List improvement suggestions for a prompt",
	RunE:  runSuggest,
}

func init() {
	for _, cmd := range []*cobra.Command{enhanceCmd, suggestCmd} {
		cmd.Flags().StringVarP(&category, "category", "c", prompts.DefaultCategory, "Prompt category")
		cmd.Flags().StringVarP(&target, "target", "t", prompts.DefaultTarget, "Model the prompt is written for")
		cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	}
	enhanceCmd.Flags().StringVarP(&selection, "select", "s", "", "Comma separated suggestion numbers to apply (default: all)")
	enhanceCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the result in history")
}

type suggestOutput struct {
	Prompt      string               `json:"prompt"`
	Category    string               `json:"category"`
	Target      string               `json:"target"`
	Suggestions []enhance.Suggestion `json:"suggestions"`
}

type enhanceOutput struct {
	suggestOutput
	Applied        []string `json:"applied"`
	EnhancedPrompt string   `json:"enhancedPrompt"`
	Changes        []string `json:"changes"`
}

// readPrompt joins args, or reads stdin when there are none.
func readPrompt(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read prompt: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", errors.New("no prompt given: pass it as an argument or on stdin")
	}
	return prompt, nil
}

func checkOptions() error {
	if !prompts.ValidCategory(category) {
		return fmt.Errorf("unknown category %q (choose from: %s)", category, strings.Join(prompts.Categories, ", "))
	}
	if !slices.Contains(prompts.TargetNames(), target) {
		return fmt.Errorf("unknown target %q (choose from: %s)", target, strings.Join(prompts.TargetNames(), ", "))
	}
	return nil
}

// parseSelection turns "1,3" into zero-based indexes into n suggestions.
func parseSelection(s string, n int) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid suggestion number %q", part)
		}
		if i < 1 || i > n {
			return nil, fmt.Errorf("suggestion %d out of range (1-%d)", i, n)
		}
		if !slices.Contains(out, i-1) {
			out = append(out, i-1)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no suggestions selected")
	}
	return out, nil
}

// suggestions runs the workflow up to the review step.
func suggestions(ctx context.Context, wf *enhance.Workflow, prompt string) error {
	if !wf.Run(ctx, wf.Submit(enhance.Request{Prompt: prompt, Category: category, Model: target})) {
		return errors.New("prompt is empty")
	}
	return wf.Err()
}

func newWorkflow(ctx context.Context, opts ...enhance.Option) (*enhance.Workflow, error) {
	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc := enhance.NewService(provider, logger)
	return enhance.New(svc, svc, append([]enhance.Option{enhance.WithLogger(logger)}, opts...)...), nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if err := checkOptions(); err != nil {
		return err
	}
	prompt, err := readPrompt(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	wf, err := newWorkflow(ctx)
	if err != nil {
		return err
	}
	if err := suggestions(ctx, wf, prompt); err != nil {
		return err
	}

	out := suggestOutput{Prompt: prompt, Category: category, Target: target, Suggestions: wf.Suggestions()}
	w := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(w, out)
	}
	if len(out.Suggestions) == 0 {
		fmt.Fprintln(w, "No suggestions. The prompt already looks good.")
		return nil
	}
	printSuggestions(w, out.Suggestions)
	return nil
}

func runEnhance(cmd *cobra.Command, args []string) error {
	if err := checkOptions(); err != nil {
		return err
	}
	prompt, err := readPrompt(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var result *enhance.Result
	wf, err := newWorkflow(ctx, enhance.OnResult(func(r enhance.Result) {
		result = &r
	}))
	if err != nil {
		return err
	}
	if err := suggestions(ctx, wf, prompt); err != nil {
		return err
	}

	sugs := wf.Suggestions()
	if len(sugs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No suggestions. The prompt already looks good.")
		return nil
	}
	if selection != "" {
		idx, err := parseSelection(selection, len(sugs))
		if err != nil {
			return err
		}
		wf.SelectAll(false)
		for _, i := range idx {
			wf.Toggle(sugs[i].Suggestion, true)
		}
	}
	applied := wf.Selected().Ordered(sugs)

	wf.Run(ctx, wf.Apply())
	if err := wf.Err(); err != nil {
		return err
	}
	if result == nil {
		return errors.New("no enhanced prompt was produced")
	}

	if !noHistory {
		saveResult(ctx, *result)
	}

	out := enhanceOutput{
		suggestOutput:  suggestOutput{Prompt: prompt, Category: category, Target: target, Suggestions: sugs},
		Applied:        applied,
		EnhancedPrompt: result.EnhancedPrompt,
		Changes:        result.Changes,
	}
	w := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(w, out)
	}

	fmt.Fprintln(w, result.EnhancedPrompt)
	if len(result.Changes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Changes:")
		for _, c := range result.Changes {
			fmt.Fprintf(w, "  - %s\n", c)
		}
	}
	return nil
}

// saveResult records r in history. Failures are logged, not returned.
func saveResult(ctx context.Context, r enhance.Result) {
	store, err := openHistory()
	if err != nil {
		logger.Warn("history unavailable", zap.Error(err))
		return
	}
	defer store.Close()

	_, err = store.Add(ctx, history.Entry{
		OriginalPrompt: r.Prompt,
		EnhancedPrompt: r.EnhancedPrompt,
		Category:       r.Category,
		Model:          r.Model,
		Changes:        r.Changes,
	})
	if err != nil {
		logger.Warn("history save failed", zap.Error(err))
	}
}

func printSuggestions(w io.Writer, sugs []enhance.Suggestion) {
	for i, s := range sugs {
		fmt.Fprintf(w, "%2d. [%s] %s\n", i+1, s.Technique, s.Suggestion)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
