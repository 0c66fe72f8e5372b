package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sant0-9/polish/internal/llm"
	"github.com/sant0-9/polish/internal/sandbox"
)

var compareWith string

var testCmd = &cobra.Command{
	Use:   "test [prompt]",
	Short: "Run a prompt against the model and print the answer",
	Long: `Sends the prompt as-is and streams the model's answer. With --compare the
second prompt runs alongside it and both answers are printed, which is a quick
way to check whether an enhanced prompt actually does better.

Example:
  polish test "write a poem about the moon"
  polish test "write a poem" --compare "As a poet, write a sonnet about the moon"`,
	RunE: runTest,
}

func init() {
	testCmd.Flags().StringVar(&compareWith, "compare", "", "Second prompt to run for an A/B comparison")
}

func newTester(ctx context.Context) (*sandbox.Tester, error) {
	sandboxProvider, err := llm.NewSandboxProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sandboxProvider != nil {
		return sandbox.NewTester(sandboxProvider, cfg.Sandbox.Model, logger), nil
	}
	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return sandbox.NewTester(provider, cfg.Model, logger), nil
}

func runTest(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	tester, err := newTester(ctx)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if compareWith != "" {
		res, err := tester.Compare(ctx, prompt, compareWith)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "=== A ===")
		fmt.Fprintln(w, res.A)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== B ===")
		fmt.Fprintln(w, res.B)
		return nil
	}

	events, err := tester.Stream(ctx, prompt)
	if err != nil {
		return err
	}
	return copyStream(w, events)
}

// copyStream writes chunks to w until the stream ends.
func copyStream(w io.Writer, events <-chan llm.StreamEvent) error {
	for ev := range events {
		if ev.Error != nil {
			return fmt.Errorf("failed to generate test response: %w", ev.Error)
		}
		if _, err := io.WriteString(w, ev.Chunk); err != nil {
			return err
		}
		if ev.Done {
			break
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}
