package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sant0-9/polish/internal/library"
)

var techniqueLevel string

var templatesCmd = &cobra.Command{
	Use:   "templates [title]",
	Short: "List prompt templates, or print one",
	Long: `Without arguments, lists the template library by category. With a title,
prints that template's prompt so it can be piped into "polish enhance".

Your own templates go in <config dir>/templates/*.yaml.

Example:
  polish templates
  polish templates "Blog Post Outline" | polish enhance`,
	RunE: runTemplates,
}

var techniquesCmd = &cobra.Command{
	Use:   "techniques",
	Short: "Explain common prompting techniques",
	RunE:  runTechniques,
}

func init() {
	techniquesCmd.Flags().StringVar(&techniqueLevel, "level", "", "Only show foundational or advanced techniques")
}

func runTemplates(cmd *cobra.Command, args []string) error {
	lib := loadLibrary()
	if lib == nil {
		return fmt.Errorf("template library unavailable")
	}
	w := cmd.OutOrStdout()

	if len(args) > 0 {
		title := strings.Join(args, " ")
		t, ok := lib.Find(title)
		if !ok {
			return fmt.Errorf("no template named %q", title)
		}
		fmt.Fprintln(w, t.Prompt)
		return nil
	}

	for i, c := range lib.Categories() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, c.Name)
		for _, t := range c.Templates {
			fmt.Fprintf(w, "  %-28s %s\n", t.Title, t.Description)
		}
	}
	for _, p := range lib.Problems {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", p)
	}
	return nil
}

func runTechniques(cmd *cobra.Command, args []string) error {
	level := library.Level(strings.ToLower(techniqueLevel))
	switch level {
	case "", library.Foundational, library.Advanced:
	default:
		return fmt.Errorf("unknown level %q (foundational or advanced)", techniqueLevel)
	}

	lib := loadLibrary()
	if lib == nil {
		return fmt.Errorf("template library unavailable")
	}
	w := cmd.OutOrStdout()
	for i, t := range lib.Techniques(level) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, t.Name)
		fmt.Fprintf(w, "  %s\n", t.Description)
		if t.Example != "" {
			fmt.Fprintf(w, "  Example: %s\n", strings.TrimSpace(t.Example))
		}
	}
	return nil
}
