// Package prompts holds the meta-prompts sent to the model and the
// categories and target models a prompt can be tuned for.
package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed suggest.tmpl
var suggestSource string

//go:embed apply.tmpl
var applySource string

var (
	suggestTmpl = template.Must(template.New("suggest").Parse(suggestSource))
	applyTmpl   = template.Must(template.New("apply").Parse(applySource))
)

// System is the system message paired with both meta-prompts.
const System = "You are an expert prompt engineer. Respond with JSON only."

// Techniques are the prompting techniques suggestions are drawn from.
var Techniques = []string{
	"Role Prompting",
	"Add Context",
	"Few-Shot Prompting",
	"Add Constraints",
	"Specify Format",
	"Chain-of-Thought",
}

// Input is the data both templates render.
type Input struct {
	Prompt   string
	Category string
	Target   string
	Changes  []string
}

type view struct {
	Input
	Instructions string
	Techniques   []string
}

// Suggest renders the prompt that asks for improvement suggestions.
func Suggest(in Input) (string, error) {
	return render(suggestTmpl, in)
}

// Apply renders the prompt that asks for a rewrite using in.Changes.
func Apply(in Input) (string, error) {
	if len(in.Changes) == 0 {
		return "", fmt.Errorf("no changes to apply")
	}
	return render(applyTmpl, in)
}

func render(t *template.Template, in Input) (string, error) {
	if in.Target == "" {
		in.Target = DefaultTarget
	}
	if in.Category == "" {
		in.Category = DefaultCategory
	}
	var b strings.Builder
	err := t.Execute(&b, view{
		Input:        in,
		Instructions: InstructionsFor(in.Target),
		Techniques:   Techniques,
	})
	if err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return b.String(), nil
}
