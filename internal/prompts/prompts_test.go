package prompts

import (
	"strings"
	"testing"
)

func TestSuggest(t *testing.T) {
	out, err := Suggest(Input{
		Prompt:   "write a poem about the moon",
		Category: "Creative Content",
		Target:   "Claude 3 Sonnet",
	})
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}

	for _, want := range []string{
		"write a poem about the moon",
		`Category: "Creative Content"`,
		"Target Model: Claude 3 Sonnet",
		"XML tags",
		"- Chain-of-Thought",
		"Return ONLY the raw JSON object.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Suggest() missing %q", want)
		}
	}
}

func TestSuggestDefaults(t *testing.T) {
	out, err := Suggest(Input{Prompt: "hello"})
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if !strings.Contains(out, "Target Model: "+DefaultTarget) {
		t.Error("default target not rendered")
	}
	if strings.Contains(out, "Model-Specific") {
		t.Error("default target should carry no model-specific block")
	}
}

func TestApply(t *testing.T) {
	out, err := Apply(Input{
		Prompt:  "summarize this",
		Target:  "GPT-4o",
		Changes: []string{"Add a role", "Ask for bullets"},
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !strings.Contains(out, "- Add a role\n- Ask for bullets") {
		t.Errorf("changes not listed in order:\n%s", out)
	}
	if !strings.Contains(out, "## Context") {
		t.Error("GPT-4o instructions missing")
	}
}

func TestApplyNoChanges(t *testing.T) {
	if _, err := Apply(Input{Prompt: "x"}); err == nil {
		t.Error("expected error for empty change list")
	}
}

func TestInstructionsFor(t *testing.T) {
	tests := []struct {
		target string
		empty  bool
	}{
		{DefaultTarget, true},
		{"GPT-4o", false},
		{"Cursor", false},
		{"Lovable", false},
		{"Bolt", false},
		{"unknown", true},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got := InstructionsFor(tt.target)
			if (got == "") != tt.empty {
				t.Errorf("InstructionsFor(%q) = %q", tt.target, got)
			}
		})
	}
}
