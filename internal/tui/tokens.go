package tui

import (
	"strings"
	"unicode/utf8"
)

// maxPromptChars caps the prompt editor.
const maxPromptChars = 2000

// estimateTokens returns approximate token count (~4 chars per token)
func estimateTokens(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

// getContextLimit returns the context window size for a model
func getContextLimit(model string) int {
	model = strings.ToLower(model)

	switch {
	case strings.Contains(model, "gemini"):
		return 1000000
	case strings.Contains(model, "claude"):
		return 200000
	case strings.Contains(model, "gpt-4o"), strings.Contains(model, "gpt-4-turbo"):
		return 128000
	case strings.Contains(model, "gpt-4"):
		return 8000
	case strings.Contains(model, "llama-3"), strings.Contains(model, "llama3"):
		return 128000
	case strings.Contains(model, "mixtral"):
		return 32000
	default:
		return 8000
	}
}
