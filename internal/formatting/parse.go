// Package formatting decodes structured model output.
package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrParseFailed is returned when content cannot be parsed as JSON,
// either directly or from a markdown code fence.
var ErrParseFailed = errors.New("failed to parse response")

// ErrEmptyContent is returned when the model produced no text at all.
var ErrEmptyContent = errors.New("API returned empty or invalid response")

var jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

// Parse unmarshals content as JSON into T. Models sometimes wrap JSON in a
// markdown fence or surround it with prose, so when direct parsing fails the
// fenced block is tried next, and finally the outermost {...} or [...] span.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)
	if content == "" {
		return result, ErrEmptyContent
	}

	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	if matches := jsonBlockRegex.FindStringSubmatch(content); len(matches) >= 2 {
		cleaned := strings.TrimSpace(matches[1])
		if err := json.Unmarshal([]byte(cleaned), &result); err == nil {
			return result, nil
		}
	}

	if span, ok := outermost(content); ok {
		if err := json.Unmarshal([]byte(span), &result); err == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, truncate(content, 200))
}

func outermost(content string) (string, bool) {
	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return "", false
	}
	closing := byte('}')
	if content[start] == '[' {
		closing = ']'
	}
	end := strings.LastIndexByte(content, closing)
	if end <= start {
		return "", false
	}
	return content[start : end+1], true
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
