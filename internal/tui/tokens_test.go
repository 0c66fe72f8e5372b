package tui

import "testing"

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"héllo wörld", 3},
	}
	for _, tt := range tests {
		if got := estimateTokens(tt.text); got != tt.want {
			t.Errorf("estimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestGetContextLimit(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{"gemini-1.5-flash", 1000000},
		{"claude-3-5-sonnet-20241022", 200000},
		{"gpt-4o-mini", 128000},
		{"gpt-4", 8000},
		{"llama3.2", 128000},
		{"mixtral-8x7b-32768", 32000},
		{"something-else", 8000},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := getContextLimit(tt.model); got != tt.want {
				t.Errorf("getContextLimit(%q) = %d, want %d", tt.model, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer sentence", 8, "a lon..."},
		{"abc", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
