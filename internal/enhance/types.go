package enhance

import "context"

// State is the step of the enhancement workflow that is currently active.
type State int

const (
	StateForm State = iota
	StateSuggesting
	StateReviewing
	StateApplying
)

func (s State) String() string {
	switch s {
	case StateForm:
		return "form"
	case StateSuggesting:
		return "suggesting"
	case StateReviewing:
		return "reviewing"
	case StateApplying:
		return "applying"
	default:
		return "unknown"
	}
}

// Request is the prompt as the user submitted it from the form.
type Request struct {
	Prompt   string
	Category string
	Model    string
}

// Suggestion is a technique-tagged recommendation for improving a prompt.
// Suggestions are identified by their text.
type Suggestion struct {
	Technique  string `json:"technique"`
	Suggestion string `json:"suggestion"`
}

// Enhancement is the rewritten prompt plus a description of each applied change.
type Enhancement struct {
	EnhancedPrompt string   `json:"enhancedPrompt"`
	Changes        []string `json:"changes"`
}

// Result is emitted once an enhancement run completes.
type Result struct {
	Request
	Enhancement
}

// SuggestionService asks a model for improvement suggestions.
type SuggestionService interface {
	Fetch(ctx context.Context, req Request) ([]Suggestion, error)
}

// ApplyService asks a model to rewrite a prompt using the selected suggestions.
type ApplyService interface {
	Apply(ctx context.Context, req Request, selected []string) (*Enhancement, error)
}
