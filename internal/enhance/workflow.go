// Package enhance drives the suggest, review and apply cycle for a single prompt.
package enhance

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Call performs the service request that belongs to a transition. It reads
// nothing from the workflow and may run on any goroutine. Feed the returned
// Event back through Workflow.Handle.
type Call func(ctx context.Context) Event

// Event is the completion of a Call.
type Event interface {
	generation() uint64
}

// SuggestionsEvent completes a suggest call.
type SuggestionsEvent struct {
	gen         uint64
	Suggestions []Suggestion
	Err         error
}

func (e SuggestionsEvent) generation() uint64 { return e.gen }

// EnhancementEvent completes an apply call.
type EnhancementEvent struct {
	gen         uint64
	Enhancement *Enhancement
	Err         error
}

func (e EnhancementEvent) generation() uint64 { return e.gen }

// Option configures a Workflow.
type Option func(*Workflow)

// WithLogger sets the logger; nil keeps the no-op default.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger.Named("enhance")
		}
	}
}

// OnResult registers an observer for completed enhancements.
func OnResult(fn func(Result)) Option {
	return func(w *Workflow) {
		w.onResult = fn
	}
}

// OnTransition registers an observer for every state change.
func OnTransition(fn func(from, to State)) Option {
	return func(w *Workflow) {
		w.onTransition = fn
	}
}

// Workflow is the state container for one enhancement session. It is not
// safe for concurrent use; hosts mutate it from a single goroutine.
type Workflow struct {
	suggester SuggestionService
	applier   ApplyService
	logger    *zap.Logger

	onResult     func(Result)
	onTransition func(from, to State)

	state       State
	req         Request
	suggestions []Suggestion
	selection   *Selection
	err         error
	gen         uint64
}

// New returns a workflow in the Form state.
func New(suggester SuggestionService, applier ApplyService, opts ...Option) *Workflow {
	w := &Workflow{
		suggester: suggester,
		applier:   applier,
		logger:    zap.NewNop(),
		selection: NewSelection(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Submit starts fetching suggestions for req. It returns nil and leaves the
// workflow untouched when the prompt is blank or a run is already underway.
func (w *Workflow) Submit(req Request) Call {
	if w.state != StateForm || strings.TrimSpace(req.Prompt) == "" {
		return nil
	}

	w.req = req
	w.err = nil
	w.suggestions = nil
	w.selection = NewSelection()
	w.transition(StateSuggesting)

	gen := w.gen
	svc := w.suggester
	w.logger.Debug("fetching suggestions",
		zap.String("category", req.Category),
		zap.String("model", req.Model),
		zap.Int("prompt_len", len(req.Prompt)),
	)
	return func(ctx context.Context) Event {
		suggestions, err := svc.Fetch(ctx, req)
		return SuggestionsEvent{gen: gen, Suggestions: suggestions, Err: err}
	}
}

// Apply starts rewriting the prompt with the selected suggestions. It returns
// nil unless the workflow is reviewing with at least one selection.
func (w *Workflow) Apply() Call {
	if w.state != StateReviewing || w.selection.Len() == 0 {
		return nil
	}

	selected := w.selection.Ordered(w.suggestions)
	w.err = nil
	w.transition(StateApplying)

	gen := w.gen
	req := w.req
	svc := w.applier
	w.logger.Debug("applying suggestions", zap.Int("selected", len(selected)))
	return func(ctx context.Context) Event {
		enh, err := svc.Apply(ctx, req, selected)
		return EnhancementEvent{gen: gen, Enhancement: enh, Err: err}
	}
}

// Handle folds a completed call into the workflow. It returns the result when
// an apply call succeeds and nil otherwise. Events from before the last Reset,
// or that no longer match the current state, are dropped.
func (w *Workflow) Handle(ev Event) *Result {
	if ev == nil || ev.generation() != w.gen {
		w.logger.Debug("dropping stale event")
		return nil
	}

	switch ev := ev.(type) {
	case SuggestionsEvent:
		if w.state != StateSuggesting {
			return nil
		}
		if ev.Err != nil {
			w.logger.Warn("suggestions failed", zap.Error(ev.Err))
			w.err = ev.Err
			w.suggestions = nil
			w.selection = NewSelection()
			w.transition(StateForm)
			return nil
		}
		w.suggestions = append([]Suggestion(nil), ev.Suggestions...)
		w.selection = NewSelection(texts(w.suggestions)...)
		w.transition(StateReviewing)
		return nil

	case EnhancementEvent:
		if w.state != StateApplying {
			return nil
		}
		err := ev.Err
		if err == nil && ev.Enhancement == nil {
			err = &ServiceError{Op: "apply enhancements", Err: ErrNoEnhancement}
		}
		if err != nil {
			w.logger.Warn("apply failed", zap.Error(err))
			w.err = err
			w.transition(StateReviewing)
			return nil
		}

		res := Result{Request: w.req, Enhancement: *ev.Enhancement}
		w.logger.Info("enhancement complete", zap.Int("changes", len(res.Changes)))
		w.clear()
		w.transition(StateForm)
		if w.onResult != nil {
			w.onResult(res)
		}
		return &res
	}
	return nil
}

// Run executes call inline and handles its event. It reports whether a
// call was made.
func (w *Workflow) Run(ctx context.Context, call Call) bool {
	if call == nil {
		return false
	}
	w.Handle(call(ctx))
	return true
}

// Toggle selects or deselects one suggestion while reviewing. Texts that were
// not among the received suggestions are ignored.
func (w *Workflow) Toggle(text string, selected bool) {
	if w.state != StateReviewing || !w.known(text) {
		return
	}
	w.selection.Set(text, selected)
}

// SelectAll selects or clears every suggestion while reviewing.
func (w *Workflow) SelectAll(selected bool) {
	if w.state != StateReviewing {
		return
	}
	if selected {
		w.selection = NewSelection(texts(w.suggestions)...)
		return
	}
	w.selection = NewSelection()
}

// CancelReview abandons the received suggestions and returns to the form.
func (w *Workflow) CancelReview() {
	if w.state != StateReviewing {
		return
	}
	w.err = nil
	w.suggestions = nil
	w.selection = NewSelection()
	w.transition(StateForm)
}

// Reset returns to the form from any state. Completions of calls issued
// before the reset are discarded.
func (w *Workflow) Reset() {
	w.gen++
	w.err = nil
	w.clear()
	w.req = Request{}
	w.transition(StateForm)
}

func (w *Workflow) State() State { return w.state }

func (w *Workflow) Request() Request { return w.req }

// Suggestions returns a copy of the received suggestions.
func (w *Workflow) Suggestions() []Suggestion {
	return append([]Suggestion(nil), w.suggestions...)
}

// Selected returns a snapshot of the selection.
func (w *Workflow) Selected() *Selection {
	return w.selection.clone()
}

func (w *Workflow) IsSelected(text string) bool {
	return w.selection.Has(text)
}

// Err is the failure of the last run, or nil.
func (w *Workflow) Err() error { return w.err }

// Busy reports whether a service call is outstanding.
func (w *Workflow) Busy() bool {
	return w.state == StateSuggesting || w.state == StateApplying
}

func (w *Workflow) known(text string) bool {
	for _, sg := range w.suggestions {
		if sg.Suggestion == text {
			return true
		}
	}
	return false
}

func (w *Workflow) clear() {
	w.suggestions = nil
	w.selection = NewSelection()
}

func (w *Workflow) transition(to State) {
	from := w.state
	w.state = to
	if from == to {
		return
	}
	w.logger.Debug("transition", zap.Stringer("from", from), zap.Stringer("to", to))
	if w.onTransition != nil {
		w.onTransition(from, to)
	}
}
