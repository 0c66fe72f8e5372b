package enhance

// Selection is the set of suggestion texts the user wants applied.
type Selection struct {
	items map[string]struct{}
}

// NewSelection returns a selection holding every given text once.
func NewSelection(texts ...string) *Selection {
	s := &Selection{items: make(map[string]struct{}, len(texts))}
	for _, t := range texts {
		s.items[t] = struct{}{}
	}
	return s
}

// Set adds or removes text. Adding a present text or removing an absent one is a no-op.
func (s *Selection) Set(text string, selected bool) {
	if selected {
		s.items[text] = struct{}{}
		return
	}
	delete(s.items, text)
}

func (s *Selection) Has(text string) bool {
	_, ok := s.items[text]
	return ok
}

func (s *Selection) Len() int {
	return len(s.items)
}

// Ordered returns the selected texts in the order they appear in suggestions,
// each text at most once.
func (s *Selection) Ordered(suggestions []Suggestion) []string {
	out := make([]string, 0, len(s.items))
	seen := make(map[string]struct{}, len(s.items))
	for _, sg := range suggestions {
		if _, dup := seen[sg.Suggestion]; dup || !s.Has(sg.Suggestion) {
			continue
		}
		seen[sg.Suggestion] = struct{}{}
		out = append(out, sg.Suggestion)
	}
	return out
}

// Equal reports whether both selections hold the same texts.
func (s *Selection) Equal(other *Selection) bool {
	if s.Len() != other.Len() {
		return false
	}
	for t := range s.items {
		if !other.Has(t) {
			return false
		}
	}
	return true
}

func (s *Selection) clone() *Selection {
	c := &Selection{items: make(map[string]struct{}, len(s.items))}
	for t := range s.items {
		c.items[t] = struct{}{}
	}
	return c
}

func texts(suggestions []Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, sg := range suggestions {
		out[i] = sg.Suggestion
	}
	return out
}
