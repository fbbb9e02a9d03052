package relay

import "strings"

// Accumulator collects extracted text fragments in arrival order and joins
// them into one result. Fragments are substrings of a continuous stream, so
// the join uses no separator. Each client invocation owns exactly one
// Accumulator; it is not safe for concurrent use and does not need to be.
type Accumulator struct {
	fragments []string
}

// Add appends one fragment. Whitespace-only fragments are dropped.
func (a *Accumulator) Add(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	a.fragments = append(a.fragments, text)
}

// Len reports how many non-empty fragments have been accumulated.
func (a *Accumulator) Len() int { return len(a.fragments) }

// Finalize joins all fragments and trims surrounding whitespace. A stream
// that completed without a single non-empty fragment finalizes to
// ErrEmptyResult, never to a valid empty string.
func (a *Accumulator) Finalize() (string, error) {
	if len(a.fragments) == 0 {
		return "", ErrEmptyResult
	}
	return strings.TrimSpace(strings.Join(a.fragments, "")), nil
}
