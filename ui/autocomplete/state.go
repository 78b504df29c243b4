// Package autocomplete implements a debounced as-you-type location input.
//
// State holds the pure transitions; Component drives them with a debouncer, a fetcher
// and a pointer bus.
package autocomplete

import (
	"unicode/utf8"

	"weather-lookup/models"
)

// DefaultMinQueryLength is the shortest query that triggers a lookup
const DefaultMinQueryLength = 3

// Target identifies where a pointer-down landed
type Target int

const (
	// TargetOutside is anywhere but the input and the panel; it closes the panel
	TargetOutside Target = iota
	// TargetInput is the query input
	TargetInput
	// TargetPanel is the suggestion panel
	TargetPanel
)

// Request asks for suggestions for Query. Seq orders requests by issue time.
type Request struct {
	Seq   uint64
	Query string
}

// State is the autocomplete input state
type State struct {
	Query       string
	Suggestions []models.LocationSuggestion
	Open        bool

	minLength int
	requested uint64
	applied   uint64
}

// NewState returns an empty state. minLength below 1 uses DefaultMinQueryLength.
func NewState(minLength int) State {
	if minLength < 1 {
		minLength = DefaultMinQueryLength
	}
	return State{minLength: minLength}
}

// InputChanged records new input text and opens the panel. The caller schedules the
// debounced lookup.
func (s State) InputChanged(text string) State {
	s.Query = text
	s.Open = true
	return s
}

// Settled handles the debounced lookup for query. Short queries clear the list and
// return ok=false.
func (s State) Settled(query string) (State, Request, bool) {
	s.requested++
	if utf8.RuneCountInString(query) < s.minLength {
		s.applied = s.requested
		s.Suggestions = nil
		return s, Request{}, false
	}
	return s, Request{Seq: s.requested, Query: query}, true
}

// SuggestionsReceived applies a result unless a newer one was already applied.
func (s State) SuggestionsReceived(seq uint64, list []models.LocationSuggestion) State {
	if seq <= s.applied {
		return s
	}
	s.applied = seq
	s.Suggestions = list
	return s
}

// SuggestionsFailed empties the list, subject to the same ordering as SuggestionsReceived.
func (s State) SuggestionsFailed(seq uint64) State {
	if seq <= s.applied {
		return s
	}
	s.applied = seq
	s.Suggestions = nil
	return s
}

// PointerDown closes the panel when the pointer lands outside the input and the panel.
func (s State) PointerDown(target Target) State {
	if target == TargetOutside {
		s.Open = false
	}
	return s
}

// Submit closes the panel and returns the query to search for.
func (s State) Submit() (State, string) {
	s.Open = false
	return s, s.Query
}

// Select picks suggestion i: the query becomes its name and the panel closes.
func (s State) Select(i int) (State, string, bool) {
	if i < 0 || i >= len(s.Suggestions) {
		return s, "", false
	}
	s.Query = s.Suggestions[i].Name
	s.Open = false
	return s, s.Query, true
}

// Visible reports whether the suggestion panel is shown
func (s State) Visible() bool {
	return s.Open && len(s.Suggestions) > 0
}

// Pending reports whether a lookup is in flight that has not been superseded
func (s State) Pending() bool {
	return s.requested > s.applied
}
