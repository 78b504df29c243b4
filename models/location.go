package models

import "strings"

// LocationSuggestion is a single autocomplete entry returned by the locations endpoint
type LocationSuggestion struct {
	Name    string `json:"name" yaml:"name"`
	Country string `json:"country" yaml:"country"`
	State   string `json:"state,omitempty" yaml:"state,omitempty"`
}

// Label renders the suggestion the way it is listed: "Paris, Île-de-France, FR"
func (l LocationSuggestion) Label() string {
	parts := []string{l.Name}
	if l.State != "" {
		parts = append(parts, l.State)
	}
	parts = append(parts, l.Country)
	return strings.Join(parts, ", ")
}
