// Package weathercard implements the city form and the current-weather card.
package weathercard

import "weather-lookup/models"

// Request asks for the weather in City. Seq orders requests by issue time.
type Request struct {
	Seq  uint64
	City string
}

// State is the card state. Snapshot survives failed lookups so the last good
// reading stays on screen next to the error.
type State struct {
	City     string
	Snapshot *models.WeatherSnapshot
	Loading  bool
	Err      string

	requested uint64
	applied   uint64
}

// CityChanged records new input text
func (s State) CityChanged(text string) State {
	s.City = text
	return s
}

// Submit starts a lookup for the current city.
func (s State) Submit() (State, Request) {
	s.requested++
	s.Loading = true
	s.Err = ""
	return s, Request{Seq: s.requested, City: s.City}
}

// FetchSucceeded replaces the snapshot unless a newer result was already applied.
func (s State) FetchSucceeded(seq uint64, snap *models.WeatherSnapshot) State {
	if seq <= s.applied {
		return s
	}
	s.applied = seq
	s.Snapshot = snap
	s.Err = ""
	s.Loading = s.requested > seq
	return s
}

// FetchFailed records msg and keeps the previous snapshot.
func (s State) FetchFailed(seq uint64, msg string) State {
	if seq <= s.applied {
		return s
	}
	s.applied = seq
	s.Err = msg
	s.Loading = s.requested > seq
	return s
}
