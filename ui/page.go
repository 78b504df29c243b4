// Package ui composes the autocomplete input and the weather card into one page.
package ui

import (
	"context"
	"sync"
	"time"

	"weather-lookup/models"
	"weather-lookup/ui/autocomplete"
	"weather-lookup/ui/weathercard"
)

// Backend serves both lookups, e.g. *client.Client
type Backend interface {
	Locations(ctx context.Context, query string) ([]models.LocationSuggestion, error)
	Weather(ctx context.Context, city string) (*models.WeatherSnapshot, error)
}

// Options configures a Page
type Options struct {
	Debounce       time.Duration
	MinQueryLength int
	CityTime       bool
	// OnChange runs after any state change on the page
	OnChange func()
}

// Page wires a search box to a weather card: searching from the box looks the city up
// on the card.
type Page struct {
	Input   *autocomplete.Component
	Card    *weathercard.Card
	Pointer *PointerBus
}

// NewPage builds and mounts a page.
func NewPage(backend Backend, opts Options) *Page {
	onChange := opts.OnChange
	if onChange == nil {
		onChange = func() {}
	}

	card := weathercard.New(backend,
		weathercard.WithCityTime(opts.CityTime),
		weathercard.OnChange(onChange),
	)

	inputOpts := []autocomplete.Option{
		autocomplete.WithMinQueryLength(opts.MinQueryLength),
		autocomplete.OnChange(onChange),
	}
	if opts.Debounce > 0 {
		inputOpts = append(inputOpts, autocomplete.WithDebounce(opts.Debounce))
	}
	input := autocomplete.New(backend, card.Search, inputOpts...)

	p := &Page{
		Input:   input,
		Card:    card,
		Pointer: &PointerBus{},
	}
	input.Mount(p.Pointer)
	return p
}

// Close unmounts the input and cancels pending lookups
func (p *Page) Close() {
	p.Input.Unmount()
	p.Card.Close()
}

// PointerBus fans pointer-down events out to every subscriber.
type PointerBus struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(autocomplete.Target)
}

// Subscribe registers fn and returns a function removing it.
func (b *PointerBus) Subscribe(fn func(autocomplete.Target)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers == nil {
		b.handlers = make(map[int]func(autocomplete.Target))
	}
	id := b.nextID
	b.nextID++
	b.handlers[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// PointerDown delivers a pointer-down on target to all subscribers.
func (b *PointerBus) PointerDown(target autocomplete.Target) {
	b.mu.Lock()
	handlers := make([]func(autocomplete.Target), 0, len(b.handlers))
	for _, fn := range b.handlers {
		handlers = append(handlers, fn)
	}
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(target)
	}
}

// Subscribers reports how many listeners are attached
func (b *PointerBus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}
