package autocomplete

import (
	"context"
	"sync"
	"time"

	"weather-lookup/debounce"
	"weather-lookup/models"

	"github.com/rs/zerolog/log"
)

// DefaultDebounce is the quiet period before a lookup is issued
const DefaultDebounce = 300 * time.Millisecond

// SuggestionFetcher looks up location suggestions
type SuggestionFetcher interface {
	Locations(ctx context.Context, query string) ([]models.LocationSuggestion, error)
}

// PointerBus delivers every pointer-down on the page, wherever it lands.
type PointerBus interface {
	Subscribe(fn func(Target)) (unsubscribe func())
}

// Option configures a Component
type Option func(*Component)

// WithDebounce sets the debounce delay
func WithDebounce(d time.Duration) Option {
	return func(c *Component) {
		c.delay = d
	}
}

// WithMinQueryLength sets the shortest query that is looked up
func WithMinQueryLength(n int) Option {
	return func(c *Component) {
		c.state = NewState(n)
	}
}

// OnChange registers a callback run after every state change.
func OnChange(fn func()) Option {
	return func(c *Component) {
		c.onChange = fn
	}
}

// Component is a mounted autocomplete input.
type Component struct {
	mu          sync.Mutex
	state       State
	fetcher     SuggestionFetcher
	onSearch    func(string)
	onChange    func()
	delay       time.Duration
	debouncer   *debounce.Debouncer[string]
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
}

// New creates a component. onSearch receives the query on submit and the suggestion
// name on selection.
func New(fetcher SuggestionFetcher, onSearch func(string), opts ...Option) *Component {
	c := &Component{
		state:    NewState(DefaultMinQueryLength),
		fetcher:  fetcher,
		onSearch: onSearch,
		delay:    DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.debouncer = debounce.New(c.delay, c.settle)
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// Mount attaches the outside-click listener.
func (c *Component) Mount(bus PointerBus) {
	unsubscribe := bus.Subscribe(c.PointerDown)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.unsubscribe = unsubscribe
}

// Unmount detaches the listener, drops the pending lookup and cancels requests in
// flight. The component is unusable afterwards.
func (c *Component) Unmount() {
	c.debouncer.Stop()

	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	c.cancel()
}

// State returns a copy of the current state
func (c *Component) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetQuery handles a keystroke.
func (c *Component) SetQuery(text string) {
	c.update(func(s State) State {
		return s.InputChanged(text)
	})
	c.debouncer.Trigger(text)
}

// Submit searches for the current query as typed.
func (c *Component) Submit() {
	c.debouncer.Cancel()

	var query string
	c.update(func(s State) State {
		s, query = s.Submit()
		return s
	})
	c.search(query)
}

// Select searches for suggestion i. The new query is looked up like a keystroke so
// the list matches it when the panel reopens.
func (c *Component) Select(i int) {
	var (
		name string
		ok   bool
	)
	c.update(func(s State) State {
		s, name, ok = s.Select(i)
		return s
	})
	if !ok {
		return
	}
	c.debouncer.Trigger(name)
	c.search(name)
}

// PointerDown reports a pointer-down landing on target.
func (c *Component) PointerDown(target Target) {
	c.update(func(s State) State {
		return s.PointerDown(target)
	})
}

func (c *Component) settle(query string) {
	if c.ctx.Err() != nil {
		return
	}

	var (
		req Request
		ok  bool
	)
	c.update(func(s State) State {
		s, req, ok = s.Settled(query)
		return s
	})
	if !ok {
		return
	}

	go c.fetch(req)
}

func (c *Component) fetch(req Request) {
	suggestions, err := c.fetcher.Locations(c.ctx, req.Query)
	if c.ctx.Err() != nil {
		return
	}

	if err != nil {
		log.Debug().Err(err).Str("q", req.Query).Uint64("seq", req.Seq).Msg("Error fetching suggestions")
		c.update(func(s State) State {
			return s.SuggestionsFailed(req.Seq)
		})
		return
	}

	c.update(func(s State) State {
		return s.SuggestionsReceived(req.Seq, suggestions)
	})
}

func (c *Component) search(query string) {
	if c.onSearch != nil {
		c.onSearch(query)
	}
}

func (c *Component) update(fn func(State) State) {
	c.mu.Lock()
	c.state = fn(c.state)
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange()
	}
}
