package weathercard

import (
	"context"
	"sync"
	"time"

	"weather-lookup/client"
	"weather-lookup/models"

	"github.com/rs/zerolog/log"
)

// WeatherFetcher looks up current weather for a city
type WeatherFetcher interface {
	Weather(ctx context.Context, city string) (*models.WeatherSnapshot, error)
}

// Option configures a Card
type Option func(*Card)

// OnChange registers a callback run after every state change.
func OnChange(fn func()) Option {
	return func(c *Card) {
		c.onChange = fn
	}
}

// WithCityTime renders sunrise and sunset in the city's own time zone.
func WithCityTime(enabled bool) Option {
	return func(c *Card) {
		c.cityTime = enabled
	}
}

// WithLocation sets the viewer's time zone. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(c *Card) {
		c.viewer = loc
	}
}

// Card is the weather form plus its result card.
type Card struct {
	mu       sync.Mutex
	state    State
	fetcher  WeatherFetcher
	onChange func()
	cityTime bool
	viewer   *time.Location
	ctx      context.Context
	cancel   context.CancelFunc
}

// New creates a card backed by fetcher
func New(fetcher WeatherFetcher, opts ...Option) *Card {
	c := &Card{
		fetcher: fetcher,
		viewer:  time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// State returns a copy of the current state
func (c *Card) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetCity handles typing in the city field
func (c *Card) SetCity(text string) {
	c.update(func(s State) State {
		return s.CityChanged(text)
	})
}

// Search sets the city and submits it.
func (c *Card) Search(city string) {
	c.SetCity(city)
	c.Submit()
}

// Submit fetches the weather for the current city. An empty city is sent as is; the
// server's rejection is shown like any other error.
func (c *Card) Submit() {
	if c.ctx.Err() != nil {
		return
	}

	var req Request
	c.update(func(s State) State {
		s, req = s.Submit()
		return s
	})

	go c.fetch(req)
}

// Close cancels requests in flight
func (c *Card) Close() {
	c.cancel()
}

// View renders the current snapshot. ok is false before the first successful lookup.
func (c *Card) View() (View, bool) {
	snap := c.State().Snapshot
	if snap == nil {
		return View{}, false
	}

	loc := c.viewer
	if c.cityTime {
		loc = CityLocation(snap)
	}
	return Render(snap, loc), true
}

func (c *Card) fetch(req Request) {
	snap, err := c.fetcher.Weather(c.ctx, req.City)
	if c.ctx.Err() != nil {
		return
	}

	if err != nil {
		log.Debug().Err(err).Str("city", req.City).Uint64("seq", req.Seq).Msg("Error fetching weather")
		msg := client.Message(err, client.MsgWeatherFailed)
		c.update(func(s State) State {
			return s.FetchFailed(req.Seq, msg)
		})
		return
	}

	c.update(func(s State) State {
		return s.FetchSucceeded(req.Seq, snap)
	})
}

func (c *Card) update(fn func(State) State) {
	c.mu.Lock()
	c.state = fn(c.state)
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange()
	}
}
