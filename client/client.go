// Package client talks to the weather-lookup proxy endpoints.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weather-lookup/models"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// MsgWeatherFailed is shown when a weather lookup fails without a server message
	MsgWeatherFailed = "Failed to fetch weather data"
	// MsgSuggestionsFailed is used when a suggestion lookup fails without a server message
	MsgSuggestionsFailed = "Failed to fetch suggestions"
)

// DefaultTimeout bounds each proxy request unless WithTimeout says otherwise.
const DefaultTimeout = 15 * time.Second

// Error is a non-2xx answer from the proxy.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// Message returns the user-facing text for err: the proxy's message when the proxy
// answered, fallback otherwise.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Client is an HTTP client for the proxy.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the request timeout
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.httpClient.Timeout = d
	}
}

// New creates a client for the proxy at baseURL, e.g. http://localhost:8080
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Locations fetches suggestions for a partial place name.
func (c *Client) Locations(ctx context.Context, query string) ([]models.LocationSuggestion, error) {
	body, err := c.get(ctx, "/api/locations", url.Values{"q": {query}}, MsgSuggestionsFailed)
	if err != nil {
		return nil, err
	}

	var suggestions []models.LocationSuggestion
	if err := json.Unmarshal(body, &suggestions); err != nil {
		return nil, errors.Wrap(err, "failed to decode suggestions")
	}
	if suggestions == nil {
		suggestions = []models.LocationSuggestion{}
	}
	return suggestions, nil
}

// WeatherRaw fetches the current-weather payload exactly as the proxy returned it.
func (c *Client) WeatherRaw(ctx context.Context, city string) (json.RawMessage, error) {
	body, err := c.get(ctx, "/api/weather", url.Values{"city": {city}}, MsgWeatherFailed)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Weather fetches and decodes the current weather for city.
func (c *Client) Weather(ctx context.Context, city string) (*models.WeatherSnapshot, error) {
	body, err := c.WeatherRaw(ctx, city)
	if err != nil {
		return nil, err
	}

	var snap models.WeatherSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, errors.Wrap(err, "failed to decode weather data")
	}
	return &snap, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, fallback string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &payload)
		message := payload.Error
		if message == "" {
			message = fallback
		}
		log.Debug().Str("path", path).Int("status", resp.StatusCode).Str("error", message).Msg("proxy request failed")
		return nil, &Error{StatusCode: resp.StatusCode, Message: message}
	}

	return body, nil
}
