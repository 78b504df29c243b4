package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"weather-lookup/models"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultGeoURL          = "http://api.openweathermap.org/geo/1.0"
	DefaultWeatherURL      = "https://api.openweathermap.org/data/2.5"
	DefaultUnits           = "metric"
	DefaultSuggestionLimit = 5
)

// OpenWeatherMapProvider implements both LocationSource and WeatherSource
type OpenWeatherMapProvider struct {
	apiKey     func() string
	geoURL     string
	weatherURL string
	units      string
	limit      int
	httpClient *http.Client
}

// Option customizes an OpenWeatherMapProvider
type Option func(*OpenWeatherMapProvider)

// WithGeoURL overrides the geocoding API base URL
func WithGeoURL(u string) Option {
	return func(p *OpenWeatherMapProvider) { p.geoURL = strings.TrimRight(u, "/") }
}

// WithWeatherURL overrides the current-weather API base URL
func WithWeatherURL(u string) Option {
	return func(p *OpenWeatherMapProvider) { p.weatherURL = strings.TrimRight(u, "/") }
}

// WithUnits sets the unit system requested from the weather API
func WithUnits(units string) Option {
	return func(p *OpenWeatherMapProvider) { p.units = units }
}

// WithSuggestionLimit caps the number of geocoding results
func WithSuggestionLimit(limit int) Option {
	return func(p *OpenWeatherMapProvider) { p.limit = limit }
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) Option {
	return func(p *OpenWeatherMapProvider) { p.httpClient.Timeout = d }
}

// NewOpenWeatherMapProvider creates a new OpenWeatherMap provider. apiKey is called on
// every request so that key rotation in the environment is picked up without a restart.
func NewOpenWeatherMapProvider(apiKey func() string, opts ...Option) *OpenWeatherMapProvider {
	p := &OpenWeatherMapProvider{
		apiKey:     apiKey,
		geoURL:     DefaultGeoURL,
		weatherURL: DefaultWeatherURL,
		units:      DefaultUnits,
		limit:      DefaultSuggestionLimit,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name
func (p *OpenWeatherMapProvider) Name() string {
	return "OpenWeatherMap"
}

// Locations queries the direct geocoding endpoint
func (p *OpenWeatherMapProvider) Locations(ctx context.Context, query string) ([]models.LocationSuggestion, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("limit", strconv.Itoa(p.limit))
	params.Add("appid", p.apiKey())

	body, status, err := p.get(ctx, p.geoURL+"/direct", params)
	if err != nil {
		return nil, err
	}

	if status < 200 || status >= 300 {
		return nil, &UpstreamError{StatusCode: status, Message: payloadMessage(body)}
	}

	var records []struct {
		Name    string  `json:"name"`
		Country string  `json:"country"`
		State   string  `json:"state"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, errors.Wrap(err, "failed to parse geocoding response")
	}

	suggestions := make([]models.LocationSuggestion, 0, len(records))
	for _, r := range records {
		suggestions = append(suggestions, models.LocationSuggestion{
			Name:    r.Name,
			Country: r.Country,
			State:   r.State,
		})
	}

	return suggestions, nil
}

// CurrentWeather fetches current weather for a city and returns the payload as sent
func (p *OpenWeatherMapProvider) CurrentWeather(ctx context.Context, city string) (json.RawMessage, error) {
	params := url.Values{}
	params.Add("q", city)
	params.Add("appid", p.apiKey())
	params.Add("units", p.units)

	body, status, err := p.get(ctx, p.weatherURL+"/weather", params)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Cod     *models.StatusCode `json:"cod"`
		Message json.RawMessage    `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrap(err, "failed to parse weather response")
	}

	// The payload code is authoritative when present; the HTTP status only decides
	// when the provider left it out.
	switch {
	case envelope.Cod != nil && *envelope.Cod != http.StatusOK:
		return nil, &UpstreamError{StatusCode: int(*envelope.Cod), Message: messageText(envelope.Message)}
	case envelope.Cod == nil && (status < 200 || status >= 300):
		return nil, &UpstreamError{StatusCode: status, Message: messageText(envelope.Message)}
	}

	return json.RawMessage(body), nil
}

func (p *OpenWeatherMapProvider) get(ctx context.Context, endpoint string, params url.Values) ([]byte, int, error) {
	log.Debug().Str("endpoint", endpoint).Str("q", params.Get("q")).Msg("calling upstream")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to create request")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		// url.Error repeats the full URL, including the appid
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, 0, errors.Wrapf(err, "failed to execute request to %s", endpoint)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to read response body")
	}

	return body, resp.StatusCode, nil
}

// payloadMessage extracts "message" from an error payload, if the body is JSON at all
func payloadMessage(body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return messageText(payload.Message)
}

func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

var _ Provider = (*OpenWeatherMapProvider)(nil)

// String is used in log lines
func (p *OpenWeatherMapProvider) String() string {
	return fmt.Sprintf("%s(geo=%s, weather=%s)", p.Name(), p.geoURL, p.weatherURL)
}
