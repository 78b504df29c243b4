package datasource

import (
	"context"
	"encoding/json"
	"fmt"

	"weather-lookup/models"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// RateLimitedProvider wraps a Provider with one limiter per upstream endpoint.
// Callers wait for a token rather than being rejected.
type RateLimitedProvider struct {
	provider       Provider
	geocodeLimiter *rate.Limiter
	weatherLimiter *rate.Limiter
	name           string
}

// NewRateLimitedProvider creates a rate limited provider.
// geocodeRPS and weatherRPS are requests per second and may be fractional.
func NewRateLimitedProvider(provider Provider, geocodeRPS, weatherRPS float64, burst int) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider:       provider,
		geocodeLimiter: rate.NewLimiter(rate.Limit(geocodeRPS), burst),
		weatherLimiter: rate.NewLimiter(rate.Limit(weatherRPS), burst),
		name:           fmt.Sprintf("%s [Rate Limited]", provider.Name()),
	}
}

// Locations implements LocationSource with rate limiting
func (r *RateLimitedProvider) Locations(ctx context.Context, query string) ([]models.LocationSuggestion, error) {
	if err := r.geocodeLimiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limit wait canceled")
	}
	return r.provider.Locations(ctx, query)
}

// CurrentWeather implements WeatherSource with rate limiting
func (r *RateLimitedProvider) CurrentWeather(ctx context.Context, city string) (json.RawMessage, error) {
	if err := r.weatherLimiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limit wait canceled")
	}
	return r.provider.CurrentWeather(ctx, city)
}

// Name returns the provider name
func (r *RateLimitedProvider) Name() string {
	return r.name
}

var _ Provider = (*RateLimitedProvider)(nil)
