package datasource

import (
	"context"
	"encoding/json"

	"weather-lookup/models"
)

// LocationSource resolves free-text queries into location suggestions
type LocationSource interface {
	// Locations returns matching places in the order the upstream ranked them
	Locations(ctx context.Context, query string) ([]models.LocationSuggestion, error)

	// Name returns the source's name
	Name() string
}

// WeatherSource fetches the current weather for a city
type WeatherSource interface {
	// CurrentWeather returns the upstream payload untouched
	CurrentWeather(ctx context.Context, city string) (json.RawMessage, error)

	// Name returns the source's name
	Name() string
}

// Provider is a backend that serves both lookups
type Provider interface {
	LocationSource
	WeatherSource
}
