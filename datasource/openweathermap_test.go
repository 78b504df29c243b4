package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"weather-lookup/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticKey(key string) func() string {
	return func() string { return key }
}

func newTestProvider(t *testing.T, handler http.HandlerFunc, opts ...Option) *OpenWeatherMapProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithGeoURL(srv.URL + "/geo/1.0"), WithWeatherURL(srv.URL + "/data/2.5")}, opts...)
	return NewOpenWeatherMapProvider(staticKey("secret"), opts...)
}

func TestLocationsMapsRecordsInUpstreamOrder(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geo/1.0/direct", r.URL.Path)
		assert.Equal(t, "San José", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		_, _ = w.Write([]byte(`[
			{"name":"San José","lat":9.93,"lon":-84.08,"country":"CR","state":"San José"},
			{"name":"San Jose","local_names":{"en":"San Jose"},"lat":37.33,"lon":-121.89,"country":"US","state":"California"},
			{"name":"San José","lat":14.2,"lon":-90.8,"country":"GT"}
		]`))
	})

	got, err := p.Locations(context.Background(), "San José")
	require.NoError(t, err)
	assert.Equal(t, []models.LocationSuggestion{
		{Name: "San José", Country: "CR", State: "San José"},
		{Name: "San Jose", Country: "US", State: "California"},
		{Name: "San José", Country: "GT"},
	}, got)
}

func TestLocationsHonorsConfiguredLimit(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[]`))
	}, WithSuggestionLimit(3))

	got, err := p.Locations(context.Background(), "Oslo")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLocationsUpstreamFailure(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key."}`))
	})

	_, err := p.Locations(context.Background(), "Oslo")
	require.Error(t, err)

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusUnauthorized, upErr.StatusCode)
	assert.Equal(t, "Invalid API key.", upErr.Message)
}

func TestLocationsMalformedPayload(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"`))
	})

	_, err := p.Locations(context.Background(), "Oslo")
	require.Error(t, err)

	var upErr *UpstreamError
	assert.False(t, errors.As(err, &upErr))
}

func TestCurrentWeatherPassesPayloadThrough(t *testing.T) {
	payload := `{"coord":{"lon":2.35,"lat":48.85},"weather":[{"id":800,"main":"Clear","description":"clear sky","icon":"01d"}],"main":{"temp":21.4,"feels_like":20.9,"temp_min":19.1,"temp_max":23.2,"pressure":1016,"humidity":48},"visibility":10000,"wind":{"speed":3.6,"deg":250},"sys":{"country":"FR","sunrise":1718250000,"sunset":1718308000},"timezone":7200,"name":"Paris","cod":200}`

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "Paris", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		_, _ = w.Write([]byte(payload))
	})

	got, err := p.CurrentWeather(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}

func TestCurrentWeatherAcceptsFloatCode(t *testing.T) {
	payload := `{"weather":[{"id":800,"main":"Clear","description":"clear sky","icon":"01d"}],"main":{"temp":21.4},"name":"Paris","cod":200.0}`
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	})

	got, err := p.CurrentWeather(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}

func TestCurrentWeatherPayloadCodeIsForwarded(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	})

	_, err := p.CurrentWeather(context.Background(), "Atlantis")
	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, 404, upErr.StatusCode)
	assert.Equal(t, "city not found", upErr.Message)
}

func TestCurrentWeatherPayloadCodeWinsOverHTTPStatus(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cod":429,"message":"too many requests"}`))
	})

	_, err := p.CurrentWeather(context.Background(), "Paris")
	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, 429, upErr.StatusCode)
}

func TestCurrentWeatherFallsBackToHTTPStatus(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"maintenance"}`))
	})

	_, err := p.CurrentWeather(context.Background(), "Paris")
	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusServiceUnavailable, upErr.StatusCode)
	assert.Equal(t, "maintenance", upErr.Message)
}

func TestCurrentWeatherMalformedPayload(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	})

	_, err := p.CurrentWeather(context.Background(), "Paris")
	require.Error(t, err)
	var upErr *UpstreamError
	assert.False(t, errors.As(err, &upErr))
}

func TestTransportErrorDoesNotLeakKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	p := NewOpenWeatherMapProvider(staticKey("secret"), WithWeatherURL(srv.URL))
	_, err := p.CurrentWeather(context.Background(), "Paris")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
}

func TestAPIKeyIsReadPerRequest(t *testing.T) {
	seen := make(chan string, 2)
	key := "first"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.URL.Query().Get("appid")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	p := NewOpenWeatherMapProvider(func() string { return key }, WithGeoURL(srv.URL))
	_, err := p.Locations(context.Background(), "Oslo")
	require.NoError(t, err)
	key = "second"
	_, err = p.Locations(context.Background(), "Oslo")
	require.NoError(t, err)

	assert.Equal(t, "first", <-seen)
	assert.Equal(t, "second", <-seen)
}

func TestUpstreamErrorHTTPStatus(t *testing.T) {
	assert.Equal(t, 404, (&UpstreamError{StatusCode: 404}).HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, (&UpstreamError{StatusCode: 0}).HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, (&UpstreamError{StatusCode: 1200}).HTTPStatus())
	assert.Equal(t, "upstream error (status 404): city not found",
		(&UpstreamError{StatusCode: 404, Message: "city not found"}).Error())
}
