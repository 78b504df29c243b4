package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"weather-lookup/config"
	"weather-lookup/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const parisPayload = `{"coord":{"lon":2.35,"lat":48.85},"weather":[{"id":800,"main":"Clear","description":"clear sky","icon":"01d"}],"main":{"temp":21.4,"feels_like":20.9,"temp_min":19.1,"temp_max":23.2,"pressure":1016,"humidity":48},"visibility":10000,"wind":{"speed":3.6,"deg":250},"sys":{"country":"FR","sunrise":1718250000,"sunset":1718308000},"timezone":7200,"name":"Paris","cod":200}`

func newProxy(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/weather":
			if r.URL.Query().Get("city") != "Paris" {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"city not found"}`))
				return
			}
			_, _ = w.Write([]byte(parisPayload))
		case "/api/locations":
			_, _ = w.Write([]byte(`[{"name":"Paris","country":"FR","state":"Île-de-France"},{"name":"Paris","country":"US"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestWeatherCommandText(t *testing.T) {
	srv := newProxy(t)

	out, err := run(t, "weather", "Paris", "--server-url", srv.URL, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "City:        Paris")
	assert.Contains(t, out, "Temperature: 21°C")
	assert.Contains(t, out, "Clear Sky (clear)")
	assert.Contains(t, out, "Wind Speed:  13 km/h")
	assert.Contains(t, out, "Visibility:  10.0 km")
}

func TestWeatherCommandJSON(t *testing.T) {
	srv := newProxy(t)

	out, err := run(t, "weather", "Paris", "-o", "json", "--server-url", srv.URL, "--log-level", "error")
	require.NoError(t, err)
	assert.JSONEq(t, parisPayload, out)
}

func TestWeatherCommandYAML(t *testing.T) {
	srv := newProxy(t)

	out, err := run(t, "weather", "Paris", "-o", "yaml", "--server-url", srv.URL, "--log-level", "error")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Paris", doc["name"])
}

func TestWeatherCommandError(t *testing.T) {
	srv := newProxy(t)

	_, err := run(t, "weather", "Atlantis", "--server-url", srv.URL, "--log-level", "error")
	require.Error(t, err)
	assert.Equal(t, "city not found", err.Error())
}

func TestLocationsCommand(t *testing.T) {
	srv := newProxy(t)

	out, err := run(t, "locations", "Par", "--server-url", srv.URL, "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "Paris, Île-de-France, FR\nParis, US\n", out)

	out, err = run(t, "locations", "Par", "-o", "yaml", "--server-url", srv.URL, "--log-level", "error")
	require.NoError(t, err)
	var got []models.LocationSuggestion
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, []models.LocationSuggestion{
		{Name: "Paris", Country: "FR", State: "Île-de-France"},
		{Name: "Paris", Country: "US"},
	}, got)
}

func TestUnknownOutputFormat(t *testing.T) {
	srv := newProxy(t)

	_, err := run(t, "locations", "Par", "-o", "xml", "--server-url", srv.URL, "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	t.Setenv("WEATHER_SERVER_PORT", "70000")

	_, err := run(t, "locations", "Par", "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestClientTimeoutFlag(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	start := time.Now()
	_, err := run(t, "weather", "Paris", "--server-url", srv.URL, "--client-timeout", "50ms", "--log-level", "error")
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch weather data", err.Error())
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestServeRejectsMalformedCORSOrigin(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "secret")

	_, err := run(t, "serve", "--cors-origins", "example.com", "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
