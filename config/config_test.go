package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 5, cfg.OpenWeatherMap.SuggestionLimit)
	assert.Equal(t, "metric", cfg.OpenWeatherMap.Units)
	assert.Equal(t, 10*time.Second, cfg.OpenWeatherMap.Timeout)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 300*time.Millisecond, cfg.Client.Debounce)
	assert.Equal(t, 15*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 3, cfg.Client.MinQueryLength)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("WEATHER_SERVER_PORT", "9090")
	t.Setenv("WEATHER_SERVER_CORS_ORIGINS", "http://a.example,http://b.example")
	t.Setenv("WEATHER_CLIENT_DEBOUNCE", "150ms")
	t.Setenv("WEATHER_CLIENT_TIMEOUT", "4s")
	t.Setenv("WEATHER_RATE_LIMIT_ENABLED", "false")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 150*time.Millisecond, cfg.Client.Debounce)
	assert.Equal(t, 4*time.Second, cfg.Client.Timeout)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestAPIKeyIsReadAtCallTime(t *testing.T) {
	v := New()
	key := APIKeyFunc(v)

	t.Setenv(APIKeyEnv, "")
	assert.Equal(t, "", key())

	t.Setenv(APIKeyEnv, "abc123")
	assert.Equal(t, "abc123", key())

	t.Setenv(APIKeyEnv, "rotated")
	assert.Equal(t, "rotated", key())
}

func TestValidationRejectsBadValues(t *testing.T) {
	v := New()
	v.Set("server.port", 0)
	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	v = New()
	v.Set("openweathermap.suggestion-limit", 10)
	_, err = Load(v)
	require.Error(t, err)

	v = New()
	v.Set("log.format", "xml")
	_, err = Load(v)
	require.Error(t, err)
}

func TestCORSOriginsMustBeWildcardOrURL(t *testing.T) {
	v := New()
	v.Set("server.cors-origins", []string{"example.com"})
	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	v = New()
	v.Set("server.cors-origins", []string{"*", "https://app.example"})
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"*", "https://app.example"}, cfg.Server.CORSOrigins)

	v = New()
	v.Set("server.cors-origins", []string{})
	_, err = Load(v)
	require.Error(t, err)
}

func TestReadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weather-lookup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7070
client:
  server-url: http://weather.internal:7070
  debounce: 500ms
`), 0o644))

	v := New()
	require.NoError(t, ReadConfigFile(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "http://weather.internal:7070", cfg.Client.ServerURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Client.Debounce)
}

func TestReadConfigFileMissing(t *testing.T) {
	err := ReadConfigFile(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("OPENWEATHER_API_KEY=from-dotenv\n"), 0o644))

	t.Setenv(APIKeyEnv, "")
	require.NoError(t, os.Unsetenv(APIKeyEnv))

	LoadDotEnv(path, filepath.Join(dir, "missing.env"))
	assert.Equal(t, "from-dotenv", APIKeyFunc(New())())
}
