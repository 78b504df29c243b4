// Package config loads application settings from flags, environment, .env files and
// an optional config file.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"weather-lookup/datasource"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	envPrefix = "WEATHER"
	appName   = "weather-lookup"

	// KeyAPIKey is never part of Config; it is read through APIKeyFunc on each request.
	KeyAPIKey = "openweathermap.api-key"
	// APIKeyEnv is the environment variable holding the OpenWeatherMap key
	APIKeyEnv = "OPENWEATHER_API_KEY"
)

// Config represents the application configuration
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	OpenWeatherMap OpenWeatherMapConfig `mapstructure:"openweathermap"`
	RateLimit      RateLimitConfig      `mapstructure:"rate-limit"`
	Client         ClientConfig         `mapstructure:"client"`
	Log            LogConfig            `mapstructure:"log"`
}

// ServerConfig configures the proxy HTTP server
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout" validate:"gt=0"`
	CORSOrigins     []string      `mapstructure:"cors-origins" validate:"min=1,dive,eq=*|url"`
}

// OpenWeatherMapConfig configures the upstream provider
type OpenWeatherMapConfig struct {
	GeoURL          string        `mapstructure:"geo-url" validate:"required,url"`
	WeatherURL      string        `mapstructure:"weather-url" validate:"required,url"`
	Units           string        `mapstructure:"units" validate:"oneof=standard metric imperial"`
	SuggestionLimit int           `mapstructure:"suggestion-limit" validate:"min=1,max=5"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// RateLimitConfig configures both the upstream limiter and the per-client limiter
type RateLimitConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	GeocodeRPS  float64 `mapstructure:"geocode-rps" validate:"gt=0"`
	WeatherRPS  float64 `mapstructure:"weather-rps" validate:"gt=0"`
	Burst       int     `mapstructure:"burst" validate:"min=1"`
	ClientRPS   float64 `mapstructure:"client-rps" validate:"gt=0"`
	ClientBurst int     `mapstructure:"client-burst" validate:"min=1"`
}

// ClientConfig configures the terminal client and one-shot commands
type ClientConfig struct {
	ServerURL      string        `mapstructure:"server-url" validate:"required,url"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Debounce       time.Duration `mapstructure:"debounce" validate:"gte=0"`
	MinQueryLength int           `mapstructure:"min-query-length" validate:"min=1"`
	CityTime       bool          `mapstructure:"city-time"`
}

// LogConfig configures zerolog
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error fatal"`
	Format string `mapstructure:"format" validate:"oneof=auto json text"`
	File   string `mapstructure:"file"`
}

// SetDefaults registers every key with its default so that environment variables are
// picked up by Unmarshal even when no config file mentions them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown-timeout", 5*time.Second)
	v.SetDefault("server.cors-origins", []string{"*"})

	v.SetDefault("openweathermap.geo-url", datasource.DefaultGeoURL)
	v.SetDefault("openweathermap.weather-url", datasource.DefaultWeatherURL)
	v.SetDefault("openweathermap.units", datasource.DefaultUnits)
	v.SetDefault("openweathermap.suggestion-limit", datasource.DefaultSuggestionLimit)
	v.SetDefault("openweathermap.timeout", 10*time.Second)

	// OpenWeatherMap free tier allows 60 calls/minute = 1 call per second
	v.SetDefault("rate-limit.enabled", true)
	v.SetDefault("rate-limit.geocode-rps", 1.0)
	v.SetDefault("rate-limit.weather-rps", 1.0)
	v.SetDefault("rate-limit.burst", 5)
	v.SetDefault("rate-limit.client-rps", 10.0)
	v.SetDefault("rate-limit.client-burst", 20)

	v.SetDefault("client.server-url", "http://localhost:8080")
	v.SetDefault("client.timeout", 15*time.Second)
	v.SetDefault("client.debounce", 300*time.Millisecond)
	v.SetDefault("client.min-query-length", 3)
	v.SetDefault("client.city-time", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.file", "")
}

// New returns a viper instance with defaults and environment bindings in place
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyAPIKey, APIKeyEnv)

	return v
}

// LoadDotEnv loads .env style files into the process environment. Missing files are
// not an error.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if os.IsNotExist(errors.Cause(err)) {
				continue
			}
			log.Warn().Err(err).Str("file", f).Msg("error loading env file")
		}
	}
}

// ReadConfigFile reads an explicit config file, or searches the usual locations when
// path is empty. Only an explicit path that cannot be read is an error.
func ReadConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		return errors.Wrapf(v.ReadInConfig(), "failed to read config file %s", path)
	}

	v.SetConfigName(appName)
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, appName))
	}

	err := v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return nil
	}
	return errors.Wrap(err, "failed to read config file")
}

// Load decodes and validates the configuration
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &cfg, nil
}

// APIKeyFunc returns a function reading the API key at call time. An absent key is
// passed along as-is; the provider reports it.
func APIKeyFunc(v *viper.Viper) func() string {
	return func() string {
		return v.GetString(KeyAPIKey)
	}
}
