package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"weather-lookup/datasource"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Options configures the HTTP surface of the server
type Options struct {
	Port        int
	CORSOrigins []string
	// RateLimiter throttles clients by IP; nil disables it
	RateLimiter *IPRateLimiter
}

// Server represents the API server
type Server struct {
	locations datasource.LocationSource
	weather   datasource.WeatherSource
	engine    *gin.Engine
	server    *http.Server
}

// NewServer creates a new API server proxying the given sources. An empty origin list
// allows every origin; a malformed origin is an error.
func NewServer(locations datasource.LocationSource, weather datasource.WeatherSource, opts Options) (*Server, error) {
	corsCfg := corsConfig(opts.CORSOrigins)
	if err := corsCfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid CORS configuration")
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	server := &Server{
		locations: locations,
		weather:   weather,
		engine:    engine,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	engine.Use(gin.Recovery(), RequestID(), RequestLogger())
	engine.Use(cors.New(corsCfg))
	if opts.RateLimiter != nil {
		engine.Use(opts.RateLimiter.RateLimit())
	}

	engine.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "Not found")
	})
	engine.NoMethod(func(c *gin.Context) {
		writeError(c, http.StatusMethodNotAllowed, "Method not allowed")
	})

	apiGroup := engine.Group("/api")
	apiGroup.GET("/locations", server.handleLocations)
	apiGroup.GET("/weather", server.handleWeather)

	// Health check
	apiGroup.GET("/health", server.handleHealthCheck)

	return server, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, origin := range origins {
		if strings.TrimSpace(origin) == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start begins the API server and blocks until it stops. A graceful shutdown is not
// reported as an error.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("Starting API server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server stopped")
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return errors.Wrap(s.server.Shutdown(ctx), "failed to shut down server")
}
