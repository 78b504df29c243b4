package api

import (
	"net/http"
	"time"

	"weather-lookup/datasource"
	"weather-lookup/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	msgQueryRequired    = "Query parameter is required"
	msgCityRequired     = "City parameter is required"
	msgLocationsFailed  = "Failed to fetch location suggestions"
	msgWeatherFailed    = "Failed to fetch weather data"
	jsonContentTypeUTF8 = "application/json; charset=utf-8"
)

type locationsRequest struct {
	Query string `form:"q" binding:"required"`
}

type weatherRequest struct {
	City string `form:"city" binding:"required"`
}

// handleLocations serves GET /api/locations?q=
func (s *Server) handleLocations(c *gin.Context) {
	var req locationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		log.Debug().Err(err).Msg("locations request rejected")
		writeError(c, http.StatusBadRequest, msgQueryRequired)
		return
	}

	suggestions, err := s.locations.Locations(c.Request.Context(), req.Query)
	if err != nil {
		log.Error().Err(err).
			Str("source", s.locations.Name()).
			Str("q", req.Query).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("Error fetching location suggestions")
		writeError(c, http.StatusInternalServerError, msgLocationsFailed)
		return
	}
	if suggestions == nil {
		suggestions = []models.LocationSuggestion{}
	}

	c.JSON(http.StatusOK, suggestions)
}

// handleWeather serves GET /api/weather?city=
func (s *Server) handleWeather(c *gin.Context) {
	var req weatherRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		log.Debug().Err(err).Msg("weather request rejected")
		writeError(c, http.StatusBadRequest, msgCityRequired)
		return
	}

	payload, err := s.weather.CurrentWeather(c.Request.Context(), req.City)
	if err != nil {
		logger := log.With().
			Str("source", s.weather.Name()).
			Str("city", req.City).
			Str("request_id", c.GetString(requestIDKey)).
			Logger()

		var upErr *datasource.UpstreamError
		if errors.As(err, &upErr) {
			message := upErr.Message
			if message == "" {
				message = msgWeatherFailed
			}
			logger.Warn().Int("upstream_status", upErr.StatusCode).Str("message", upErr.Message).Msg("Upstream rejected weather request")
			writeError(c, upErr.HTTPStatus(), message)
			return
		}

		logger.Error().Err(err).Msg("Error fetching weather")
		writeError(c, http.StatusInternalServerError, msgWeatherFailed)
		return
	}

	c.Data(http.StatusOK, jsonContentTypeUTF8, payload)
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
