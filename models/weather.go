package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// StatusCode is the provider's payload-level status ("cod"). The provider sends it as a
// number on success and as a string on most failures, so both are accepted.
type StatusCode int

// UnmarshalJSON decodes 200, 200.0 or "200". Fractional codes are rejected.
func (c *StatusCode) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		*c = 0
		return nil
	}
	raw = strings.Trim(raw, `"`)
	if raw == "" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid status code %s", string(data))
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return errors.Errorf("invalid status code %s", string(data))
	}
	*c = StatusCode(int(f))
	return nil
}

// MarshalJSON always emits a number.
func (c StatusCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(c))
}

// Condition is one weather condition descriptor
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// WeatherSnapshot mirrors the provider's current-weather payload
type WeatherSnapshot struct {
	Coord struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"coord"`
	Weather []Condition `json:"weather"`
	Main    struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  int     `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Visibility int `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"` // m/s with metric units
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int        `json:"timezone"` // shift from UTC in seconds
	Name     string     `json:"name"`
	Cod      StatusCode `json:"cod"`
}

// PrimaryCondition returns the first condition, if any
func (w *WeatherSnapshot) PrimaryCondition() (Condition, bool) {
	if w == nil || len(w.Weather) == 0 {
		return Condition{}, false
	}
	return w.Weather[0], true
}
