package weathercard

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"weather-lookup/models"

	"github.com/zsefvlol/timezonemapper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Icon is the symbol shown for a condition code
type Icon string

const (
	IconStorm Icon = "storm"
	IconRain  Icon = "rain"
	IconSnow  Icon = "snow"
	IconFog   Icon = "fog"
	IconClear Icon = "clear"
	IconCloud Icon = "cloud"
)

// IconFor maps a provider condition code to an icon.
func IconFor(code int) Icon {
	switch {
	case code >= 200 && code < 300:
		return IconStorm
	case code >= 300 && code < 600:
		return IconRain
	case code >= 600 && code < 700:
		return IconSnow
	case code >= 700 && code < 800:
		return IconFog
	case code == 800:
		return IconClear
	default:
		return IconCloud
	}
}

// round rounds half up, so -2.5 becomes -2 and 2.5 becomes 3.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Temperature formats a reading as whole degrees, e.g. "21°C"
func Temperature(celsius float64) string {
	return fmt.Sprintf("%d°C", round(celsius))
}

// MinMax formats the daily range, e.g. "12°/24°"
func MinMax(low, high float64) string {
	return fmt.Sprintf("%d°/%d°", round(low), round(high))
}

// WindSpeed converts m/s to whole km/h
func WindSpeed(metersPerSecond float64) string {
	return fmt.Sprintf("%d km/h", round(metersPerSecond*3.6))
}

// Humidity formats relative humidity, e.g. "48%"
func Humidity(percent int) string {
	return fmt.Sprintf("%d%%", percent)
}

// Pressure formats sea-level pressure, e.g. "1016 hPa"
func Pressure(hPa int) string {
	return fmt.Sprintf("%d hPa", hPa)
}

// Visibility converts meters to kilometers with one decimal
func Visibility(meters int) string {
	return strconv.FormatFloat(float64(meters)/1000, 'f', 1, 64) + " km"
}

// ClockTime renders epoch seconds as HH:MM in loc
func ClockTime(epoch int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(epoch, 0).In(loc).Format("15:04")
}

// CityLocation resolves the time zone of the snapshot's city from its coordinates,
// falling back to the fixed UTC offset the provider reports.
func CityLocation(snap *models.WeatherSnapshot) *time.Location {
	if snap == nil {
		return time.Local
	}
	if name := timezonemapper.LatLngToTimezoneString(snap.Coord.Lat, snap.Coord.Lon); name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.FixedZone("", snap.Timezone)
}

// View holds every string the card displays
type View struct {
	City        string
	Description string
	Icon        Icon
	Temperature string
	FeelsLike   string
	MinMax      string
	Wind        string
	Humidity    string
	Pressure    string
	Sunrise     string
	Sunset      string
	Visibility  string
}

// Render builds the view for snap with sunrise and sunset shown in loc.
func Render(snap *models.WeatherSnapshot, loc *time.Location) View {
	if snap == nil {
		return View{}
	}

	v := View{
		City:        snap.Name,
		Icon:        IconCloud,
		Temperature: Temperature(snap.Main.Temp),
		FeelsLike:   "Feels like " + Temperature(snap.Main.FeelsLike),
		MinMax:      MinMax(snap.Main.TempMin, snap.Main.TempMax),
		Wind:        WindSpeed(snap.Wind.Speed),
		Humidity:    Humidity(snap.Main.Humidity),
		Pressure:    Pressure(snap.Main.Pressure),
		Sunrise:     ClockTime(snap.Sys.Sunrise, loc),
		Sunset:      ClockTime(snap.Sys.Sunset, loc),
		Visibility:  Visibility(snap.Visibility),
	}
	if cond, ok := snap.PrimaryCondition(); ok {
		v.Icon = IconFor(cond.ID)
		v.Description = cases.Title(language.Und).String(strings.TrimSpace(cond.Description))
	}
	return v
}
