package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"weather-lookup/client"
	"weather-lookup/models"
	"weather-lookup/ui/weathercard"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func addOutputFlag(cmd *cobra.Command, output *string) {
	cmd.Flags().StringVarP(output, "output", "o", outputText, "Output format (text, json, yaml)")
}

func checkOutput(output string) error {
	switch output {
	case outputText, outputJSON, outputYAML:
		return nil
	default:
		return errors.Errorf("unknown output format %q", output)
	}
}

func (a *app) newWeatherCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "weather <city>",
		Short: "Print the current weather for a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			city := strings.Join(args, " ")

			raw, err := a.proxyClient().WeatherRaw(cmd.Context(), city)
			if err != nil {
				return errors.New(client.Message(err, client.MsgWeatherFailed))
			}
			return printWeather(cmd.OutOrStdout(), raw, output, a.cfg.Client.CityTime)
		},
	}
	addOutputFlag(cmd, &output)

	return cmd
}

func (a *app) newLocationsCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "locations <query>",
		Short: "Print location suggestions for a partial place name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			query := strings.Join(args, " ")

			suggestions, err := a.proxyClient().Locations(cmd.Context(), query)
			if err != nil {
				return errors.New(client.Message(err, client.MsgSuggestionsFailed))
			}
			return printLocations(cmd.OutOrStdout(), suggestions, output)
		},
	}
	addOutputFlag(cmd, &output)

	return cmd
}

func printWeather(w io.Writer, raw json.RawMessage, output string, cityTime bool) error {
	switch output {
	case outputJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return errors.Wrap(err, "failed to format weather data")
		}
		buf.WriteByte('\n')
		_, err := buf.WriteTo(w)
		return err

	case outputYAML:
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return errors.Wrap(err, "failed to decode weather data")
		}
		return writeYAML(w, doc)
	}

	var snap models.WeatherSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return errors.Wrap(err, "failed to decode weather data")
	}
	loc := time.Local
	if cityTime {
		loc = weathercard.CityLocation(&snap)
	}
	v := weathercard.Render(&snap, loc)

	rows := [][2]string{
		{"City", v.City},
		{"Conditions", fmt.Sprintf("%s (%s)", v.Description, v.Icon)},
		{"Temperature", v.Temperature},
		{"Feels like", strings.TrimPrefix(v.FeelsLike, "Feels like ")},
		{"Min/Max", v.MinMax},
		{"Wind Speed", v.Wind},
		{"Humidity", v.Humidity},
		{"Pressure", v.Pressure},
		{"Sunrise", v.Sunrise},
		{"Sunset", v.Sunset},
		{"Visibility", v.Visibility},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%-12s %s\n", r[0]+":", r[1]); err != nil {
			return err
		}
	}
	return nil
}

func printLocations(w io.Writer, suggestions []models.LocationSuggestion, output string) error {
	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(suggestions)
	case outputYAML:
		return writeYAML(w, suggestions)
	}

	if len(suggestions) == 0 {
		_, err := fmt.Fprintln(w, "No matching locations")
		return err
	}
	for _, s := range suggestions {
		if _, err := fmt.Fprintln(w, s.Label()); err != nil {
			return err
		}
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode yaml")
	}
	return enc.Close()
}
