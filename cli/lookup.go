package cli

import (
	"time"

	"weather-lookup/tui"
	"weather-lookup/ui"

	"github.com/spf13/cobra"
)

func (a *app) newLookupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Interactive weather lookup with location autocomplete",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.cfg.Client
			return tui.Run(cmd.Context(), a.proxyClient(), ui.Options{
				Debounce:       c.Debounce,
				MinQueryLength: c.MinQueryLength,
				CityTime:       c.CityTime,
			})
		},
	}

	cmd.Flags().Bool("city-time", false, "Show sunrise and sunset in the city's time zone")
	cmd.Flags().Duration("debounce", 300*time.Millisecond, "Delay before suggestions are fetched")
	a.bindFlag(cmd, "client.city-time", "city-time")
	a.bindFlag(cmd, "client.debounce", "debounce")

	return cmd
}
