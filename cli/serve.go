package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"weather-lookup/api"
	"weather-lookup/config"
	"weather-lookup/datasource"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

func (a *app) newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the location and weather proxy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().Int("port", 8080, "Port to run the server on")
	cmd.Flags().Bool("rate-limit", true, "Enable API rate limiting")
	cmd.Flags().StringSlice("cors-origins", []string{"*"}, "Allowed CORS origins")
	a.bindFlag(cmd, "server.port", "port")
	a.bindFlag(cmd, "rate-limit.enabled", "rate-limit")
	a.bindFlag(cmd, "server.cors-origins", "cors-origins")

	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg

	owm := datasource.NewOpenWeatherMapProvider(config.APIKeyFunc(a.v),
		datasource.WithGeoURL(cfg.OpenWeatherMap.GeoURL),
		datasource.WithWeatherURL(cfg.OpenWeatherMap.WeatherURL),
		datasource.WithUnits(cfg.OpenWeatherMap.Units),
		datasource.WithSuggestionLimit(cfg.OpenWeatherMap.SuggestionLimit),
		datasource.WithTimeout(cfg.OpenWeatherMap.Timeout),
	)
	if a.v.GetString(config.KeyAPIKey) == "" {
		log.Warn().Str("env", config.APIKeyEnv).Msg("No OpenWeatherMap API key set; upstream will reject requests")
	}

	var provider datasource.Provider = owm
	opts := api.Options{
		Port:        cfg.Server.Port,
		CORSOrigins: cfg.Server.CORSOrigins,
	}
	if cfg.RateLimit.Enabled {
		provider = datasource.NewRateLimitedProvider(owm, cfg.RateLimit.GeocodeRPS, cfg.RateLimit.WeatherRPS, cfg.RateLimit.Burst)
		opts.RateLimiter = api.NewIPRateLimiter(rate.Limit(cfg.RateLimit.ClientRPS), cfg.RateLimit.ClientBurst)
		defer opts.RateLimiter.Stop()
		log.Info().
			Float64("geocode_rps", cfg.RateLimit.GeocodeRPS).
			Float64("weather_rps", cfg.RateLimit.WeatherRPS).
			Float64("client_rps", cfg.RateLimit.ClientRPS).
			Msg("Applied rate limiting")
	}

	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	server, err := api.NewServer(provider, provider, opts)
	if err != nil {
		return err
	}
	log.Info().Stringer("upstream", owm).Str("provider", provider.Name()).Str("addr", server.Addr()).Msg("Proxy configured")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("Shutdown complete")
	return nil
}
