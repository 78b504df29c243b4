// Package cli wires configuration, logging and the commands together.
package cli

import (
	"io"
	"os"

	"weather-lookup/client"
	"weather-lookup/config"
	"weather-lookup/logging"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	v        *viper.Viper
	cfg      *config.Config
	closeLog func() error

	configFile string
	envFiles   []string
}

// NewRootCommand builds the command tree around a fresh viper instance.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:           "weather-lookup",
		Short:         "weather-lookup proxies OpenWeatherMap and looks up the current weather",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closeLog != nil {
				return a.closeLog()
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Path to configuration file")
	flags.StringSliceVar(&a.envFiles, "env-file", []string{".env"}, "Environment files to load")
	flags.String("log-level", "info", "Log level (trace, debug, info, warn, error, fatal)")
	flags.String("log-format", "auto", "Log format (auto, json, text)")
	flags.String("log-file", "", "Log file (default: stderr)")
	flags.String("server-url", "http://localhost:8080", "Base URL of the weather-lookup server")
	flags.Duration("client-timeout", client.DefaultTimeout, "Timeout for each request to the server")

	a.bindFlag(rootCmd, "log.level", "log-level")
	a.bindFlag(rootCmd, "log.format", "log-format")
	a.bindFlag(rootCmd, "log.file", "log-file")
	a.bindFlag(rootCmd, "client.server-url", "server-url")
	a.bindFlag(rootCmd, "client.timeout", "client-timeout")

	rootCmd.AddCommand(
		a.newServeCommand(),
		a.newLookupCommand(),
		a.newWeatherCommand(),
		a.newLocationsCommand(),
	)

	return rootCmd
}

// proxyClient builds a client for the configured server.
func (a *app) proxyClient() *client.Client {
	return client.New(a.cfg.Client.ServerURL, client.WithTimeout(a.cfg.Client.Timeout))
}

func (a *app) bindFlag(cmd *cobra.Command, key, flag string) {
	f := cmd.PersistentFlags().Lookup(flag)
	if f == nil {
		f = cmd.Flags().Lookup(flag)
	}
	cobra.CheckErr(a.v.BindPFlag(key, f))
}

// init loads the configuration and sets up logging before any command runs.
func (a *app) init(cmd *cobra.Command) error {
	config.LoadDotEnv(a.envFiles...)

	if err := config.ReadConfigFile(a.v, a.configFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	var out io.Writer = os.Stderr
	// the terminal UI owns the screen
	if cmd.Name() == "lookup" && cfg.Log.File == "" {
		out = io.Discard
	}
	closer, err := logging.InitWithWriter(cfg.Log, out)
	if err != nil {
		return errors.Wrap(err, "failed to initialize logging")
	}
	a.closeLog = closer

	log.Debug().
		Str("config", a.v.ConfigFileUsed()).
		Str("command", cmd.Name()).
		Msg("Loaded configuration")

	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
