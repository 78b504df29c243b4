// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"

	"weather-lookup/config"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitWithWriter points the global logger at out (or cfg.File) and sets the global
// level. It returns a closer for the log file, which is a no-op otherwise. The TUI
// passes io.Discard so log lines do not tear through the screen.
func InitWithWriter(cfg config.LogConfig, out io.Writer) (func() error, error) {
	closer := func() error { return nil }

	var logWriter io.Writer = out
	isTerminal := false
	if f, ok := out.(*os.File); ok {
		isTerminal = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return closer, errors.Wrapf(err, "failed to open log file %s", cfg.File)
		}
		logWriter = f
		isTerminal = false
		closer = f.Close
	}

	switch strings.ToLower(cfg.Format) {
	case "text":
		logWriter = zerolog.ConsoleWriter{Out: logWriter, NoColor: !isTerminal}
	case "auto", "":
		if isTerminal {
			logWriter = zerolog.ConsoleWriter{Out: logWriter}
		}
	}

	log.Logger = zerolog.New(logWriter).With().Timestamp().Logger()

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	return closer, nil
}
