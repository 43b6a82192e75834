// Package logging builds the zerolog logger used across ua-utils.
package logging

import (
	"io"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Config selects the level and destination for a logger.
type Config struct {
	Level   string
	Verbose bool
	Out     io.Writer
	// NoColor disables ANSI colors, used when Out is not a terminal.
	NoColor bool
}

// New returns a console logger writing to cfg.Out. An unparsable level falls
// back to info; Verbose forces debug.
func New(cfg Config) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}
	if cfg.Verbose {
		lvl = zerolog.DebugLevel
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        cfg.Out,
		TimeFormat: time.RFC3339,
		NoColor:    cfg.NoColor,
	}

	return zerolog.New(consoleWriter).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// NewRunID returns a sortable identifier for one command invocation.
func NewRunID() string {
	return ulid.Make().String()
}

// WithRun tags every event of logger with the run id and command name.
func WithRun(logger zerolog.Logger, runID, command string) zerolog.Logger {
	return logger.With().
		Str("run_id", runID).
		Str("command", command).
		Logger()
}
