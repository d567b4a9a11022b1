// Package logging builds the console logger shared by the arxos commands.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Environment overrides applied by New.
const (
	EnvLevel   = "ARXOS_LOG_LEVEL"
	EnvNoColor = "ARXOS_LOG_NOCOLOR"
)

// New returns a human-readable logger writing to w at level. ARXOS_LOG_LEVEL
// replaces level when it names a valid zerolog level, and any non-empty
// ARXOS_LOG_NOCOLOR disables ANSI colors.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	if env := strings.TrimSpace(os.Getenv(EnvLevel)); env != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(env)); err == nil {
			level = parsed
		}
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    os.Getenv(EnvNoColor) != "",
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "arxos").Logger()
}

// Verbosity maps the --verbose flag onto a level, never raising it above
// the configured one.
func Verbosity(configured zerolog.Level, verbose bool) zerolog.Level {
	if verbose && configured > zerolog.DebugLevel {
		return zerolog.DebugLevel
	}
	return configured
}
