package ecs

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var baseLogger = zerolog.New(zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.RFC3339,
}).With().Timestamp().Logger()

// Logger returns a sub-logger tagged with the given component name.
func Logger(component string) zerolog.Logger {
	return baseLogger.With().Str("component", component).Logger()
}

// SetLogOutput replaces the writer used by every logger created afterwards.
func SetLogOutput(l zerolog.Logger) {
	baseLogger = l
}

// SetLogLevel sets the global log level. Unknown levels fall back to info.
func SetLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
