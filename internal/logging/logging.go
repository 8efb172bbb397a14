package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup returns a stderr logger in the requested format: "text" for a
// human-friendly console, anything else for JSON lines.
func Setup(format string) zerolog.Logger {
	return New(os.Stderr, format)
}

// New is Setup with an explicit destination.
func New(w io.Writer, format string) zerolog.Logger {
	if format == "text" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// WithLevel parses level ("debug", "info", ...) and applies it to log.
// An empty level leaves log unchanged.
func WithLevel(log zerolog.Logger, level string) (zerolog.Logger, error) {
	if level == "" {
		return log, nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return log, err
	}
	return log.Level(lvl), nil
}
