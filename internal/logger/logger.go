package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup configures zerolog and returns the root logger.
//   - level: trace, debug, info, warn, error, fatal, panic or disabled
//   - format: "json" for machine output, "pretty" for a human-readable console
func Setup(level, format string) zerolog.Logger {
	return New(os.Stderr, level, format)
}

// New builds a logger writing to out; Setup uses stderr so stdout stays free for the quiz.
func New(out io.Writer, level, format string) zerolog.Logger {
	writer := out
	if format == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()
}
