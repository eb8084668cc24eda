// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a JSON logger at info level.  In dev (APP_ENV "dev" or
// "development") it logs at debug level through a console writer.
func New(appEnv string) zerolog.Logger {
	return newWithWriter(appEnv, os.Stdout)
}

func newWithWriter(appEnv string, w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if isDev(appEnv) {
		level = zerolog.DebugLevel
	}
	l := zerolog.New(w).Level(level).With().Timestamp().Logger()
	if isDev(appEnv) {
		l = l.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	}
	return l
}

func isDev(env string) bool { return env == "dev" || env == "development" }
