package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dillanmilo/railcore/internal/version"
)

// New returns the process logger. Development gets a console writer at debug
// level; every other environment logs JSON at info level.
func New(appEnv string) zerolog.Logger {
	return NewWithWriter(os.Stdout, appEnv)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, appEnv string) zerolog.Logger {
	switch strings.ToLower(strings.TrimSpace(appEnv)) {
	case "development", "dev":
		cw := zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
			cw.Out = w
			cw.TimeFormat = "15:04:05"
		})
		return zerolog.New(cw).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}
	return zerolog.New(w).Level(zerolog.InfoLevel).With().
		Timestamp().
		Str("service", "railcore").
		Str("version", version.String()).
		Logger()
}

// For derives a sub-logger tagged with a component name.
func For(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}

// Nop returns a disabled logger, useful for tests.
func Nop() zerolog.Logger {
	return zerolog.New(io.Discard)
}
