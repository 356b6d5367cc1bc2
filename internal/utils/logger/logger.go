// Package logger provides a global logger for the application
package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// Init initializes the global zerolog logger with console output.
// The level comes from LOG_LEVEL when set, otherwise from ENVIRONMENT
// (dev/test get trace, everything else info).
//
// Example usage:
//
//	logger.Init() <- inside whichever main() function in your entrypoint
func Init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()

	logLevel := zerolog.InfoLevel
	switch strings.ToLower(os.Getenv("ENVIRONMENT")) {
	case "dev", "test":
		logLevel = zerolog.TraceLevel
	}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(lvl))
		if err != nil {
			log.Warn().Str("level", lvl).Msg("unknown LOG_LEVEL, keeping environment default")
		} else {
			logLevel = parsed
		}
	}

	zerolog.SetGlobalLevel(logLevel)
	log.Debug().Str("level", logLevel.String()).Msg("logger initialized")
}

// Stage returns a child logger tagged with the pipeline stage name. The
// original implementation tracked nesting with a thread-local indentation
// counter; a scoped field carries the same information without global state.
func Stage(name string) zerolog.Logger {
	return log.With().Str("stage", name).Logger()
}
