package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Production gets plain JSON on stdout; any
// other environment gets the console writer at debug level.
func New(environment string) zerolog.Logger {
	var logger zerolog.Logger
	if environment == "production" {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	logger = logger.With().
		Timestamp().
		Str("service", "gateway").
		Str("env", environment).
		Logger()

	if environment != "production" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return logger
}
