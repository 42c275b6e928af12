// Package logging provides JSON structured logging using zerolog
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects the log level and output rendering
type Config struct {
	Level  string
	Pretty bool
}

// Setup builds the process logger and installs it as the zerolog global.
// Logs go to stderr; stdout belongs to the user-facing command output.
func Setup(config Config) (zerolog.Logger, error) {
	level := zerolog.InfoLevel

	if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return zerolog.Nop(), err
		}
	}

	var output io.Writer = os.Stderr
	if config.Pretty {
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	zerolog.TimeFieldFormat = time.RFC3339

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	log.Logger = logger

	return logger, nil
}
