package ecs

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the package-wide logger. Embedding applications that want
// JSON output, a different sink, or a different level should call
// InitLogging before constructing an ECS.
var Logger zerolog.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

// LogConfig configures InitLogging.
type LogConfig struct {
	Level      zerolog.Level
	JSONOutput bool
	Output     io.Writer
}

// InitLogging replaces the package logger. Call it before New if you
// want anything other than human-readable console output on stderr.
func InitLogging(cfg LogConfig) {
	zerolog.SetGlobalLevel(cfg.Level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
		return
	}
	Logger = zerolog.New(zerolog.ConsoleWriter{Out: output}).With().Timestamp().Logger()
}

// withComponent returns a child logger tagged with the package's
// recurring subsystem names, for callers that want consistent fields
// without importing zerolog themselves.
func withComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}
