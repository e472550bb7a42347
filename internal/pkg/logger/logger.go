// Package logger wraps a process-wide zerolog logger. Packages log through
// the helpers here so level and format are decided once, at startup.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel selects the minimum severity that gets emitted.
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
	FatalLevel LogLevel = "fatal"
)

// Config controls the global logger output.
type Config struct {
	Level LogLevel
	// Pretty switches from JSON lines to the human-readable console format.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
}

var global zerolog.Logger

func init() {
	Configure(Config{Level: InfoLevel, Pretty: true})
}

// Configure rebuilds the global logger. Unknown levels fall back to info.
func Configure(config Config) {
	out := config.Output
	if out == nil {
		out = os.Stdout
	}

	level, err := zerolog.ParseLevel(string(config.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var writer io.Writer = out
	if config.Pretty {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	global = zerolog.New(writer).With().Timestamp().Logger()
	log.Logger = global
}

func Debug() *zerolog.Event { return global.Debug() }

func Info() *zerolog.Event { return global.Info() }

func Warn() *zerolog.Event { return global.Warn() }

func Error() *zerolog.Event { return global.Error() }

// Fatal logs and then exits the process.
func Fatal() *zerolog.Event { return global.Fatal() }
