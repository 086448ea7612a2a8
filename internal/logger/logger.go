package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Global logger instance. Silent until Initialize runs.
	Logger = zerolog.New(io.Discard)

	// output is where every component logger writes; swapped by Initialize
	output io.Writer = io.Discard
)

// Initialize sets up the global logger with a console writer and the requested level.
// Extra writers, such as a log file, receive the JSON events unformatted.
func Initialize(logLevel string, extra ...io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    false,
	}

	var writer io.Writer = consoleWriter
	if len(extra) > 0 {
		writers := append([]io.Writer{consoleWriter}, extra...)
		writer = zerolog.MultiLevelWriter(writers...)
	}

	output = writer
	Logger = zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()

	zerolog.SetGlobalLevel(ParseLevel(logLevel))

	// Replace standard log with zerolog
	log.Logger = Logger
}

// ParseLevel maps a LOG_LEVEL string to a zerolog level, defaulting to info
func ParseLevel(logLevel string) zerolog.Level {
	switch logLevel {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// GetForComponent returns a logger with a component field for better filtering.
// Component loggers are usually created at package init, before Initialize runs,
// so they write through the shared output rather than capturing it.
func GetForComponent(component string) zerolog.Logger {
	return zerolog.New(sharedWriter{}).With().Timestamp().Str("component", component).Logger()
}

type sharedWriter struct{}

func (sharedWriter) Write(p []byte) (int, error) {
	return output.Write(p)
}

// FileWriter returns a writer to a log file for optional use alongside console logging
func FileWriter(path string) (io.Writer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}
	return file, nil
}
