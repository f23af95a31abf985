// Package logging provides the process-wide zerolog logger, configured
// once and shared by every package instead of each constructing its own.
package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Get returns the shared logger, initializing it on first call from the
// AGENTCORE_LOG_LEVEL environment variable (default "info").
func Get() zerolog.Logger {
	once.Do(func() {
		level := parseLevel(os.Getenv("AGENTCORE_LOG_LEVEL"))
		writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		logger = zerolog.New(writer).Level(level).With().Timestamp().Logger()
	})
	return logger
}

func parseLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "trace":
		return zerolog.TraceLevel
	case "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetForTest replaces the shared logger for the duration of a test,
// returning a restore function.
func SetForTest(l zerolog.Logger) func() {
	prev := logger
	logger = l
	return func() { logger = prev }
}
