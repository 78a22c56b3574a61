package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// parseLevel converts a string level to log.Level, defaulting to info.
func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// NewLogger creates the structured logger used by the command-line tools.
func NewLogger(level, prefix string) *log.Logger {
	return NewLoggerTo(os.Stderr, level, prefix)
}

// NewLoggerTo is NewLogger with an explicit destination.
func NewLoggerTo(w io.Writer, level, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           parseLevel(level),
		Prefix:          prefix,
		TimeFormat:      time.RFC3339,
		ReportTimestamp: true,
	})
}
