// Package logger builds the charm logger used across flowmend. Logs go to
// stderr so stdout stays free for reports.
package logger

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// ParseLevel maps a level name to a charm level, defaulting to info.
func ParseLevel(name string) log.Level {
	switch strings.ToLower(name) {
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

func New(w io.Writer, level string, json bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(level),
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	if json {
		l.SetFormatter(log.JSONFormatter)
	}
	return l
}

// Discard returns a logger that writes nowhere.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}
