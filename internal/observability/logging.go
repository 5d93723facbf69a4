package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogFormat selects the slog handler.
type LogFormat string

const (
	FormatText LogFormat = "text"
	FormatJSON LogFormat = "json"
)

// NewLogger returns a logger writing to w. Unknown formats fall back to text.
func NewLogger(w io.Writer, level slog.Level, format LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(string(format), string(FormatJSON)) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// DiscardLogger drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LevelFromEnv reads LOG_LEVEL. Default: INFO.
func LevelFromEnv() slog.Level {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return slog.LevelInfo
	}
	l, err := ParseLogLevel(level)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// ParseLogLevel accepts DEBUG, INFO, WARN, WARNING and ERROR, case-insensitive.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q (expected debug, info, warn or error)", level)
}
