// Package logger configures the process-wide structured logger.
// Components receive a *slog.Logger by injection; only the CLI entrypoint
// calls Setup.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup builds a text slog.Logger writing to stderr at the given level
// ("debug", "info", "warn", "error"; unknown values fall back to info).
func Setup(level string) *slog.Logger {
	return New(os.Stderr, level)
}

// New builds a logger writing to w. Useful for tests.
func New(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// Discard returns a logger that drops everything. Useful as a default for
// components constructed without one.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
