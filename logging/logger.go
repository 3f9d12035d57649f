// Package logging provides the structured logger used across earthfeed.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger provides structured logging functionality.
type Logger struct {
	internal *slog.Logger
	level    *slog.LevelVar
}

// ParseLevel maps a level name to a slog level. Unknown names are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a text logger writing to w at the named level.
func New(w io.Writer, level string) *Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(ParseLevel(level))

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return &Logger{
		internal: slog.New(handler),
		level:    lvl,
	}
}

// NewJSON creates a JSON logger writing to w, for environments that index
// structured log lines (Lambda / CloudWatch).
func NewJSON(w io.Writer, level string) *Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(ParseLevel(level))

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return &Logger{
		internal: slog.New(handler),
		level:    lvl,
	}
}

// Stderr creates a text logger on standard error.
func Stderr(level string) *Logger {
	return New(os.Stderr, level)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, "error")
}

// SetLevel changes the level at runtime.
func (l *Logger) SetLevel(level string) {
	l.level.Set(ParseLevel(level))
}

// Info logs an info level message.
func (l *Logger) Info(msg string, args ...any) {
	l.internal.Info(msg, args...)
}

// Error logs an error level message.
func (l *Logger) Error(msg string, args ...any) {
	l.internal.Error(msg, args...)
}

// Debug logs a debug level message.
func (l *Logger) Debug(msg string, args ...any) {
	l.internal.Debug(msg, args...)
}

// Warn logs a warning level message.
func (l *Logger) Warn(msg string, args ...any) {
	l.internal.Warn(msg, args...)
}

// With creates a child logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		internal: l.internal.With(args...),
		level:    l.level,
	}
}
