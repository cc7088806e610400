package core

import (
	"fmt"
	"log/slog"
	"os"
)

// Logger is a thin wrapper over log/slog that accepts an identifying
// object (anything with a String method) as the first argument to every
// call, the way the teacher's fw/core.Log does for every component in
// the forwarding path.
type Logger struct {
	inner *slog.Logger
}

// Log is the package-wide logger every component logs through, mirroring
// the teacher's package-level core.Log.
var Log = NewLogger(slog.LevelInfo)

// NewLogger builds a Logger writing text-formatted records to stderr at
// the given minimum level.
func NewLogger(level slog.Level) *Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{inner: slog.New(h)}
}

// SetLevel replaces the package-wide logger's minimum level.
func SetLevel(level slog.Level) {
	Log = NewLogger(level)
}

func (l *Logger) with(who fmt.Stringer) *slog.Logger {
	return l.inner.With("component", who.String())
}

// Trace logs at debug level prefixed with the caller's identity; slog has
// no trace level, so this maps onto Debug-1 conceptually but uses Debug
// in practice.
func (l *Logger) Trace(who fmt.Stringer, msg string, kv ...any) {
	l.with(who).Debug(msg, kv...)
}

// Debug logs a debug-level message identified by who.
func (l *Logger) Debug(who fmt.Stringer, msg string, kv ...any) {
	l.with(who).Debug(msg, kv...)
}

// Info logs an info-level message identified by who.
func (l *Logger) Info(who fmt.Stringer, msg string, kv ...any) {
	l.with(who).Info(msg, kv...)
}

// Warn logs a warn-level message identified by who.
func (l *Logger) Warn(who fmt.Stringer, msg string, kv ...any) {
	l.with(who).Warn(msg, kv...)
}

// Error logs an error-level message identified by who.
func (l *Logger) Error(who fmt.Stringer, msg string, kv ...any) {
	l.with(who).Error(msg, kv...)
}

// Fatal logs at error level then terminates the process, matching the
// teacher's Fatal semantics used for unrecoverable startup failures.
func (l *Logger) Fatal(who fmt.Stringer, msg string, kv ...any) {
	l.with(who).Error(msg, kv...)
	os.Exit(1)
}
