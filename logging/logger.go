// Package logging defines the Logger port the Encode Manager's long-lived
// components use instead of fmt.Fprintf(os.Stderr, ...): leveled,
// structured output fits a component that runs for the process lifetime
// far better than the teacher's one-shot CLI printing.
package logging

import (
	"context"
	"log/slog"
	"os"
)

// Logger is the leveled logging port consumed throughout the manager.
// Debug carries stderr-drain and progress-sample detail (spec §5); Fatal
// marks the "absent Running Entry" inconsistency in the exit handler
// (spec §4.6 step 6) — it logs, it does not terminate the process.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
}

// SlogLogger adapts log/slog to the Logger port. It is the default
// implementation: no structured-logging library appears in any retrieved
// example repo, so this stays on the standard library rather than
// fabricate a dependency the corpus never reaches for.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger returns a Logger backed by a JSON slog.Logger writing to
// os.Stderr, dropping records below level.
func NewSlogLogger(level slog.Level) *SlogLogger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &SlogLogger{logger: slog.New(handler)}
}

func (l *SlogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *SlogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *SlogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *SlogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// Fatal logs at error level with a fatal marker. It intentionally does
// not call os.Exit: spec §4.6 step 6 describes logging a "fatal
// inconsistency" and stopping the exit handler, not killing the process.
func (l *SlogLogger) Fatal(msg string, args ...any) {
	l.logger.Log(context.Background(), slog.LevelError+4, msg, args...)
}

// NopLogger discards everything. Used by tests that don't assert on log
// output.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}
func (NopLogger) Fatal(string, ...any) {}
