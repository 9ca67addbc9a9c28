package core

import (
	"fmt"
	"log"
	"log/slog"
)

// Logger interface for structured logging
// Implementations can provide custom logging behavior (e.g., integration with slog, zap, etc.)
type Logger interface {
	// Debug logs a debug message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an info message with optional fields
	Info(msg string, fields ...Field)

	// Warn logs a warning message with optional fields
	Warn(msg string, fields ...Field)

	// Error logs an error message with optional fields
	Error(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// NopLogger discards everything. This is the default for queues constructed
// without a logger so diagnostic output stays opt-in.
type NopLogger struct{}

func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Warn(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}

// DefaultLogger is a simple logger implementation using the standard log package
type DefaultLogger struct{}

// NewDefaultLogger creates a new DefaultLogger
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{}
}

func (l *DefaultLogger) Debug(msg string, fields ...Field) { l.log("DEBUG", msg, fields...) }
func (l *DefaultLogger) Info(msg string, fields ...Field)  { l.log("INFO", msg, fields...) }
func (l *DefaultLogger) Warn(msg string, fields ...Field)  { l.log("WARN", msg, fields...) }
func (l *DefaultLogger) Error(msg string, fields ...Field) { l.log("ERROR", msg, fields...) }

func (l *DefaultLogger) log(level, msg string, fields ...Field) {
	logMsg := fmt.Sprintf("[%s] %s", level, msg)
	if len(fields) > 0 {
		logMsg += " {"
		for i, f := range fields {
			if i > 0 {
				logMsg += ", "
			}
			logMsg += fmt.Sprintf("%s: %v", f.Key, f.Value)
		}
		logMsg += "}"
	}
	log.Println(logMsg)
}

// SlogLogger adapts a *slog.Logger to the Logger interface.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps the given slog logger; nil falls back to slog.Default().
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{l: l}
}

func (s *SlogLogger) Debug(msg string, fields ...Field) { s.l.Debug(msg, slogArgs(fields)...) }
func (s *SlogLogger) Info(msg string, fields ...Field)  { s.l.Info(msg, slogArgs(fields)...) }
func (s *SlogLogger) Warn(msg string, fields ...Field)  { s.l.Warn(msg, slogArgs(fields)...) }
func (s *SlogLogger) Error(msg string, fields ...Field) { s.l.Error(msg, slogArgs(fields)...) }

func slogArgs(fields []Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return args
}
