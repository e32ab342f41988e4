// Package log provides a structured logging interface for gpsearch.
//
// The interface is slog-compatible in shape (Debug/Info/Warn/Error with
// key-value fields) and is backed by zerolog by default. Library packages
// depend only on the Logger interface so tests can capture output with
// NewTestLogger.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("search").With(
//	    log.TrialsKey, 9,
//	)
//	logger.Info("trial finished",
//	    log.TrialKey, 3,
//	    log.LengthScaleKey, 1.0,
//	    log.SigmaKey, 0.1,
//	    log.MetricValueKey, 0.0123,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// The With method returns a child logger with pre-populated fields, so a
// trial-scoped logger can carry its hyperparameters on every line.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If the first field is an error it is attached as the "error" field,
	// together with its stack trace when one was recorded.
	//
	//   logger.Error("trial failed",
	//       err,
	//       log.TrialKey, 4,
	//   )
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	// Use it to skip building expensive fields for disabled levels.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider defines an interface for creating and configuring loggers.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger with a specific name/component identifier.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
