package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/gpsearch/pkg/errors"
)

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = NewZerologLogger(os.Stderr, LevelInfo)
)

// zerologLogger implements Logger on top of a zerolog.Logger.
type zerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger returns a Logger that writes JSON lines to w.
func NewZerologLogger(w io.Writer, level Level) Logger {
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &zerologLogger{zl: zl}
}

// FromZerolog wraps an existing zerolog.Logger.
func FromZerolog(zl zerolog.Logger) Logger {
	return &zerologLogger{zl: zl}
}

func (l *zerologLogger) Debug(msg string, fields ...any) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *zerologLogger) Info(msg string, fields ...any) {
	emit(l.zl.Info(), msg, fields)
}

func (l *zerologLogger) Warn(msg string, fields ...any) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *zerologLogger) Error(msg string, fields ...any) {
	e := l.zl.Error()
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			e = withError(e, err)
			fields = fields[1:]
		}
	}
	emit(e, msg, fields)
}

func (l *zerologLogger) With(fields ...any) Logger {
	return &zerologLogger{zl: l.zl.With().Fields(pairs(fields)).Logger()}
}

func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return l.zl.GetLevel() <= toZerologLevel(level) && zerolog.GlobalLevel() <= toZerologLevel(level)
}

// emit is a no-op for disabled levels: zerolog hands out a nil *Event then.
func emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	e.Fields(pairs(fields)).Msg(msg)
}

// pairs drops a trailing key without a value.
func pairs(fields []any) []any {
	if len(fields)%2 == 1 {
		return fields[:len(fields)-1]
	}
	return fields
}

// SetupLogger installs the process-wide logger and routes errors.Warn to it.
// When pretty is true the output is zerolog's human-readable console format.
func SetupLogger(loglevel string, w io.Writer, pretty bool) {
	level := ToLogLevel(loglevel)
	if w == nil {
		w = os.Stderr
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	SetLogger(FromZerolog(zl))

	errors.SetZerologWarnFunc(func(warning error) {
		ev := zl.Warn()
		if m, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev = ev.EmbedObject(m)
		}
		ev.Msg(warning.Error())
	})
}

// SetLogger replaces the logger returned by GetLogger.
func SetLogger(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// GetLogger returns the process-wide logger.
func GetLogger() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// GetLoggerWithName returns the process-wide logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	return GetLogger().With(ComponentKey, name)
}

// ParseLevel converts "debug", "info", "warn" or "error" into a Level.
func ParseLevel(level string) (Level, error) {
	switch level {
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.NewValidationError("log_level", "must be one of debug, info, warn, error", level)
	}
}

// ToLogLevel is ParseLevel for callers that have already validated the level.
func ToLogLevel(level string) Level {
	l, err := ParseLevel(level)
	if err != nil {
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
	return l
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
