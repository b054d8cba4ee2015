package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a configuration string to a LogLevel, defaulting to info.
func ParseLevel(s string) LogLevel {
	switch s {
	case "debug", "DEBUG":
		return LogLevelDebug
	case "warn", "WARN":
		return LogLevelWarn
	case "error", "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger defines the minimal logging interface for Cyrus. This allows users
// to provide their own logger implementation or use the built-in adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewSlogLogger builds a Logger writing structured records at the given
// level. format is "json" or "text".
func NewSlogLogger(level LogLevel, format string, addSource bool) Logger {
	return NewSlogLoggerTo(os.Stdout, level, format, addSource)
}

// NewSlogLoggerTo is NewSlogLogger with an explicit output writer.
func NewSlogLoggerTo(w io.Writer, level LogLevel, format string, addSource bool) Logger {
	opts := &slog.HandlerOptions{Level: slogLevel(level), AddSource: addSource}
	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return NewSlogAdapter(slog.New(handler))
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SessionLogger wraps a slog.Logger adding contextual cloning helpers and
// domain convenience methods. It is cheap to copy via With* methods.
type SessionLogger struct {
	logger       *slog.Logger
	component    string
	sessionKey   string
	invocationID string
}

// NewSessionLogger wraps an slog logger for contextual session logging.
func NewSessionLogger(logger *slog.Logger) *SessionLogger {
	return &SessionLogger{logger: logger}
}

// WithComponent sets the logical component (bus, engine, runner, sink, team).
func (l *SessionLogger) WithComponent(c string) *SessionLogger {
	nl := *l
	nl.component = c
	return &nl
}

// WithSession attaches session key and invocation identifiers.
func (l *SessionLogger) WithSession(key, invocationID string) *SessionLogger {
	nl := *l
	nl.sessionKey = key
	nl.invocationID = invocationID
	return &nl
}

func (l *SessionLogger) attrs(extra ...slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(extra)+3)
	if l.component != "" {
		out = append(out, slog.String("component", l.component))
	}
	if l.sessionKey != "" {
		out = append(out, slog.String("session_key", l.sessionKey))
	}
	if l.invocationID != "" {
		out = append(out, slog.String("invocation_id", l.invocationID))
	}
	return append(out, extra...)
}

func (l *SessionLogger) log(level slog.Level, msg string, args ...any) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.logger.LogAttrs(context.Background(), level, msg, l.attrs()...)
}

// Debug logs at debug level.
func (l *SessionLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }

// Info logs at info level.
func (l *SessionLogger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args...) }

// Warn logs at warn level.
func (l *SessionLogger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, msg, args...) }

// Error logs at error level.
func (l *SessionLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

// LogTransition records a lifecycle transition outcome for a session.
func (l *SessionLogger) LogTransition(event string, from, to string, err error) {
	attrs := l.attrs(slog.String("event", event), slog.String("from", from), slog.String("to", to))
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		l.logger.LogAttrs(context.Background(), slog.LevelWarn, "Transition rejected", attrs...)
		return
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "Transition applied", attrs...)
}

// LogRunnerInvocation records duration and outcome of one runner invocation.
func (l *SessionLogger) LogRunnerInvocation(runner string, dur time.Duration, success bool, err error) {
	attrs := l.attrs(slog.String("runner", runner), slog.Duration("duration", dur), slog.Bool("success", success))
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	level := slog.LevelInfo
	msg := "Runner invocation completed"
	if !success {
		level = slog.LevelError
		msg = "Runner invocation failed"
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogActivityPost records the outcome of posting one activity to a platform.
func (l *SessionLogger) LogActivityPost(ref string, kind string, err error) {
	attrs := l.attrs(slog.String("platform_ref", ref), slog.String("activity_kind", kind))
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		l.logger.LogAttrs(context.Background(), slog.LevelWarn, "Activity post failed", attrs...)
		return
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "Activity posted", attrs...)
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
