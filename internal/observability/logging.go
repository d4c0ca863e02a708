// Package observability provides the structured logging used across the
// gateway, runner, and provider adapters: a thin wrapper over log/slog
// that attaches session/tool correlation fields from a context.Context.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ContextKey is the type for context keys used in logging.
type ContextKey string

const (
	// SessionIDKey is the context key for a session id.
	SessionIDKey ContextKey = "session_id"
	// ToolUseIDKey is the context key for an in-flight tool call id.
	ToolUseIDKey ContextKey = "tool_use_id"
)

// Config configures the logging behavior.
type Config struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to "info".
	Level string

	// Format is "json" or "text". Defaults to "json".
	Format string

	// Output is the writer for log output; defaults to os.Stdout.
	Output io.Writer

	// AddSource includes file and line number in log records.
	AddSource bool
}

// Logger wraps slog.Logger with session/tool correlation pulled from a
// context.Context.
type Logger struct {
	logger *slog.Logger
}

// NewLogger builds a Logger per config, applying defaults for any zero
// fields.
func NewLogger(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	var level slog.Level
	switch strings.ToLower(config.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: config.AddSource}

	var handler slog.Handler
	if strings.ToLower(config.Format) == "text" {
		handler = slog.NewTextHandler(config.Output, opts)
	} else {
		handler = slog.NewJSONHandler(config.Output, opts)
	}

	return &Logger{logger: slog.New(handler)}
}

// WithContext returns a Logger that attaches session_id/tool_use_id
// fields present on ctx to every subsequent record.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	var attrs []any
	if sessionID, ok := ctx.Value(SessionIDKey).(string); ok && sessionID != "" {
		attrs = append(attrs, "session_id", sessionID)
	}
	if toolUseID, ok := ctx.Value(ToolUseIDKey).(string); ok && toolUseID != "" {
		attrs = append(attrs, "tool_use_id", toolUseID)
	}
	if len(attrs) == 0 {
		return l
	}
	return &Logger{logger: l.logger.With(attrs...)}
}

func (l *Logger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// WithSession returns ctx annotated with a session id for later
// correlation via WithContext.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// WithToolUse returns ctx annotated with a tool_use_id for later
// correlation via WithContext.
func WithToolUse(ctx context.Context, toolUseID string) context.Context {
	return context.WithValue(ctx, ToolUseIDKey, toolUseID)
}
