package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Levels accepted by LoggerConfig.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// ParseLevel maps debug, info, warn or error (case-insensitive) onto a
// slog level. Unknown values yield LevelInfo and an error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger is the leveled, key/value logging surface used across the module.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// LoggerConfig configures NewLogger.
type LoggerConfig struct {
	Level     slog.Level
	Format    string    // "json" (default) or "text"
	Output    io.Writer // Defaults to os.Stderr
	AddSource bool
	Component string
}

// GroupLogger is a slog-backed Logger that carries request scoped
// attributes. With* methods return a new logger and leave the receiver as is.
type GroupLogger struct {
	logger *slog.Logger
}

// NewLogger builds a GroupLogger from cfg. A nil cfg logs JSON at info
// level to stderr.
func NewLogger(cfg *LoggerConfig) *GroupLogger {
	if cfg == nil {
		cfg = &LoggerConfig{Level: LevelInfo}
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	var handler slog.Handler = slog.NewJSONHandler(out, opts)
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	}
	l := FromSlog(slog.New(handler))
	if cfg.Component != "" {
		l = l.WithComponent(cfg.Component)
	}
	return l
}

// NewSlogLogger is shorthand for NewLogger writing to stderr.
func NewSlogLogger(level slog.Level, format string) *GroupLogger {
	return NewLogger(&LoggerConfig{Level: level, Format: format})
}

// FromSlog wraps an existing *slog.Logger.
func FromSlog(l *slog.Logger) *GroupLogger {
	if l == nil {
		l = slog.Default()
	}
	return &GroupLogger{logger: l}
}

// With returns a logger that adds args to every record.
func (l *GroupLogger) With(args ...any) *GroupLogger {
	return &GroupLogger{logger: l.logger.With(args...)}
}

// WithComponent tags records with a logical component (engine, cache, cli).
func (l *GroupLogger) WithComponent(c string) *GroupLogger { return l.With("component", c) }

// WithRequest tags records with the orchestration request and group.
func (l *GroupLogger) WithRequest(requestID, groupID string) *GroupLogger {
	return l.With("request_id", requestID, "group_id", groupID)
}

// Slog returns the underlying *slog.Logger.
func (l *GroupLogger) Slog() *slog.Logger { return l.logger }

// Debug implements Logger.
func (l *GroupLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }

// Info implements Logger.
func (l *GroupLogger) Info(msg string, args ...any) { l.logger.Info(msg, args...) }

// Warn implements Logger.
func (l *GroupLogger) Warn(msg string, args ...any) { l.logger.Warn(msg, args...) }

// Error implements Logger.
func (l *GroupLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// LogAgentExecution records the outcome of one agent run on any Logger.
func LogAgentExecution(l Logger, agentKey, model, status string, dur time.Duration, cached bool, err error) {
	args := []any{"agent", agentKey, "model", model, "status", status, "duration", dur, "cached", cached}
	if err != nil {
		args = append(args, "error", err.Error())
		l.Warn("Agent execution failed", args...)
		return
	}
	l.Info("Agent execution completed", args...)
}

// LogOrchestration records aggregate orchestration metrics.
func LogOrchestration(l Logger, requested, executed, succeeded int, dur time.Duration, reason string) {
	l.Info("Orchestration completed",
		"agents_requested", requested,
		"agents_executed", executed,
		"agents_succeeded", succeeded,
		"duration", dur,
		"skip_reason", reason,
	)
}

// LogCacheEvent records a cache hit, miss, write or sweep.
func LogCacheEvent(l Logger, event, agentID string, entries int) {
	l.Debug("Cache "+event, "agent_id", agentID, "entries", entries)
}

// StartTimer returns a closure that logs the elapsed duration when invoked.
func StartTimer(l Logger, op string) func() {
	start := time.Now()
	return func() { l.Debug("Operation completed", "operation", op, "duration", time.Since(start)) }
}

// NoOpLogger discards everything. It is the default wherever a Logger is optional.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...any) {}
func (NoOpLogger) Info(string, ...any) {}
func (NoOpLogger) Warn(string, ...any) {}
func (NoOpLogger) Error(string, ...any) {}

var (
	_ Logger = (*GroupLogger)(nil)
	_ Logger = NoOpLogger{}
)
