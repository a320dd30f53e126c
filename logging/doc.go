// Package logging provides a minimal logging interface and adapters for the
// agent group orchestrator.
//
// The Logger interface defines the leveled methods (Debug, Info, Warn, Error)
// that the engine, executor and cache use for observability. This package
// includes:
//
//   - Logger interface for dependency injection
//   - GroupLogger over log/slog with request/component attributes
//   - FromSlog to reuse an existing *slog.Logger
//   - Domain helpers (LogAgentExecution, LogOrchestration, LogCacheEvent)
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LevelInfo, "json")
//	eng := engine.New(store, func(o *engine.Options) { o.Logger = logger })
//
// All methods take slog-style alternating key/value arguments.
package logging
