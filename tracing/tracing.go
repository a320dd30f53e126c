// Package tracing wires OpenTelemetry spans around orchestration and agent
// execution. Spans go to the global TracerProvider, which Setup installs;
// without Setup every span is a no-op.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/hupe1980/agentgroup"

// Span attribute keys.
const (
	AttrRequestID = "agentgroup.request_id"
	AttrGroupID   = "agentgroup.group_id"
	AttrTier      = "agentgroup.tier"
	AttrAgentKey  = "agentgroup.agent.key"
	AttrAgentID   = "agentgroup.agent.id"
	AttrModel     = "agentgroup.agent.model"
	AttrStatus    = "agentgroup.agent.status"
	AttrCached    = "agentgroup.agent.cached"
	AttrRequested = "agentgroup.agents.requested"
	AttrExecuted  = "agentgroup.agents.executed"
	AttrReason    = "agentgroup.skip_reason"
)

// Config selects the span exporter.
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // "stdout" or "noop"
	// Writer receives stdout exporter output; defaults to os.Stderr so
	// spans never interleave with command output.
	Writer io.Writer `yaml:"-"`
}

// Setup initializes OpenTelemetry tracing and returns a shutdown function.
// When cfg.Enabled is false, a noop TracerProvider is used.
func Setup(_ context.Context, cfg Config) (func(context.Context) error, error) {
	noopShutdown := func(context.Context) error { return nil }

	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return noopShutdown, nil
	}

	var exporter sdktrace.SpanExporter
	switch cfg.Exporter {
	case "stdout":
		w := cfg.Writer
		if w == nil {
			w = os.Stderr
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout exporter: %w", err)
		}
		exporter = exp
	case "noop", "":
		otel.SetTracerProvider(noop.NewTracerProvider())
		return noopShutdown, nil
	default:
		return nil, fmt.Errorf("unsupported exporter: %s", cfg.Exporter)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// StartSpan starts a named span on the module tracer.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the span and sets error status.
func RecordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetOK sets the span status to OK.
func SetOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// String is a convenience for attribute.String.
func String(key, value string) attribute.KeyValue { return attribute.String(key, value) }

// Int is a convenience for attribute.Int.
func Int(key string, value int) attribute.KeyValue { return attribute.Int(key, value) }

// Bool is a convenience for attribute.Bool.
func Bool(key string, value bool) attribute.KeyValue { return attribute.Bool(key, value) }
