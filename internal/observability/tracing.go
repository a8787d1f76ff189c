// Package observability provides OpenTelemetry tracing and logging utilities.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the name of the tracer used for command spans.
	TracerName = "redikv"

	// FramePreflightSpanName is the span name used when a frame is rejected
	// before a command name could even be parsed out of it.
	FramePreflightSpanName = "frame"
)

// TracingConfig contains configuration for OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string  // OTLP endpoint (e.g., "localhost:4317")
	ServiceName string  // Service name for traces
	SampleRate  float64 // Sampling rate (0.0 to 1.0)
	Insecure    bool    // Use insecure connection (no TLS)
}

// DefaultTracingConfig returns sensible defaults.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		Enabled:     false,
		Endpoint:    "localhost:4317",
		ServiceName: "redikv",
		SampleRate:  1.0,
		Insecure:    true,
	}
}

// TracerProvider wraps the OpenTelemetry tracer provider.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// InitTracing initializes OpenTelemetry tracing.
func InitTracing(ctx context.Context, cfg TracingConfig) (*TracerProvider, error) {
	if !cfg.Enabled {
		// Return a no-op tracer when disabled
		return &TracerProvider{
			tracer: otel.Tracer(TracerName),
		}, nil
	}

	// Create OTLP exporter
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	// Create resource with service information
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion("0.1.0"),
		),
	)
	if err != nil {
		return nil, err
	}

	// Create sampler based on sample rate
	var sampler sdktrace.Sampler
	if cfg.SampleRate >= 1.0 {
		sampler = sdktrace.AlwaysSample()
	} else if cfg.SampleRate <= 0.0 {
		sampler = sdktrace.NeverSample()
	} else {
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	// Create tracer provider
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	// Set global tracer provider and propagator
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracerProvider{
		provider: provider,
		tracer:   provider.Tracer(TracerName),
	}, nil
}

// Tracer returns the tracer instance.
func (tp *TracerProvider) Tracer() trace.Tracer {
	return tp.tracer
}

// Shutdown gracefully shuts down the tracer provider.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider != nil {
		return tp.provider.Shutdown(ctx)
	}
	return nil
}

// CommandSpanAttributes carries the governance metadata every dispatched
// frame contributes to its span, on top of the command name itself.
type CommandSpanAttributes struct {
	DecisionAction string // e.g. "FailClosed", "BoundedDefense"
	DriftSeverity  string // e.g. "S0", "S1", "S2"
	ConnectionID   string
}

// StartCommandSpan starts a span for one dispatched RESP frame. The span
// name is the canonical command (e.g. "SET", "EXEC") or FramePreflightSpanName
// when the frame was rejected before a command could be parsed out of it.
func StartCommandSpan(ctx context.Context, tracer trace.Tracer, command string, attrs CommandSpanAttributes) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, command,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("redikv.command", command),
		),
	)

	if attrs.DecisionAction != "" {
		span.SetAttributes(attribute.String("redikv.decision_action", attrs.DecisionAction))
	}
	if attrs.DriftSeverity != "" {
		span.SetAttributes(attribute.String("redikv.drift_severity", attrs.DriftSeverity))
	}
	if attrs.ConnectionID != "" {
		span.SetAttributes(attribute.String("redikv.conn_id", attrs.ConnectionID))
	}

	return ctx, span
}

// ReplyClass buckets a RESP reply for the span attribute recorded once
// dispatch finishes: "ok", "error", or "queued" (inside MULTI).
type ReplyClass string

const (
	ReplyOK     ReplyClass = "ok"
	ReplyError  ReplyClass = "error"
	ReplyQueued ReplyClass = "queued"
)

// RecordCommandResult records the outcome of a dispatched frame on its span.
func RecordCommandResult(span trace.Span, class ReplyClass) {
	span.SetAttributes(attribute.String("redikv.reply_class", string(class)))
	if class == ReplyError {
		span.SetAttributes(attribute.Bool("error", true))
	}
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetAttributes(attribute.Bool("error", true))
}

// SpanFromContext extracts the current span from context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// ContextWithTimeout creates a context with timeout and propagates trace context.
func ContextWithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}
