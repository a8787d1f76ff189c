package observability

import (
	"context"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// LogProvider wraps the OpenTelemetry log SDK provider that mirrors the
// evidence ledger's append-only events as otel log records (SPEC_FULL
// §4.3 [NEW]: "each appended event ... is mirrored as an otel log record
// through go.opentelemetry.io/otel/log when an exporter is configured").
type LogProvider struct {
	provider *sdklog.LoggerProvider
	logger   otellog.Logger
}

// InitLogProvider initializes the otel log SDK provider when tracing
// (and therefore an OTLP collector) is configured; it shares the same
// TracingConfig since both ship to the same collector endpoint. Returns a
// LogProvider with a no-op logger when disabled.
func InitLogProvider(ctx context.Context, cfg TracingConfig) (*LogProvider, error) {
	if !cfg.Enabled {
		return &LogProvider{}, nil
	}

	opts := []otlploghttp.Option{
		otlploghttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlploghttp.WithInsecure())
	}

	exporter, err := otlploghttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	)

	return &LogProvider{
		provider: provider,
		logger:   provider.Logger(TracerName),
	}, nil
}

// Logger returns the otel log.Logger to hand to runtime.NewLedger, or nil
// when otel logging is disabled (the ledger then only updates the
// in-memory log and the prometheus counter).
func (lp *LogProvider) Logger() otellog.Logger {
	return lp.logger
}

// Shutdown gracefully shuts down the log provider.
func (lp *LogProvider) Shutdown(ctx context.Context) error {
	if lp.provider != nil {
		return lp.provider.Shutdown(ctx)
	}
	return nil
}
