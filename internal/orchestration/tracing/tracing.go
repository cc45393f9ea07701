// Package tracing configures the OpenTelemetry tracer used for workflow runs.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/brainstorm/internal/config"
)

// ServiceName identifies spans from this tool.
const ServiceName = "brainstorm"

// TracerName is the instrumentation scope of workflow spans.
const TracerName = "github.com/zjrosen/brainstorm/internal/orchestration/workflow"

// ShutdownFunc flushes and stops the provider.
type ShutdownFunc func(context.Context) error

// Option configures Setup.
type Option func(*options)

type options struct {
	exporter sdktrace.SpanExporter
	stdout   io.Writer
	version  string
}

// WithExporter overrides the configured exporter. Spans are exported
// synchronously as they end.
func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(o *options) { o.exporter = exp }
}

// WithStdoutWriter redirects the stdout exporter.
func WithStdoutWriter(w io.Writer) Option {
	return func(o *options) { o.stdout = w }
}

// WithVersion sets the service.version resource attribute.
func WithVersion(v string) Option {
	return func(o *options) { o.version = v }
}

// Setup returns a tracer for cfg. With the none exporter, and no override,
// the tracer is a no-op and shutdown does nothing.
func Setup(ctx context.Context, cfg config.TracingConfig, opts ...Option) (trace.Tracer, ShutdownFunc, error) {
	o := options{stdout: os.Stderr, version: "dev"}
	for _, opt := range opts {
		opt(&o)
	}

	exporter := o.exporter
	if exporter == nil {
		var err error
		exporter, err = newExporter(ctx, cfg, o.stdout)
		if err != nil {
			return nil, nil, err
		}
	}
	if exporter == nil {
		return noop.NewTracerProvider().Tracer(TracerName), func(context.Context) error { return nil }, nil
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", ServiceName),
		attribute.String("service.version", o.version),
	)

	processor := sdktrace.WithBatcher(exporter)
	if o.exporter != nil {
		processor = sdktrace.WithSyncer(exporter)
	}

	tp := sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	return tp.Tracer(TracerName), tp.Shutdown, nil
}

func newExporter(ctx context.Context, cfg config.TracingConfig, stdout io.Writer) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "", config.ExporterNone:
		return nil, nil
	case config.ExporterStdout:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(stdout), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("creating stdout trace exporter: %w", err)
		}
		return exp, nil
	case config.ExporterOTLP:
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("creating otlp trace exporter: %w", err)
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}
}
