// Package tracing exports run and capture spans to an OpenTelemetry collector.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/waftester/dorkshot/pkg/defaults"
	"github.com/waftester/dorkshot/pkg/duration"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Options configures the OTLP exporter.
type Options struct {
	// Endpoint is the OTLP gRPC endpoint (e.g., "localhost:4317").
	// Empty disables export.
	Endpoint string

	// ServiceName is the service name for traces (default: "dorkshot").
	ServiceName string

	// Insecure uses a plaintext connection.
	Insecure bool

	// Headers contains additional headers for the exporter.
	Headers map[string]string

	// ConnectionTimeout bounds exporter setup (default: 10s).
	ConnectionTimeout time.Duration

	// ShutdownTimeout bounds the final flush (default: 5s).
	ShutdownTimeout time.Duration
}

// Provider owns the tracer used for a run.
type Provider struct {
	opts     Options
	provider *sdktrace.TracerProvider // nil when export is disabled
	tracer   trace.Tracer
}

// New creates a provider. With an empty endpoint it returns a provider
// whose spans are discarded.
func New(opts Options) (*Provider, error) {
	if opts.ServiceName == "" {
		opts.ServiceName = defaults.ToolName
	}
	if opts.ConnectionTimeout == 0 {
		opts.ConnectionTimeout = duration.TelemetryConnect
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = duration.TelemetryShutdown
	}
	if opts.Endpoint == "" {
		return &Provider{opts: opts, tracer: Noop()}, nil
	}

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	if len(opts.Headers) > 0 {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithHeaders(opts.Headers))
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectionTimeout)
	defer cancel()
	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	return newWithProcessor(opts, sdktrace.NewBatchSpanProcessor(exporter)), nil
}

func newWithProcessor(opts Options, sp sdktrace.SpanProcessor) *Provider {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(defaults.Version),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	return &Provider{
		opts:     opts,
		provider: tp,
		tracer:   tp.Tracer(defaults.ToolName + "/runner"),
	}
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p != nil && p.provider != nil
}

// Tracer returns the run tracer. A nil provider yields a no-op tracer.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil {
		return Noop()
	}
	return p.tracer
}

// Noop returns a tracer whose spans are discarded.
func Noop() trace.Tracer {
	return noop.NewTracerProvider().Tracer(defaults.ToolName)
}

// Shutdown flushes pending spans, bounded by Options.ShutdownTimeout.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.opts.ShutdownTimeout)
	defer cancel()
	if err := p.provider.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("tracer shutdown: %w", err)
	}
	return nil
}

// StartRun opens the root span of a run.
func StartRun(ctx context.Context, tracer trace.Tracer, runID, target string, captures int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "dorkshot.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.String("target", target),
			attribute.Int("planned_captures", captures),
		),
	)
}

// StartCapture opens a span for one engine/query capture.
func StartCapture(ctx context.Context, tracer trace.Tracer, engine, query, url string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "dorkshot.capture",
		trace.WithAttributes(
			attribute.String("engine", engine),
			attribute.String("query", query),
			attribute.String("url", url),
		),
	)
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
