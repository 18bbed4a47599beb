// Package telemetry configures OpenTelemetry tracing for the CLI.
//
// Packages create spans through the global tracer provider. Until [Setup]
// installs an SDK provider, those spans are no-ops.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ServiceName is reported as the service.name resource attribute.
const ServiceName = "gitprof"

// ErrSetup is returned when the tracer provider cannot be created.
var ErrSetup = errors.New("set up tracing")

// ShutdownFunc flushes and stops a tracer provider.
type ShutdownFunc func(ctx context.Context) error

// Option configures [NewTracerProvider].
type Option func(*options)

type options struct {
	exporter sdktrace.SpanExporter
	version  string
	sync     bool
}

// WithExporter replaces the OTLP exporter.
func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(o *options) {
		o.exporter = exp
	}
}

// WithVersion sets the service.version resource attribute.
func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

// WithSyncExport exports each span as it ends instead of batching.
func WithSyncExport() Option {
	return func(o *options) {
		o.sync = true
	}
}

// NewTracerProvider creates an SDK tracer provider exporting to the OTLP/gRPC
// endpoint. The endpoint is either host:port, which connects without TLS, or
// a URL.
func NewTracerProvider(ctx context.Context, endpoint string, opts ...Option) (*sdktrace.TracerProvider, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	exp := o.exporter
	if exp == nil {
		var err error

		exp, err = otlptracegrpc.New(ctx, endpointOptions(endpoint)...)
		if err != nil {
			return nil, fmt.Errorf("%w: create exporter: %w", ErrSetup, err)
		}
	}

	attrs := []attribute.KeyValue{attribute.String("service.name", ServiceName)}
	if o.version != "" {
		attrs = append(attrs, attribute.String("service.version", o.version))
	}

	processor := sdktrace.WithBatcher(exp)
	if o.sync {
		processor = sdktrace.WithSyncer(exp)
	}

	return sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(resource.NewSchemaless(attrs...)),
	), nil
}

// Setup installs a global tracer provider exporting to endpoint. With an
// empty endpoint it does nothing and returns a no-op [ShutdownFunc].
func Setup(ctx context.Context, endpoint string, opts ...Option) (ShutdownFunc, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	tp, err := NewTracerProvider(ctx, endpoint, opts...)
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

func endpointOptions(endpoint string) []otlptracegrpc.Option {
	if strings.Contains(endpoint, "://") {
		return []otlptracegrpc.Option{otlptracegrpc.WithEndpointURL(endpoint)}
	}

	return []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	}
}
