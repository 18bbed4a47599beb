package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/macropower/gitprof/pkg/telemetry"
)

func TestSetup_NoEndpoint(t *testing.T) {
	t.Parallel()

	shutdown, err := telemetry.Setup(t.Context(), "")
	require.NoError(t, err)
	require.NoError(t, shutdown(t.Context()))
}

func TestNewTracerProvider(t *testing.T) {
	t.Parallel()

	exp := tracetest.NewInMemoryExporter()

	tp, err := telemetry.NewTracerProvider(t.Context(), "localhost:4317",
		telemetry.WithExporter(exp),
		telemetry.WithVersion("v1.2.3"),
		telemetry.WithSyncExport(),
	)
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(t.Context(), "DetectAll")
	span.End()

	require.NoError(t, tp.Shutdown(t.Context()))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "DetectAll", spans[0].Name)

	attrs := spans[0].Resource.Attributes()
	assert.Contains(t, attrs, attribute.String("service.name", telemetry.ServiceName))
	assert.Contains(t, attrs, attribute.String("service.version", "v1.2.3"))
}

func TestNewTracerProvider_OTLP(t *testing.T) {
	t.Parallel()

	for _, endpoint := range []string{"localhost:4317", "http://localhost:4317"} {
		tp, err := telemetry.NewTracerProvider(t.Context(), endpoint)
		require.NoError(t, err)
		assert.NotNil(t, tp)

		t.Cleanup(func() {
			_ = tp.Shutdown(context.Background())
		})
	}
}
