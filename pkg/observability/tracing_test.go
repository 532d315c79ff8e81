package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ajitpratap0/stockpile/pkg/config"
)

func TestDisabledTracer(t *testing.T) {
	tr, err := NewTracer(config.TracingConfig{}, nil)
	require.NoError(t, err)
	assert.False(t, tr.Enabled())

	ctx, span := tr.StartSpan(context.Background(), "noop")
	span.SetAttribute("key", "value")
	span.End()
	assert.NotNil(t, ctx)
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestStdoutTracerExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	tr, err := NewTracer(config.TracingConfig{
		Enabled:     true,
		Exporter:    ExporterStdout,
		ServiceName: "stockpile-test",
		SampleRate:  1,
	}, &buf)
	require.NoError(t, err)
	assert.True(t, tr.Enabled())

	ctx, span := tr.StartSpan(context.Background(), "pool.configure")
	span.SetAttribute("bindings", 3)
	span.SetAttribute("pool", "arena")
	span.AddEvent("bindings.registered", attribute.Int("keys", 2))
	span.End()

	failure := errors.New("boom")
	err = tr.Trace(ctx, "pool.prewarm", func(context.Context) error { return failure })
	assert.ErrorIs(t, err, failure)

	require.NoError(t, tr.Shutdown(context.Background()))
	out := buf.String()
	assert.Contains(t, out, "pool.configure")
	assert.Contains(t, out, "pool.prewarm")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "arena")
	assert.Contains(t, out, "bindings.registered")
}

func TestNeverSampledSpansAreNotExported(t *testing.T) {
	var buf bytes.Buffer
	tr, err := NewTracer(config.TracingConfig{Enabled: true, Exporter: ExporterStdout, SampleRate: 0}, &buf)
	require.NoError(t, err)

	_, span := tr.StartSpan(context.Background(), "dropped")
	span.End()

	require.NoError(t, tr.Shutdown(context.Background()))
	assert.Empty(t, buf.String())
}

func TestUnknownExporter(t *testing.T) {
	_, err := NewTracer(config.TracingConfig{Enabled: true, Exporter: "jaeger"}, nil)
	require.Error(t, err)
}
