package edgecontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()
	gotCtx, span := NoopTracer{}.StartSpan(ctx, SpanValidateToken)

	assert.Equal(t, ctx, gotCtx)
	assert.IsType(t, NoopSpan{}, span)

	span.SetTag("result", "valid")
	span.Finish()
}

func TestOpenTelemetryTracer(t *testing.T) {
	tracer := NewOpenTelemetryTracer(noop.NewTracerProvider().Tracer("test"))

	ctx, span := tracer.StartSpan(context.Background(), SpanValidateToken)
	assert.NotNil(t, ctx)

	_, ok := span.(*OpenTelemetrySpan)
	assert.True(t, ok, "should return an OpenTelemetrySpan")

	span.SetTag("result", "valid")
	span.SetTag("cached", true)
	span.SetTag("keys", 2)
	span.SetTag("bytes", int64(512))
	span.SetTag("ratio", 0.5)
	span.Finish()
}
