package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestDBTracer_RecordsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tracer := NewDBTracer(tp, SystemName("sqlite3"))

	ctx := tracer.StartSpan(context.Background(), "SELECT id FROM entries")
	assert.NotEmpty(t, TraceID(ctx))
	tracer.EndSpan(ctx, nil)

	ctx = tracer.StartSpan(context.Background(), "  delete FROM entries")
	tracer.EndSpan(ctx, errors.New("boom"))

	spans := rec.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "db SELECT", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), semconv.DBSystemKey.String("sqlite"))

	assert.Equal(t, "db DELETE", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Len(t, spans[1].Events(), 1)
}

func TestTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}

func TestSystemName(t *testing.T) {
	assert.Equal(t, "sqlite", SystemName("sqlite3"))
	assert.Equal(t, "postgresql", SystemName("postgres"))
	assert.Equal(t, "mysql", SystemName("mysql"))
}
