// Package tracing sets up OpenTelemetry tracing for the service and adapts it
// to the db hook chain.
package tracing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Skryldev/entry-catalog/db"
)

const instrumentationName = "github.com/Skryldev/entry-catalog"

// Setup installs a global tracer provider exporting over OTLP/gRPC to
// endpoint, along with the W3C trace-context propagator. The returned
// function flushes and stops the provider.
func Setup(ctx context.Context, endpoint, serviceName string) (func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := []otlptracegrpc.Option{otlptracegrpc.WithInsecure()}
	if strings.Contains(endpoint, "://") {
		opts = append(opts, otlptracegrpc.WithEndpointURL(endpoint))
	} else {
		opts = append(opts, otlptracegrpc.WithEndpoint(endpoint))
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otel trace exporter: %w", err)
	}

	r := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(r),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

// TraceID returns the trace id of the span carried by ctx, or "" when there
// is none.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// DBTracer records one client span per SQL statement.
type DBTracer struct {
	tracer trace.Tracer
	system string
}

// NewDBTracer returns a db.Tracer using tp, or the global provider when tp is
// nil. system is the db.system attribute value ("sqlite", "postgresql"...).
func NewDBTracer(tp trace.TracerProvider, system string) *DBTracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &DBTracer{tracer: tp.Tracer(instrumentationName + "/db"), system: system}
}

func (t *DBTracer) StartSpan(ctx context.Context, query string) context.Context {
	ctx, _ = t.tracer.Start(ctx, spanName(query),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemKey.String(t.system),
			semconv.DBQueryText(query),
		),
	)
	return ctx
}

func (t *DBTracer) EndSpan(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// SystemName maps a dialect family onto the db.system attribute value.
func SystemName(family string) string {
	switch family {
	case "sqlite3":
		return "sqlite"
	case "postgres":
		return "postgresql"
	}
	return family
}

// spanName is the statement verb, e.g. "db SELECT".
func spanName(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "db"
	}
	return "db " + strings.ToUpper(fields[0])
}

var _ db.Tracer = (*DBTracer)(nil)
