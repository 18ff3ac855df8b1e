// Package tracing wraps OpenTelemetry span creation for the reactor,
// dispatcher, and codec layers, grounded on the teacher's
// internal/telemetry/telemetry.go and tracer.go: a package-level Tracer
// guarded by sync.Once, StartSpan/SpanFromContext/AddEvent/RecordError/
// SetStatus/SetAttributes helpers, and typed attribute constructors for
// this domain's operations instead of dittofs's NFS/SMB ones.
//
// Unlike the teacher, Init never wires an OTLP exporter: spec.md's
// Non-goals exclude an external telemetry backend, so the tracer provider
// here always runs in-process with no exporter attached, which still lets
// SetAttributes/RecordError/span parent-child relationships be exercised
// (and asserted on in tests via sdktrace.NewTracerProvider's default
// no-op span processor) without requiring a collector to be running.
package tracing

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	tracer         trace.Tracer
	tracerOnce     sync.Once
	tracerProvider *sdktrace.TracerProvider
)

// Config controls tracing setup.
type Config struct {
	Enabled     bool
	ServiceName string
}

// Init sets up the global tracer. When cfg.Enabled is false it installs a
// no-op tracer. When true, it builds an in-process sdktrace.TracerProvider
// with no exporter attached — spans are created, attributed, and ended,
// but never shipped anywhere. Returns a shutdown func to flush on exit.
func Init(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	if !cfg.Enabled {
		tracer = noop.NewTracerProvider().Tracer("thriftrt")
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing: build resource: %w", err)
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	tracer = tracerProvider.Tracer(cfg.ServiceName)

	return func(ctx context.Context) error {
		return tracerProvider.Shutdown(ctx)
	}, nil
}

// Tracer returns the global tracer, defaulting to a no-op tracer if Init
// was never called.
func Tracer() trace.Tracer {
	tracerOnce.Do(func() {
		if tracer == nil {
			tracer = noop.NewTracerProvider().Tracer("thriftrt")
		}
	})
	return tracer
}

// StartSpan starts a new span named name, returning the context carrying
// it. The caller must call span.End().
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// SpanFromContext returns the active span, or a no-op span if none.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddEvent adds a named event with attrs to the active span.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records err on the active span and marks it errored.
func RecordError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetStatus sets the active span's status.
func SetStatus(ctx context.Context, code codes.Code, description string) {
	trace.SpanFromContext(ctx).SetStatus(code, description)
}

// SetAttributes adds attrs to the active span.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}

// TraceID returns the active span's trace id, or "" if none.
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// Span names for this runtime's operations.
const (
	SpanReactorBind    = "reactor.bind"
	SpanReactorConnect = "reactor.connect"
	SpanReactorRpc     = "reactor.rpc"

	SpanDispatcherCall   = "dispatcher.call"
	SpanDispatcherOneWay = "dispatcher.oneway"
	SpanDispatcherServe  = "dispatcher.serve"
	SpanDispatcherDecode = "dispatcher.decode"
)

// Attribute keys and constructors for this runtime's operations.
const (
	AttrMethod    = "thriftrt.method"
	AttrSeqID     = "thriftrt.seq_id"
	AttrToken     = "thriftrt.token"
	AttrFrameSize = "thriftrt.frame_size"
	AttrOneWay    = "thriftrt.oneway"
	AttrRemote    = "thriftrt.remote_addr"
)

func Method(name string) attribute.KeyValue     { return attribute.String(AttrMethod, name) }
func SeqID(seq int16) attribute.KeyValue        { return attribute.Int(AttrSeqID, int(seq)) }
func Token(token uint64) attribute.KeyValue     { return attribute.Int64(AttrToken, int64(token)) }
func FrameSize(size int) attribute.KeyValue     { return attribute.Int(AttrFrameSize, size) }
func OneWay(oneWay bool) attribute.KeyValue     { return attribute.Bool(AttrOneWay, oneWay) }
func RemoteAddr(addr string) attribute.KeyValue { return attribute.String(AttrRemote, addr) }
