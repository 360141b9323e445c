package observe

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/MrWong99/hexforge"

// Tracer returns the hexforge tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a new span and returns the updated context and span. The
// caller must call span.End() when done.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// RunID returns the trace ID of the span in ctx, used to correlate the log
// lines and artifacts of one pipeline run. Empty without an active span.
func RunID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// Logger returns the default logger enriched with trace_id and span_id from
// ctx, or the plain default logger when ctx carries no span.
func Logger(ctx context.Context) *slog.Logger {
	l := slog.Default()
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		l = l.With(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return l
}

// Stage starts a span for one pipeline stage. The returned finish function
// records err on the span, ends it and records the stage duration on m when
// m is non-nil. While the stage runs, m reports it as [Metrics.CurrentStage].
func Stage(ctx context.Context, m *Metrics, name string) (context.Context, func(err error)) {
	start := time.Now()
	ctx, span := StartSpan(ctx, "hexforge."+name, trace.WithAttributes(attribute.String("stage", name)))
	leave := func() {}
	if m != nil {
		leave = m.enterStage(name)
	}
	return ctx, func(err error) {
		leave()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if m != nil {
			m.RecordStage(ctx, name, start)
		}
	}
}
