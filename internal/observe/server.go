package observe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.opentelemetry.io/otel/trace"
)

const shutdownGrace = 5 * time.Second

// Status is the /healthz body.
type Status struct {
	Status string `json:"status"`
	Stage  string `json:"stage,omitempty"`
}

// Handler serves the telemetry endpoint of a running command:
//
//	GET /metrics  Prometheus exposition gathered from g
//	GET /healthz  JSON [Status] naming the stage in progress
//
// Requests are traced and timed on m.
func Handler(m *Metrics, g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Status{Status: "ok", Stage: m.CurrentStage()})
	})
	return instrument(m, mux)
}

// Serve runs h on addr until ctx ends, then shuts the listener down.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: shutdownGrace}
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe() }()

	select {
	case err := <-done:
		return fmt.Errorf("observe: serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("observe: shutdown %s: %w", addr, err)
	}
	if err := <-done; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("observe: serve %s: %w", addr, err)
	}
	return nil
}

type codeWriter struct {
	http.ResponseWriter
	code int
}

func (w *codeWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func instrument(m *Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, span := StartSpan(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(semconv.HTTPRequestMethodKey.String(r.Method), semconv.URLPath(r.URL.Path)),
		)
		defer span.End()

		cw := &codeWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(cw, r.WithContext(ctx))

		span.SetAttributes(semconv.HTTPResponseStatusCode(cw.code))
		m.HTTPRequestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("path", r.URL.Path),
			attribute.Int("code", cw.code),
		))
		Logger(ctx).Debug("telemetry request", slog.String("path", r.URL.Path), slog.Int("code", cw.code))
	})
}
