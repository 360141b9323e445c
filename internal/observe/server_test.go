package observe

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func healthz(t *testing.T, h http.Handler) Status {
	t.Helper()
	rec := get(t, h, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("/healthz status = %d", rec.Code)
	}
	var st Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode /healthz: %v", err)
	}
	return st
}

func TestHandler_HealthzTracksStage(t *testing.T) {
	newTestTracerProvider(t)
	m, _ := newTestMetrics(t)
	h := Handler(m, prometheus.NewRegistry())

	if diff := cmp.Diff(Status{Status: "ok"}, healthz(t, h)); diff != "" {
		t.Errorf("idle (-want +got):\n%s", diff)
	}

	ctx, finishRun := Stage(context.Background(), m, "run")
	_, finishScan := Stage(ctx, m, "scan")
	if diff := cmp.Diff(Status{Status: "ok", Stage: "scan"}, healthz(t, h)); diff != "" {
		t.Errorf("inside scan (-want +got):\n%s", diff)
	}
	finishScan(nil)
	if got := healthz(t, h).Stage; got != "run" {
		t.Errorf("after scan stage = %q, want run", got)
	}
	finishRun(nil)
	if got := healthz(t, h).Stage; got != "" {
		t.Errorf("after run stage = %q, want empty", got)
	}
}

func TestHandler_MetricsIsInstrumented(t *testing.T) {
	exp := newTestTracerProvider(t)
	m, reader := newTestMetrics(t)

	reg := prometheus.NewRegistry()
	scrapes := prometheus.NewCounter(prometheus.CounterOpts{Name: "hexforge_fixture_total", Help: "fixture"})
	reg.MustRegister(scrapes)
	scrapes.Inc()

	rec := get(t, Handler(m, reg), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "hexforge_fixture_total 1") {
		t.Errorf("/metrics body missing fixture counter:\n%s", body)
	}

	spans := exp.GetSpans()
	if len(spans) != 1 || spans[0].Name != "GET /metrics" {
		t.Fatalf("spans = %+v, want one GET /metrics span", spans)
	}

	met := findMetric(collect(t, reader), "hexforge.http.request.duration")
	if met == nil {
		t.Fatal("hexforge.http.request.duration not recorded")
	}
	if hist, ok := met.Data.(metricdata.Histogram[float64]); !ok || len(hist.DataPoints) != 1 {
		t.Errorf("unexpected histogram data: %+v", met.Data)
	}
}

func TestHandler_UnknownPath(t *testing.T) {
	newTestTracerProvider(t)
	m, _ := newTestMetrics(t)
	if rec := get(t, Handler(m, prometheus.NewRegistry()), "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServe_StopsWhenContextEnds(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler())
	}()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve = %v, want nil", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_BadAddress(t *testing.T) {
	t.Parallel()
	err := Serve(context.Background(), "not-an-address", http.NotFoundHandler())
	if err == nil || !strings.HasPrefix(err.Error(), "observe: serve not-an-address") {
		t.Errorf("Serve = %v, want serve error", err)
	}
}

func TestInitProvider_BridgesToRegisterer(t *testing.T) {
	origMeters, origTraces := otel.GetMeterProvider(), otel.GetTracerProvider()
	t.Cleanup(func() {
		otel.SetMeterProvider(origMeters)
		otel.SetTracerProvider(origTraces)
	})

	reg := prometheus.NewRegistry()
	tel, err := InitProvider(context.Background(), ProviderConfig{ServiceVersion: "test", Registerer: reg})
	if err != nil {
		t.Fatalf("InitProvider: %v", err)
	}
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	tel.Metrics.RecordArtifact(context.Background(), "unit")

	rec := get(t, Handler(tel.Metrics, reg), "/metrics")
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "hexforge_artifacts_written") {
		t.Errorf("/metrics missing bridged artifact counter:\n%s", body)
	}
}
