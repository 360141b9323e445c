package observe

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

// ProviderConfig configures the process-wide OpenTelemetry providers.
type ProviderConfig struct {
	// ServiceVersion is reported as service.version. The service name is
	// always "hexforge".
	ServiceVersion string

	// Registerer receives the Prometheus bridge collector. Nil means
	// [prometheus.DefaultRegisterer].
	Registerer prometheus.Registerer

	// SpanExporter, when set, receives finished pipeline spans in batches.
	// Without one, spans still carry the run id into logs but go nowhere.
	SpanExporter sdktrace.SpanExporter
}

// Telemetry holds the installed providers. Shutdown flushes both.
type Telemetry struct {
	Metrics *Metrics

	meters *sdkmetric.MeterProvider
	traces *sdktrace.TracerProvider
}

// InitProvider installs global meter and tracer providers for one hexforge
// process and builds the [Metrics] on top of them.
func InitProvider(ctx context.Context, cfg ProviderConfig) (*Telemetry, error) {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName("hexforge"),
		semconv.ServiceVersion(cfg.ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("observe: build resource: %w", err)
	}

	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	exporter, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("observe: prometheus exporter: %w", err)
	}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.SpanExporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(cfg.SpanExporter))
	}

	t := &Telemetry{
		meters: sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(exporter)),
		traces: sdktrace.NewTracerProvider(tpOpts...),
	}
	if t.Metrics, err = NewMetrics(t.meters); err != nil {
		return nil, errors.Join(fmt.Errorf("observe: metrics: %w", err), t.Shutdown(ctx))
	}
	otel.SetMeterProvider(t.meters)
	otel.SetTracerProvider(t.traces)
	return t, nil
}

// Shutdown flushes pending spans and metric readings.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(t.traces.Shutdown(ctx), t.meters.Shutdown(ctx))
}
