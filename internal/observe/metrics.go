// Package observe provides the observability primitives shared by the
// hexforge pipeline: OpenTelemetry metrics, tracing, trace-aware logging and
// the HTTP wrapper for the Prometheus scrape endpoint.
//
// Metrics are recorded through the OpenTelemetry Metrics API and bridged to
// Prometheus by [InitProvider]. [DefaultMetrics] returns a package-level
// instance bound to the global meter provider; tests should use [NewMetrics]
// with their own [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all hexforge metrics.
const meterName = "github.com/MrWong99/hexforge"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// --- Latency histograms ---

	// StageDuration tracks pipeline stage latency. Use with attribute:
	//   attribute.String("stage", ...)
	StageDuration metric.Float64Histogram

	// AgentDuration tracks external agent/model call latency. Use with
	// attribute: attribute.String("op", ...)
	AgentDuration metric.Float64Histogram

	// --- Counters ---

	// EntitiesCategorized counts categorized entities. Use with attribute:
	//   attribute.String("category", ...)
	EntitiesCategorized metric.Int64Counter

	// ParseWarnings counts non-fatal parse warnings. Use with attribute:
	//   attribute.String("kind", ...)
	ParseWarnings metric.Int64Counter

	// AgentCalls counts agent/collaborator calls. Use with attributes:
	//   attribute.String("op", ...), attribute.String("status", ...)
	AgentCalls metric.Int64Counter

	// ArtifactsWritten counts emitted files. Use with attribute:
	//   attribute.String("kind", ...)
	ArtifactsWritten metric.Int64Counter

	// SeedItems counts seed items produced per band. Use with attributes:
	//   attribute.String("band", ...), attribute.String("source", ...)
	SeedItems metric.Int64Counter

	// --- HTTP ---

	// HTTPRequestDuration tracks telemetry endpoint latency. Use with
	// attributes: attribute.String("path", ...), attribute.Int("code", ...)
	HTTPRequestDuration metric.Float64Histogram

	stage atomic.Pointer[string]
}

// stageBuckets are histogram boundaries (seconds) sized for batch stages
// that range from milliseconds to many minutes.
var stageBuckets = []float64{
	0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 900,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider].
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.StageDuration, err = m.Float64Histogram("hexforge.stage.duration",
		metric.WithDescription("Latency of pipeline stages."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(stageBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AgentDuration, err = m.Float64Histogram("hexforge.agent.duration",
		metric.WithDescription("Latency of agent and model collaborator calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(stageBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.EntitiesCategorized, err = m.Int64Counter("hexforge.entities.categorized",
		metric.WithDescription("Total entities categorized by category."),
	); err != nil {
		return nil, err
	}
	if met.ParseWarnings, err = m.Int64Counter("hexforge.parse.warnings",
		metric.WithDescription("Total non-fatal parse warnings by kind."),
	); err != nil {
		return nil, err
	}
	if met.AgentCalls, err = m.Int64Counter("hexforge.agent.calls",
		metric.WithDescription("Total agent calls by operation and status."),
	); err != nil {
		return nil, err
	}
	if met.ArtifactsWritten, err = m.Int64Counter("hexforge.artifacts.written",
		metric.WithDescription("Total emitted artifact files by kind."),
	); err != nil {
		return nil, err
	}
	if met.SeedItems, err = m.Int64Counter("hexforge.seed.items",
		metric.WithDescription("Total seed items by band and source."),
	); err != nil {
		return nil, err
	}

	if met.HTTPRequestDuration, err = m.Float64Histogram("hexforge.http.request.duration",
		metric.WithDescription("Telemetry endpoint latency by path and status code."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Panics if instrument creation
// fails, which does not happen with the global provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String].
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordStage records how long stage took since start.
func (m *Metrics) RecordStage(ctx context.Context, stage string, start time.Time) {
	m.StageDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}

// RecordCategorized increments the categorized counter for category.
func (m *Metrics) RecordCategorized(ctx context.Context, category string) {
	m.EntitiesCategorized.Add(ctx, 1,
		metric.WithAttributes(attribute.String("category", category)),
	)
}

// RecordParseWarning increments the parse warning counter for kind.
func (m *Metrics) RecordParseWarning(ctx context.Context, kind string) {
	m.ParseWarnings.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}

// RecordAgentCall records one agent call with its outcome and latency.
func (m *Metrics) RecordAgentCall(ctx context.Context, op, status string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("status", status),
	)
	m.AgentCalls.Add(ctx, 1, attrs)
	m.AgentDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("op", op)),
	)
}

// RecordArtifact increments the artifact counter for kind.
func (m *Metrics) RecordArtifact(ctx context.Context, kind string) {
	m.ArtifactsWritten.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}

// RecordSeedItems adds n seed items for band from source.
func (m *Metrics) RecordSeedItems(ctx context.Context, band, source string, n int) {
	m.SeedItems.Add(ctx, int64(n),
		metric.WithAttributes(
			attribute.String("band", band),
			attribute.String("source", source),
		),
	)
}

// CurrentStage names the innermost pipeline stage in progress, or "" when
// idle.
func (m *Metrics) CurrentStage() string {
	if p := m.stage.Load(); p != nil {
		return *p
	}
	return ""
}

// enterStage marks name as current and returns a func restoring the
// previous stage.
func (m *Metrics) enterStage(name string) func() {
	prev := m.stage.Swap(&name)
	return func() { m.stage.Store(prev) }
}
