package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/cory-johannsen/stag"

// latencyBuckets are histogram boundaries in seconds for command handling.
var latencyBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1,
}

// Metrics records command outcomes, command latency and the number of
// players that have joined.
type Metrics struct {
	commands metric.Int64Counter
	duration metric.Float64Histogram
	players  metric.Int64UpDownCounter
}

// NewMetrics creates the command instruments on mp.
//
// Precondition: mp must be non-nil.
// Postcondition: Returns Metrics ready for concurrent use, or a non-nil error.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.commands, err = m.Int64Counter("stag.commands",
		metric.WithDescription("Commands handled, by outcome."),
	); err != nil {
		return nil, fmt.Errorf("creating commands counter: %w", err)
	}
	if met.duration, err = m.Float64Histogram("stag.command.duration",
		metric.WithDescription("Time spent handling one command line."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	if met.players, err = m.Int64UpDownCounter("stag.players",
		metric.WithDescription("Players that have joined the world."),
	); err != nil {
		return nil, fmt.Errorf("creating players counter: %w", err)
	}
	return met, nil
}

// CommandHandled counts one handled command and records its latency.
func (m *Metrics) CommandHandled(ctx context.Context, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.commands.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}

// PlayerJoined counts a newly created player.
func (m *Metrics) PlayerJoined(ctx context.Context) {
	m.players.Add(ctx, 1)
}

// Exporter bundles a meter provider bridged to a Prometheus registry and the
// HTTP handler that serves it.
type Exporter struct {
	Provider *sdkmetric.MeterProvider
	Handler  http.Handler
}

// NewPrometheusExporter creates a meter provider whose instruments are
// scraped from a dedicated Prometheus registry.
//
// Postcondition: Returns an Exporter whose Handler serves the registry, or a
// non-nil error.
func NewPrometheusExporter() (*Exporter, error) {
	reg := prometheus.NewRegistry()
	exp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}
	return &Exporter{
		Provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)),
		Handler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}, nil
}

// Shutdown flushes and stops the meter provider.
func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.Provider.Shutdown(ctx)
}
