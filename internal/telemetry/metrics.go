package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/sitepack"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Generation metrics
	ConfigsGeneratedTotal metric.Int64Counter
	GenerateErrorsTotal   metric.Int64Counter

	// Compile metrics
	BuildsTotal      metric.Int64Counter
	BuildErrorsTotal metric.Int64Counter
	BuildDuration    metric.Float64Histogram
	OutputFilesTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.ConfigsGeneratedTotal, _ = meter.Int64Counter(
		"sitepack.configs.generated.total",
		metric.WithDescription("Total number of resolved site configurations generated"),
		metric.WithUnit("{config}"),
	)

	m.GenerateErrorsTotal, _ = meter.Int64Counter(
		"sitepack.configs.errors.total",
		metric.WithDescription("Total number of failed configuration generations"),
		metric.WithUnit("{error}"),
	)

	m.BuildsTotal, _ = meter.Int64Counter(
		"sitepack.builds.total",
		metric.WithDescription("Total number of site builds started"),
		metric.WithUnit("{build}"),
	)

	m.BuildErrorsTotal, _ = meter.Int64Counter(
		"sitepack.builds.errors.total",
		metric.WithDescription("Total number of site builds that failed"),
		metric.WithUnit("{error}"),
	)

	m.BuildDuration, _ = meter.Float64Histogram(
		"sitepack.builds.duration",
		metric.WithDescription("Duration of a single site build"),
		metric.WithUnit("ms"),
	)

	m.OutputFilesTotal, _ = meter.Int64Counter(
		"sitepack.builds.outputs.total",
		metric.WithDescription("Total number of files written by site builds"),
		metric.WithUnit("{file}"),
	)

	return m
}
