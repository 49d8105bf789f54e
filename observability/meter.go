package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/padflow/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Status values attached to element invocations and runs.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// Metrics holds the instruments recorded by the pipeline runner.
type Metrics struct {
	runTotal        metric.Int64Counter
	tickTotal       metric.Int64Counter
	waveDuration    metric.Float64Histogram
	elementTotal    metric.Int64Counter
	elementDuration metric.Float64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runTotal, err := meter.Int64Counter("padflow.run.total",
		metric.WithDescription("Total number of pipeline runs by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating padflow.run.total counter: %w", err)
	}

	tickTotal, err := meter.Int64Counter("padflow.tick.total",
		metric.WithDescription("Total number of scheduler ticks"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating padflow.tick.total counter: %w", err)
	}

	waveDuration, err := meter.Float64Histogram("padflow.wave.duration",
		metric.WithDescription("Duration of a single wave in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating padflow.wave.duration histogram: %w", err)
	}

	elementTotal, err := meter.Int64Counter("padflow.element.invocations",
		metric.WithDescription("Element invocations by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating padflow.element.invocations counter: %w", err)
	}

	elementDuration, err := meter.Float64Histogram("padflow.element.duration",
		metric.WithDescription("Duration of element invocations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating padflow.element.duration histogram: %w", err)
	}

	return &Metrics{
		runTotal:        runTotal,
		tickTotal:       tickTotal,
		waveDuration:    waveDuration,
		elementTotal:    elementTotal,
		elementDuration: elementDuration,
	}, nil
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(ctx context.Context, pipeline, status string) {
	m.runTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("status", status),
	))
}

// RecordTick records one completed tick.
func (m *Metrics) RecordTick(ctx context.Context, pipeline string) {
	m.tickTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("pipeline", pipeline)))
}

// RecordWave records the wall time of one wave.
func (m *Metrics) RecordWave(ctx context.Context, pipeline string, wave int, duration time.Duration) {
	m.waveDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.Int("wave", wave),
	))
}

// RecordElement records one element invocation or skip. Skips carry no duration.
func (m *Metrics) RecordElement(ctx context.Context, pipeline, element, status string, duration time.Duration) {
	m.elementTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("element", element),
		attribute.String("status", status),
	))
	if status == StatusSkipped {
		return
	}
	m.elementDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("element", element),
	))
}
