package config

import (
	"context"
	"io"
	"os"
	"time"

	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/mpapenbr/turtlerace/log"
	"github.com/mpapenbr/turtlerace/version"
)

type Telemetry struct {
	provider       *metric.MeterProvider
	tracerProvider *trace.TracerProvider
}

// SetupTelemetry installs global meter and tracer providers which write
// metrics and spans to w (stderr if nil). Go runtime metrics are collected, too.
func SetupTelemetry(w io.Writer) (*Telemetry, error) {
	if w == nil {
		w = os.Stderr
	}
	interval, err := time.ParseDuration(TelemetryPeriod)
	if err != nil || interval <= 0 {
		interval = 30 * time.Second
	}
	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, err
	}
	res := resource.NewSchemaless(
		attribute.String("service.name", "trb"),
		attribute.String("service.version", version.Version),
	)
	provider := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exporter,
			metric.WithInterval(interval))))
	otel.SetMeterProvider(provider)

	spanExporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	tracerProvider := trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(spanExporter))
	otel.SetTracerProvider(tracerProvider)

	if err := otlpruntime.Start(
		otlpruntime.WithMeterProvider(provider),
		otlpruntime.WithMinimumReadMemStatsInterval(time.Second)); err != nil {
		log.Warn("could not start runtime metrics", log.ErrorField(err))
	}
	log.Debug("telemetry enabled", log.Duration("interval", interval))
	return &Telemetry{provider: provider, tracerProvider: tracerProvider}, nil
}

// Shutdown flushes pending spans and metrics
func (t *Telemetry) Shutdown() {
	if t == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.tracerProvider.Shutdown(ctx); err != nil {
		log.Warn("could not shutdown tracing", log.ErrorField(err))
	}
	if err := t.provider.Shutdown(ctx); err != nil {
		log.Warn("could not shutdown telemetry", log.ErrorField(err))
	}
}
