package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Observability owns the OpenTelemetry meter and tracer providers.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	reportCounter  otelmetric.Int64Counter
	reportDuration otelmetric.Float64Histogram
	recommended    otelmetric.Int64Histogram
}

// New registers global meter and tracer providers. Metrics are exported through
// the default prometheus registry, so they appear on /metrics.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	otel.SetTracerProvider(tp)

	meter := mp.Meter(serviceName)

	reportCounter, err := meter.Int64Counter(
		"reports.built",
		otelmetric.WithDescription("Number of recommendation reports built"),
	)
	if err != nil {
		return nil, err
	}

	reportDuration, err := meter.Float64Histogram(
		"reports.duration",
		otelmetric.WithDescription("Report build duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	recommended, err := meter.Int64Histogram(
		"reports.recommendations",
		otelmetric.WithDescription("Eligible schemes per report"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		meterProvider:  mp,
		tracerProvider: tp,
		reportCounter:  reportCounter,
		reportDuration: reportDuration,
		recommended:    recommended,
	}, nil
}

// RecordReport records one report build.
func (o *Observability) RecordReport(ctx context.Context, source, status string, duration time.Duration, recommendations int) {
	attrs := otelmetric.WithAttributes(
		attribute.String("source", source),
		attribute.String("status", status),
	)
	o.reportCounter.Add(ctx, 1, attrs)
	o.reportDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if status == "success" {
		o.recommended.Record(ctx, int64(recommendations), otelmetric.WithAttributes(
			attribute.String("source", source),
		))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.tracerProvider.Shutdown(ctx)
	_ = o.meterProvider.Shutdown(ctx)
}
