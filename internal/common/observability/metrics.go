// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider     *metric.MeterProvider
	meter             otelmetric.Meter
	admissionCounter  otelmetric.Int64Counter
	admissionDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	admissionCounter, _ := meter.Int64Counter(
		"admissions.processed",
		otelmetric.WithDescription("Number of admission attempts processed"),
	)

	admissionDuration, _ := meter.Float64Histogram(
		"admissions.duration",
		otelmetric.WithDescription("Admission attempt duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:     provider,
		meter:             meter,
		admissionCounter:  admissionCounter,
		admissionDuration: admissionDuration,
	}
}

// RecordAdmission counts an admission attempt by outcome
// (accepted, full_or_closed, duplicate, not_found, store_error).
func (o *Observability) RecordAdmission(ctx context.Context, outcome string) {
	if o.admissionCounter != nil {
		o.admissionCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) RecordAdmissionDuration(ctx context.Context, duration time.Duration, outcome string) {
	if o.admissionDuration != nil {
		o.admissionDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
