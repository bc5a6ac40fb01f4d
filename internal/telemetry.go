package internal

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry groups the logger, tracer and meter of a single stage.
// Metrics are registered as observable instruments backed by callbacks,
// so stages only keep atomic counters around.
type Telemetry struct {
	stageKind string
	stageName string

	l *Logger

	tracer trace.Tracer
	meter  metric.Meter
}

func NewTelemetry(stageKind, stageName string) *Telemetry {
	return &Telemetry{
		stageKind: stageKind,
		stageName: stageName,

		l: NewLogger(stageKind, stageName),

		tracer: otel.GetTracerProvider().Tracer("j1939tel"),
		meter:  otel.GetMeterProvider().Meter("j1939tel"),
	}
}

func (t *Telemetry) Logger() *Logger {
	return t.l
}

func (t *Telemetry) LogInfo(msg string, args ...any) {
	t.l.Info(msg, args...)
}

func (t *Telemetry) LogWarn(msg string, args ...any) {
	t.l.Warn(msg, args...)
}

func (t *Telemetry) LogError(msg string, err error, args ...any) {
	t.l.Error(msg, err, args...)
}

func (t *Telemetry) setDefaultAttributes(span trace.Span) {
	span.SetAttributes(
		attribute.String("j1939tel.stage_kind", t.stageKind),
		attribute.String("j1939tel.stage_name", t.stageName),
	)
}

func (t *Telemetry) NewTrace(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, spanName, opts...)
	t.setDefaultAttributes(span)
	return ctx, span
}

// InjectTrace injects the trace of the context into the carrier using
// the global text map propagator.
func (t *Telemetry) InjectTrace(ctx context.Context, carrier propagation.TextMapCarrier) {
	otel.GetTextMapPropagator().Inject(ctx, carrier)
}

func (t *Telemetry) getMeterName(name string) string {
	return fmt.Sprintf("%s_%s_%s", t.stageKind, t.stageName, name)
}

// NewCounter registers an observable counter that reports the value
// returned by the given callback.
func (t *Telemetry) NewCounter(name string, callback func() int64, opts ...metric.Int64ObservableCounterOption) {
	counterName := t.getMeterName(name)

	opts = append(opts, metric.WithInt64Callback(
		func(_ context.Context, obs metric.Int64Observer) error {
			obs.Observe(callback())
			return nil
		},
	))

	if _, err := t.meter.Int64ObservableCounter(counterName, opts...); err != nil {
		t.LogError("failed to create counter", err, "name", name)
		return
	}

	t.LogInfo("created counter", "name", counterName)
}

// NewUpDownCounter registers an observable up/down counter that reports
// the value returned by the given callback.
func (t *Telemetry) NewUpDownCounter(name string, callback func() int64, opts ...metric.Int64ObservableUpDownCounterOption) {
	counterName := t.getMeterName(name)

	opts = append(opts, metric.WithInt64Callback(
		func(_ context.Context, obs metric.Int64Observer) error {
			obs.Observe(callback())
			return nil
		},
	))

	if _, err := t.meter.Int64ObservableUpDownCounter(counterName, opts...); err != nil {
		t.LogError("failed to create up/down counter", err, "name", name)
		return
	}

	t.LogInfo("created up/down counter", "name", counterName)
}

// Histogram wraps an int64 otel histogram.
// A nil Histogram drops all records.
type Histogram struct {
	histogram metric.Int64Histogram
}

func (h *Histogram) Record(ctx context.Context, value int64) {
	if h.histogram == nil {
		return
	}

	h.histogram.Record(ctx, value)
}

func (t *Telemetry) NewHistogram(name string, opts ...metric.Int64HistogramOption) *Histogram {
	histogramName := t.getMeterName(name)

	histogram, err := t.meter.Int64Histogram(histogramName, opts...)
	if err != nil {
		t.LogError("failed to create histogram", err, "name", name)
		return &Histogram{}
	}

	t.LogInfo("created histogram", "name", histogramName)

	return &Histogram{histogram: histogram}
}
