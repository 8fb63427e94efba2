package tracker

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the tracker's OpenTelemetry instruments.
type Metrics struct {
	scans       metric.Int64Counter
	bindings    metric.Int64Counter
	transitions metric.Int64Counter
	collisions  metric.Int64Counter
	opDuration  metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	scans, err := meter.Int64Counter("safetools.scans",
		metric.WithDescription("Scan events dispatched, by outcome"),
	)
	if err != nil {
		return nil, err
	}
	bindings, err := meter.Int64Counter("safetools.bindings",
		metric.WithDescription("Tags bound to placeholder tools"),
	)
	if err != nil {
		return nil, err
	}
	transitions, err := meter.Int64Counter("safetools.transitions",
		metric.WithDescription("Lending transitions, by kind and outcome"),
	)
	if err != nil {
		return nil, err
	}
	collisions, err := meter.Int64Counter("safetools.placeholder.collisions",
		metric.WithDescription("Placeholder tag collisions retried"),
	)
	if err != nil {
		return nil, err
	}
	opDuration, err := meter.Float64Histogram("safetools.op.duration",
		metric.WithDescription("Duration of tracker operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &Metrics{
		scans:       scans,
		bindings:    bindings,
		transitions: transitions,
		collisions:  collisions,
		opDuration:  opDuration,
	}, nil
}

func (m *Metrics) scan(ctx context.Context, outcome string) {
	m.scans.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) bound(ctx context.Context) { m.bindings.Add(ctx, 1) }

func (m *Metrics) transition(ctx context.Context, kind, outcome string) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) collision(ctx context.Context) { m.collisions.Add(ctx, 1) }

func (m *Metrics) observe(op string, start time.Time, err error) {
	m.opDuration.Record(context.Background(), time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("result", resultLabel(err)),
	))
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return string(KindOf(err))
}
