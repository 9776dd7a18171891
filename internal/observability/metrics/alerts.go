package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	alertMeterName = "alert.engine"
)

type AlertMetrics struct {
	alertsFired       metric.Int64Counter
	recordsEvicted    metric.Int64Counter
	recordsReconciled metric.Int64Counter
	alertPassDuration metric.Float64Histogram
	reconcileDuration metric.Float64Histogram
}

func NewAlertMetrics() (*AlertMetrics, error) {
	meter := otel.Meter(alertMeterName)

	alertsFired, err := meter.Int64Counter(
		"campaign_alerts_fired_total",
		metric.WithDescription("Total number of campaign status alerts fired"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return nil, err
	}

	recordsEvicted, err := meter.Int64Counter(
		"campaign_tracking_evictions_total",
		metric.WithDescription("Tracking records evicted for externally deleted issues"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	recordsReconciled, err := meter.Int64Counter(
		"campaign_tracking_reconciled_total",
		metric.WithDescription("Tracking records rebuilt by reconciliation passes"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	alertPassDuration, err := meter.Float64Histogram(
		"campaign_alert_pass_duration_seconds",
		metric.WithDescription("Alert pass duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
		),
	)
	if err != nil {
		return nil, err
	}

	reconcileDuration, err := meter.Float64Histogram(
		"campaign_reconcile_duration_seconds",
		metric.WithDescription("Reconciliation pass duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
		),
	)
	if err != nil {
		return nil, err
	}

	return &AlertMetrics{
		alertsFired:       alertsFired,
		recordsEvicted:    recordsEvicted,
		recordsReconciled: recordsReconciled,
		alertPassDuration: alertPassDuration,
		reconcileDuration: reconcileDuration,
	}, nil
}

func (m *AlertMetrics) RecordAlertFired(ctx context.Context, first, delivered bool) {
	kind := "reminder"
	if first {
		kind = "first"
	}
	m.alertsFired.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("delivered", delivered),
	))
}

func (m *AlertMetrics) RecordEviction(ctx context.Context) {
	m.recordsEvicted.Add(ctx, 1)
}

func (m *AlertMetrics) RecordReconciled(ctx context.Context, count int) {
	m.recordsReconciled.Add(ctx, int64(count))
}

func (m *AlertMetrics) RecordPassDuration(ctx context.Context, duration time.Duration) {
	m.alertPassDuration.Record(ctx, duration.Seconds())
}

func (m *AlertMetrics) RecordReconcileDuration(ctx context.Context, duration time.Duration) {
	m.reconcileDuration.Record(ctx, duration.Seconds())
}
