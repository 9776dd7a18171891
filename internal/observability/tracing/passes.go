package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const passTracerName = "github.com/campaignops/campaign-status-alerts/internal/service"

func PassTracer() trace.Tracer {
	return otel.Tracer(passTracerName)
}

func StartAlertPassSpan(ctx context.Context, runID string) (context.Context, trace.Span) {
	return PassTracer().Start(ctx, "alert.pass",
		trace.WithAttributes(
			attribute.String("run_id", runID),
		),
	)
}

func StartReconcileSpan(ctx context.Context, runID string) (context.Context, trace.Span) {
	return PassTracer().Start(ctx, "tracking.reconcile",
		trace.WithAttributes(
			attribute.String("run_id", runID),
		),
	)
}
