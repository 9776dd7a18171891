package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campaignops/campaign-status-alerts/internal/observability/metrics"
	"github.com/campaignops/campaign-status-alerts/internal/observability/tracing"
	"github.com/campaignops/campaign-status-alerts/internal/service/alert"
	"github.com/campaignops/campaign-status-alerts/internal/service/tracking"
)

// Scheduler drives the two periodic loops: the alert pass and the
// tracking reconciliation. Both stop when the context is cancelled.
type Scheduler struct {
	engine  *alert.Engine
	store   *tracking.Store
	metrics *metrics.AlertMetrics

	checkInterval     time.Duration
	reconcileInterval time.Duration

	wg sync.WaitGroup
}

func New(
	engine *alert.Engine,
	store *tracking.Store,
	alertMetrics *metrics.AlertMetrics,
	checkInterval time.Duration,
	reconcileInterval time.Duration,
) *Scheduler {
	return &Scheduler{
		engine:            engine,
		store:             store,
		metrics:           alertMetrics,
		checkInterval:     checkInterval,
		reconcileInterval: reconcileInterval,
	}
}

// Start runs one reconciliation synchronously so the first alert pass
// sees fresh records, then launches both ticker loops.
func (s *Scheduler) Start(ctx context.Context) {
	s.runReconcile(ctx)

	s.wg.Add(2)
	go s.alertLoop(ctx)
	go s.reconcileLoop(ctx)

	slog.InfoContext(ctx, "scheduler started",
		slog.Duration("check_interval", s.checkInterval),
		slog.Duration("reconcile_interval", s.reconcileInterval),
	)
}

// Wait blocks until both loops have exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) alertLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("alert loop stopped")
			return
		case <-ticker.C:
			if _, err := s.engine.RunPass(ctx); err != nil {
				slog.ErrorContext(ctx, "alert pass failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

func (s *Scheduler) reconcileLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("reconcile loop stopped")
			return
		case <-ticker.C:
			s.runReconcile(ctx)
		}
	}
}

func (s *Scheduler) runReconcile(ctx context.Context) {
	runID := uuid.NewString()
	start := time.Now()

	ctx, span := tracing.StartReconcileSpan(ctx, runID)
	defer span.End()

	if err := s.store.ReconcileFromSource(ctx); err != nil {
		slog.ErrorContext(ctx, "reconciliation failed",
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)
		return
	}

	count := s.store.Count()
	s.metrics.RecordReconciled(ctx, count)
	s.metrics.RecordReconcileDuration(ctx, time.Since(start))

	slog.InfoContext(ctx, "reconciliation completed",
		slog.String("run_id", runID),
		slog.Int("tracked_count", count),
		slog.Duration("duration", time.Since(start)),
	)
}
