package alert

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/campaignops/campaign-status-alerts/internal/domain"
	"github.com/campaignops/campaign-status-alerts/internal/observability/metrics"
	"github.com/campaignops/campaign-status-alerts/internal/observability/tracing"
	"github.com/campaignops/campaign-status-alerts/internal/service/businesstime"
	"github.com/campaignops/campaign-status-alerts/internal/service/threshold"
	"github.com/campaignops/campaign-status-alerts/internal/service/tracking"
)

// ReminderInterval is the business-time spacing between repeat
// reminders for a record that has already alerted once.
const ReminderInterval = 24 * time.Hour

// Engine evaluates every tracking record once per tick and fires
// threshold alerts. Delivery is suppressed on weekends while alert
// bookkeeping keeps advancing, so Monday does not open with a burst of
// caught-up weekend reminders.
type Engine struct {
	store    *tracking.Store
	policy   *threshold.Policy
	calendar *businesstime.Calendar
	source   domain.IssueSource
	notifier domain.Notifier
	recorder domain.AlertRecorder
	metrics  *metrics.AlertMetrics

	channelID string
	nowFn     func() time.Time
}

func NewEngine(
	store *tracking.Store,
	policy *threshold.Policy,
	calendar *businesstime.Calendar,
	source domain.IssueSource,
	notifier domain.Notifier,
	recorder domain.AlertRecorder,
	alertMetrics *metrics.AlertMetrics,
	channelID string,
) *Engine {
	return &Engine{
		store:     store,
		policy:    policy,
		calendar:  calendar,
		source:    source,
		notifier:  notifier,
		recorder:  recorder,
		metrics:   alertMetrics,
		channelID: channelID,
		nowFn:     time.Now,
	}
}

// WithNow overrides the engine's clock. Tests only.
func (e *Engine) WithNow(nowFn func() time.Time) *Engine {
	e.nowFn = nowFn
	return e
}

// RunPass iterates all tracking records and fires alerts for records
// whose business time in status exceeds their threshold. Per-item
// failures are logged and isolated; they never abort the pass.
func (e *Engine) RunPass(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	now := e.nowFn()
	passStart := time.Now()

	ctx, span := tracing.StartAlertPassSpan(ctx, runID)
	defer span.End()

	gateOpen := !e.calendar.IsWeekend(now)
	if !gateOpen {
		slog.InfoContext(ctx, "weekend in reference timezone, alert delivery paused",
			slog.String("run_id", runID),
		)
	}

	records := e.store.All()
	result := &Result{CheckedCount: len(records), GateOpen: gateOpen}
	fired := make([]domain.AlertRecord, 0)
	dirty := false

	slog.DebugContext(ctx, "starting alert pass",
		slog.String("run_id", runID),
		slog.Int("record_count", len(records)),
	)

	for _, record := range records {
		outcome := e.checkRecord(ctx, runID, record, now, gateOpen)

		if outcome.dirty {
			dirty = true
		}
		switch {
		case outcome.failed:
			result.FailedCount++
		case outcome.evicted:
			result.EvictedCount++
		case outcome.alert != nil:
			result.FiredCount++
			if !outcome.alert.First {
				result.ReminderCount++
			}
			fired = append(fired, *outcome.alert)
		default:
			result.SkippedCount++
		}
	}

	if dirty {
		if err := e.store.Persist(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to persist tracking snapshot after alert pass",
				slog.String("run_id", runID),
				slog.String("error", err.Error()),
			)
		} else {
			result.SnapshotSaved = true
		}
	}

	if e.recorder != nil && len(fired) > 0 {
		if err := e.recorder.RecordAlerts(ctx, fired); err != nil {
			slog.WarnContext(ctx, "failed to record fired alerts",
				slog.String("run_id", runID),
				slog.String("error", err.Error()),
			)
		}
	}

	if e.metrics != nil {
		e.metrics.RecordPassDuration(ctx, time.Since(passStart))
	}

	slog.InfoContext(ctx, "alert pass complete",
		slog.String("run_id", runID),
		slog.Int("checked", result.CheckedCount),
		slog.Int("fired", result.FiredCount),
		slog.Int("reminders", result.ReminderCount),
		slog.Int("evicted", result.EvictedCount),
		slog.Int("failed", result.FailedCount),
		slog.Bool("gate_open", gateOpen),
	)

	return result, nil
}

type recordOutcome struct {
	alert   *domain.AlertRecord
	evicted bool
	failed  bool
	dirty   bool
}

func (e *Engine) checkRecord(
	ctx context.Context,
	runID string,
	record *domain.TrackingRecord,
	now time.Time,
	gateOpen bool,
) recordOutcome {
	var outcome recordOutcome

	exists, err := e.source.Exists(ctx, record.Key)
	if err != nil {
		if errors.Is(err, domain.ErrIssueNotFound) {
			exists = false
		} else {
			slog.WarnContext(ctx, "existence check failed, skipping record",
				slog.String("run_id", runID),
				slog.String("key", record.Key),
				slog.String("error", err.Error()),
			)
			outcome.failed = true
			return outcome
		}
	}
	if !exists {
		slog.InfoContext(ctx, "issue no longer exists, evicting tracking record",
			slog.String("run_id", runID),
			slog.String("key", record.Key),
		)
		if e.store.Evict(record.Key) {
			outcome.evicted = true
			outcome.dirty = true
			if e.metrics != nil {
				e.metrics.RecordEviction(ctx)
			}
		}
		return outcome
	}

	businessTime := e.calendar.Duration(record.StartTime, now)

	thresholdDur, disabled := e.policy.ThresholdFor(record.Status)
	if disabled {
		// Reconciliation never stores disabled statuses, but a runtime
		// threshold update can disable one afterwards.
		return outcome
	}

	sinceLastAlert := thresholdDur
	if record.LastAlertTime != nil {
		sinceLastAlert = e.calendar.Duration(*record.LastAlertTime, now)
	}

	fire := businessTime > thresholdDur &&
		(record.LastAlertTime == nil || sinceLastAlert >= ReminderInterval)

	// Refresh the cached comment regardless of the alert decision so
	// the slash-command surface always shows fresh context.
	comment := record.LatestComment
	fetched, err := e.source.LatestComment(ctx, record.Key)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch latest comment",
			slog.String("run_id", runID),
			slog.String("key", record.Key),
			slog.String("error", err.Error()),
		)
	} else if fetched != nil {
		comment = fetched
		if e.store.CacheComment(record.Key, fetched) {
			outcome.dirty = true
		}
	}

	if !fire {
		return outcome
	}

	first := record.LastAlertTime == nil
	e.store.MarkAlerted(record.Key, now)
	outcome.dirty = true

	alert := domain.Alert{
		Key:          record.Key,
		Status:       record.Status,
		Summary:      record.Summary,
		Assignee:     record.Assignee,
		First:        first,
		StartTime:    record.StartTime,
		BusinessTime: businessTime,
		Threshold:    thresholdDur,
		Comment:      comment,
	}

	slog.InfoContext(ctx, "campaign status threshold exceeded",
		slog.String("run_id", runID),
		slog.String("key", record.Key),
		slog.String("status", record.Status),
		slog.Bool("first_alert", first),
		slog.Duration("business_time", businessTime),
		slog.Duration("threshold", thresholdDur),
	)

	delivered := false
	if gateOpen {
		if err := e.notifier.JoinChannel(ctx, e.channelID); err != nil {
			slog.WarnContext(ctx, "failed to join alert channel",
				slog.String("run_id", runID),
				slog.String("channel", e.channelID),
				slog.String("error", err.Error()),
			)
		}
		// Bookkeeping above stands even when delivery fails: retrying
		// every tick against a flaky transport would storm the channel
		// once it recovers.
		if err := e.notifier.PostAlert(ctx, e.channelID, alert); err != nil {
			slog.ErrorContext(ctx, "alert delivery failed",
				slog.String("run_id", runID),
				slog.String("key", record.Key),
				slog.String("error", err.Error()),
			)
		} else {
			delivered = true
		}
	} else {
		slog.InfoContext(ctx, "weekend gate closed, alert suppressed",
			slog.String("run_id", runID),
			slog.String("key", record.Key),
		)
	}

	if e.metrics != nil {
		e.metrics.RecordAlertFired(ctx, first, delivered)
	}

	outcome.alert = &domain.AlertRecord{
		RunID:           runID,
		Key:             record.Key,
		Status:          record.Status,
		First:           first,
		FiredAt:         now,
		BusinessMinutes: int(businessTime.Minutes()),
		ThresholdMins:   int(thresholdDur.Minutes()),
		Delivered:       delivered,
	}
	return outcome
}
