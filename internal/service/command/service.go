package command

import (
	"context"
	"time"

	"github.com/campaignops/campaign-status-alerts/internal/domain"
	"github.com/campaignops/campaign-status-alerts/internal/service/businesstime"
	"github.com/campaignops/campaign-status-alerts/internal/service/threshold"
	"github.com/campaignops/campaign-status-alerts/internal/service/tracking"
)

// DurationInfo is the answer to a duration query for one tracked
// issue.
type DurationInfo struct {
	Key           string
	Status        string
	StartTime     time.Time
	TotalTime     time.Duration
	BusinessTime  time.Duration
	LastAlertTime *time.Time
	LatestComment *domain.Comment
	WeekendNow    bool
}

// Service is the facade the chat command surface talks to. It only
// composes the store, policy and calendar; all state lives behind
// them.
type Service struct {
	store    *tracking.Store
	policy   *threshold.Policy
	calendar *businesstime.Calendar

	nowFn func() time.Time
}

func NewService(store *tracking.Store, policy *threshold.Policy, calendar *businesstime.Calendar) *Service {
	return &Service{
		store:    store,
		policy:   policy,
		calendar: calendar,
		nowFn:    time.Now,
	}
}

// WithNow overrides the service clock. Tests only.
func (s *Service) WithNow(nowFn func() time.Time) *Service {
	s.nowFn = nowFn
	return s
}

// QueryDuration reports how long an issue has been in its current
// status, in both wall-clock and business time. found is false when
// the issue is not tracked.
func (s *Service) QueryDuration(key string) (DurationInfo, bool) {
	record := s.store.Get(key)
	if record == nil {
		return DurationInfo{}, false
	}

	now := s.nowFn()
	return DurationInfo{
		Key:           record.Key,
		Status:        record.Status,
		StartTime:     record.StartTime,
		TotalTime:     now.Sub(record.StartTime),
		BusinessTime:  s.calendar.Duration(record.StartTime, now),
		LastAlertTime: record.LastAlertTime,
		LatestComment: record.LatestComment,
		WeekendNow:    s.calendar.IsWeekend(now),
	}, true
}

// UpdateThreshold changes the threshold for a known campaign status.
// Returns false for unknown statuses; the table is left untouched.
func (s *Service) UpdateThreshold(status string, minutes int) bool {
	return s.policy.Update(status, threshold.Minutes(minutes))
}

// ListThresholds returns the active (non-disabled) threshold table.
func (s *Service) ListThresholds() []threshold.Entry {
	return s.policy.List()
}

// ForceReload triggers a full reconciliation against the issue source.
func (s *Service) ForceReload(ctx context.Context) error {
	return s.store.ReconcileFromSource(ctx)
}

// ClearTracking removes one issue from the store.
func (s *Service) ClearTracking(ctx context.Context, key string) bool {
	return s.store.Clear(ctx, key)
}
