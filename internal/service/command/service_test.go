package command

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/campaignops/campaign-status-alerts/internal/domain"
	"github.com/campaignops/campaign-status-alerts/internal/service/businesstime"
	"github.com/campaignops/campaign-status-alerts/internal/service/threshold"
	"github.com/campaignops/campaign-status-alerts/internal/service/tracking"
)

func newFixture(t *testing.T, ctrl *gomock.Controller) (*Service, *tracking.Store, *domain.MockIssueSource, *domain.MockSnapshotRepository) {
	t.Helper()

	calendar, err := businesstime.NewCalendar()
	if err != nil {
		t.Fatalf("failed to build calendar: %v", err)
	}

	repo := domain.NewMockSnapshotRepository(ctrl)
	source := domain.NewMockIssueSource(ctrl)
	policy := threshold.NewPolicy()
	store := tracking.NewStore(repo, policy, source)

	return NewService(store, policy, calendar), store, source, repo
}

func weekday(t *testing.T, day, hour int) time.Time {
	t.Helper()

	loc, err := time.LoadLocation(businesstime.ReferenceTimezone)
	if err != nil {
		t.Fatalf("failed to load reference timezone: %v", err)
	}
	return time.Date(2024, time.January, day, hour, 0, 0, 0, loc)
}

func TestQueryDuration(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, store, source, repo := newFixture(t, ctrl)

	start := weekday(t, 8, 9) // Monday
	source.EXPECT().GetChangelog(gomock.Any(), "AS-1").Return([]domain.StatusChange{
		{At: start, Field: domain.StatusFieldName, To: "4: Campaign creation"},
	}, nil)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	err := store.Reconcile(context.Background(), []domain.ObservedIssue{
		{Key: "AS-1", Status: "4: Campaign creation", CreatedAt: start.Add(-time.Hour)},
	})
	if err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}

	svc.WithNow(func() time.Time { return start.Add(6 * time.Hour) })

	info, found := svc.QueryDuration("AS-1")
	if !found {
		t.Fatal("expected AS-1 to be found")
	}
	if info.Status != "4: Campaign creation" {
		t.Errorf("status: got %q", info.Status)
	}
	if info.TotalTime != 6*time.Hour || info.BusinessTime != 6*time.Hour {
		t.Errorf("durations: total=%v business=%v, want 6h each", info.TotalTime, info.BusinessTime)
	}
	if info.WeekendNow {
		t.Error("Monday reported as weekend")
	}

	if _, found := svc.QueryDuration("AS-404"); found {
		t.Error("unknown issue reported as found")
	}
}

func TestUpdateThreshold(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _, _ := newFixture(t, ctrl)

	if !svc.UpdateThreshold("4: Campaign creation", 90) {
		t.Error("known status rejected")
	}
	if svc.UpdateThreshold("9: Unknown", 100) {
		t.Error("unknown status accepted")
	}

	entries := svc.ListThresholds()
	found := false
	for _, entry := range entries {
		if entry.Status == "4: Campaign creation" {
			found = true
			if entry.Minutes != 90 {
				t.Errorf("minutes: got %d, want 90", entry.Minutes)
			}
		}
		if entry.Status == "9: Unknown" {
			t.Error("unknown status added to table")
		}
	}
	if !found {
		t.Error("updated status missing from list")
	}
}

func TestForceReload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, source, repo := newFixture(t, ctrl)

	start := weekday(t, 8, 9)
	source.EXPECT().SearchActiveIssues(gomock.Any()).Return([]domain.ObservedIssue{
		{Key: "AS-7", Status: "5: Submission Review", CreatedAt: start},
	}, nil)
	source.EXPECT().GetChangelog(gomock.Any(), "AS-7").Return(nil, nil)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	if err := svc.ForceReload(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, found := svc.QueryDuration("AS-7"); !found {
		t.Error("reloaded issue not tracked")
	}
}
