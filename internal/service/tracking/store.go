package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/campaignops/campaign-status-alerts/internal/domain"
	"github.com/campaignops/campaign-status-alerts/internal/service/threshold"
)

// Store owns every tracking record. The in-memory map and the durable
// snapshot are guarded by one coarse mutex: update rates are periodic
// and human-scale, so serializing whole passes is cheaper than finer
// locking and rules out lost or interleaved snapshot writes.
type Store struct {
	mu      sync.Mutex
	records map[string]*domain.TrackingRecord

	repo   domain.SnapshotRepository
	policy *threshold.Policy
	source domain.IssueSource
}

func NewStore(repo domain.SnapshotRepository, policy *threshold.Policy, source domain.IssueSource) *Store {
	return &Store{
		records: make(map[string]*domain.TrackingRecord),
		repo:    repo,
		policy:  policy,
		source:  source,
	}
}

// Load replaces the in-memory map with the durable snapshot. A missing
// snapshot is a fresh start, not an error.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			slog.InfoContext(ctx, "no tracking snapshot found, starting empty")
			s.records = make(map[string]*domain.TrackingRecord)
			return nil
		}
		return fmt.Errorf("failed to load tracking snapshot: %w", err)
	}

	s.records = records
	slog.InfoContext(ctx, "tracking snapshot loaded",
		slog.Int("record_count", len(records)),
	)
	return nil
}

// ReconcileFromSource queries the issue source for all active issues
// and merges them into the store. When the source is wholly
// unreachable the last durable snapshot is restored instead of leaving
// the store empty.
func (s *Store) ReconcileFromSource(ctx context.Context) error {
	observed, err := s.source.SearchActiveIssues(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "issue search failed, falling back to durable snapshot",
			slog.String("error", err.Error()),
		)
		if loadErr := s.Load(ctx); loadErr != nil {
			return errors.Join(err, loadErr)
		}
		return err
	}

	return s.Reconcile(ctx, observed)
}

// Reconcile merges one full observation of active issues into the
// store: upserts for issues in a timed status, stale eviction for
// everything no longer observed, then a single snapshot write. The
// map is fully rebuilt before persistence runs.
func (s *Store) Reconcile(ctx context.Context, observed []domain.ObservedIssue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	processed := make(map[string]struct{}, len(observed))

	for _, issue := range observed {
		if _, disabled := s.policy.ThresholdFor(issue.Status); disabled {
			slog.DebugContext(ctx, "skipping issue with disabled timer",
				slog.String("key", issue.Key),
				slog.String("status", issue.Status),
			)
			continue
		}

		existing := s.records[issue.Key]
		startTime := s.resolveStartTime(ctx, issue, existing)

		record := domain.NewTrackingRecord(issue.Key, issue.Status, startTime)
		record.Summary = issue.Summary
		record.Assignee = issue.Assignee
		if existing != nil {
			record.LastAlertTime = existing.LastAlertTime
			record.LatestComment = existing.LatestComment
		}

		s.records[issue.Key] = record
		processed[issue.Key] = struct{}{}

		slog.DebugContext(ctx, "tracking campaign status",
			slog.String("key", issue.Key),
			slog.String("status", issue.Status),
			slog.Time("start_time", startTime),
		)
	}

	for key := range s.records {
		if _, ok := processed[key]; !ok {
			slog.InfoContext(ctx, "removing stale tracking record",
				slog.String("key", key),
			)
			delete(s.records, key)
		}
	}

	if err := s.persistLocked(ctx); err != nil {
		return err
	}

	slog.InfoContext(ctx, "reconciliation complete",
		slog.Int("observed_count", len(observed)),
		slog.Int("tracked_count", len(s.records)),
	)
	return nil
}

// resolveStartTime finds the most recent transition into the issue's
// current status. History failures fall back to the previously stored
// start time when the record already existed, otherwise to the issue
// creation time.
func (s *Store) resolveStartTime(ctx context.Context, issue domain.ObservedIssue, existing *domain.TrackingRecord) time.Time {
	changes, err := s.source.GetChangelog(ctx, issue.Key)
	if err != nil {
		slog.WarnContext(ctx, "changelog lookup failed",
			slog.String("key", issue.Key),
			slog.String("error", err.Error()),
		)
		if existing != nil {
			return existing.StartTime
		}
		return issue.CreatedAt
	}

	if enteredAt := domain.StatusEnteredAt(changes, issue.Status); !enteredAt.IsZero() {
		return enteredAt
	}
	return issue.CreatedAt
}

// Get returns a copy of one record, or nil when the issue is not
// tracked.
func (s *Store) Get(key string) *domain.TrackingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.records[key].Clone()
}

// All returns copies of every record, ordered by key for stable
// iteration.
func (s *Store) All() []*domain.TrackingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]*domain.TrackingRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record.Clone())
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Key < records[j].Key
	})
	return records
}

// Count returns the number of tracked records.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

// Clear removes one record and persists immediately.
func (s *Store) Clear(ctx context.Context, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[key]; !ok {
		return false
	}
	delete(s.records, key)
	slog.InfoContext(ctx, "cleared tracking record",
		slog.String("key", key),
	)

	if err := s.persistLocked(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to persist after clear",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	return true
}

// Evict removes one record without persisting; callers batch the write
// via Persist at the end of their pass.
func (s *Store) Evict(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[key]; !ok {
		return false
	}
	delete(s.records, key)
	return true
}

// MarkAlerted records the alert time for one record.
func (s *Store) MarkAlerted(key string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[key]
	if !ok {
		return false
	}
	record.LastAlertTime = &at
	return true
}

// CacheComment refreshes the cached latest comment for one record.
func (s *Store) CacheComment(key string, comment *domain.Comment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[key]
	if !ok {
		return false
	}
	record.LatestComment = comment
	return true
}

// Persist writes the full current map to the durable snapshot.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.records); err != nil {
		return fmt.Errorf("failed to save tracking snapshot: %w", err)
	}
	return nil
}
