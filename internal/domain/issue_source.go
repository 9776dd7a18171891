package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=issue_source.go -destination=issue_source_mock.go -package=domain

// IssueSource is the read-side contract against the external issue
// tracker. Exists distinguishes a definitive ErrIssueNotFound from
// transient failures; every call is bounded by the implementation's
// own timeout.
type IssueSource interface {
	SearchActiveIssues(ctx context.Context) ([]ObservedIssue, error)
	GetChangelog(ctx context.Context, key string) ([]StatusChange, error)
	Exists(ctx context.Context, key string) (bool, error)
	LatestComment(ctx context.Context, key string) (*Comment, error)
}

// StatusEnteredAt returns the most recent transition into status from
// the changelog, or the zero time if none matches.
func StatusEnteredAt(changes []StatusChange, status string) time.Time {
	var enteredAt time.Time
	for _, change := range changes {
		if change.Field == StatusFieldName && change.To == status && change.At.After(enteredAt) {
			enteredAt = change.At
		}
	}
	return enteredAt
}
