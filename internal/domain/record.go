package domain

import (
	"time"
)

// Comment is the most recent Jira comment cached on a tracking record.
type Comment struct {
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created"`
}

// TrackingRecord tracks how long one issue has been in its current
// campaign status. LastAlertTime is nil until the first alert fires.
type TrackingRecord struct {
	Key           string
	Status        string
	StartTime     time.Time
	LastAlertTime *time.Time
	Summary       string
	Assignee      string
	LatestComment *Comment
}

func NewTrackingRecord(key, status string, startTime time.Time) *TrackingRecord {
	return &TrackingRecord{
		Key:       key,
		Status:    status,
		StartTime: startTime,
	}
}

// Alerted reports whether an alert has ever fired for this record.
func (r *TrackingRecord) Alerted() bool {
	return r.LastAlertTime != nil
}

// Clone returns a deep copy so callers cannot mutate store-owned records.
func (r *TrackingRecord) Clone() *TrackingRecord {
	if r == nil {
		return nil
	}
	cp := *r
	if r.LastAlertTime != nil {
		t := *r.LastAlertTime
		cp.LastAlertTime = &t
	}
	if r.LatestComment != nil {
		c := *r.LatestComment
		cp.LatestComment = &c
	}
	return &cp
}

// ObservedIssue is one issue as reported by a reconciliation query
// against the issue source.
type ObservedIssue struct {
	Key       string
	Status    string
	Summary   string
	Assignee  string
	CreatedAt time.Time
}

// StatusChange is a single changelog entry for an issue.
type StatusChange struct {
	At    time.Time
	Field string
	To    string
}

// StatusFieldName is the changelog field that carries campaign status
// transitions.
const StatusFieldName = "status"
