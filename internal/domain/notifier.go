package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=notifier.go -destination=notifier_mock.go -package=domain

// Alert is the payload handed to the notifier when a record crosses
// its threshold. First marks the initial crossing; later deliveries
// for the same record are daily reminders.
type Alert struct {
	Key          string
	Status       string
	Summary      string
	Assignee     string
	First        bool
	StartTime    time.Time
	BusinessTime time.Duration
	Threshold    time.Duration
	Comment      *Comment
}

// Notifier delivers alert messages to the chat transport.
// JoinChannel is idempotent and best-effort.
type Notifier interface {
	PostAlert(ctx context.Context, channelID string, alert Alert) error
	JoinChannel(ctx context.Context, channelID string) error
}
