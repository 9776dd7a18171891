package domain

import (
	"context"
	"time"
)

// AlertRecord is one fired alert, written to the configured analytics
// sink for dwell-time reporting.
type AlertRecord struct {
	RunID           string
	Key             string
	Status          string
	First           bool
	FiredAt         time.Time
	BusinessMinutes int
	ThresholdMins   int
	Delivered       bool
}

type AlertRecorder interface {
	RecordAlerts(ctx context.Context, records []AlertRecord) error
	Flush(ctx context.Context) error
	Close() error
}
