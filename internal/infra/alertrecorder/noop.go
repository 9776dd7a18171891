package alertrecorder

import (
	"context"

	"github.com/campaignops/campaign-status-alerts/internal/domain"
)

type noopRecorder struct{}

func NewNoopRecorder() domain.AlertRecorder {
	return &noopRecorder{}
}

func (n *noopRecorder) RecordAlerts(_ context.Context, _ []domain.AlertRecord) error {
	return nil
}

func (n *noopRecorder) Flush(_ context.Context) error {
	return nil
}

func (n *noopRecorder) Close() error {
	return nil
}
