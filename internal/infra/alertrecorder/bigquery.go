//go:build gcloud

package alertrecorder

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/campaignops/campaign-status-alerts/internal/domain"
)

type bigQueryRecord struct {
	RecordedAt      time.Time `bigquery:"recorded_at"`
	RunID           string    `bigquery:"run_id"`
	IssueKey        string    `bigquery:"issue_key"`
	Status          string    `bigquery:"status"`
	First           bool      `bigquery:"first"`
	FiredAt         time.Time `bigquery:"fired_at"`
	BusinessMinutes int64     `bigquery:"business_minutes"`
	ThresholdMins   int64     `bigquery:"threshold_mins"`
	Delivered       bool      `bigquery:"delivered"`
}

type bigQueryRecorder struct {
	client   *bigquery.Client
	inserter *bigquery.Inserter
	dataset  string
	table    string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.AlertRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "alert result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.BigQueryProjectID == "" {
		slog.WarnContext(ctx, "BigQuery project ID not configured, alert result recording disabled")
		return NewNoopRecorder(), nil
	}

	client, err := bigquery.NewClient(ctx, cfg.BigQueryProjectID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create BigQuery client, alert result recording disabled",
			slog.String("error", err.Error()),
			slog.String("project_id", cfg.BigQueryProjectID),
		)
		return NewNoopRecorder(), nil
	}

	table := client.Dataset(cfg.BigQueryDataset).Table(cfg.BigQueryTable)
	inserter := table.Inserter()

	slog.InfoContext(ctx, "alert result recorder initialized",
		slog.String("type", "bigquery"),
		slog.String("project_id", cfg.BigQueryProjectID),
		slog.String("dataset", cfg.BigQueryDataset),
		slog.String("table", cfg.BigQueryTable),
	)

	return &bigQueryRecorder{
		client:   client,
		inserter: inserter,
		dataset:  cfg.BigQueryDataset,
		table:    cfg.BigQueryTable,
	}, nil
}

func (r *bigQueryRecorder) RecordAlerts(ctx context.Context, records []domain.AlertRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now()
	bqRecords := make([]*bigQueryRecord, 0, len(records))
	for _, record := range records {
		bqRecords = append(bqRecords, &bigQueryRecord{
			RecordedAt:      now,
			RunID:           record.RunID,
			IssueKey:        record.Key,
			Status:          record.Status,
			First:           record.First,
			FiredAt:         record.FiredAt,
			BusinessMinutes: int64(record.BusinessMinutes),
			ThresholdMins:   int64(record.ThresholdMins),
			Delivered:       record.Delivered,
		})
	}

	if err := r.inserter.Put(ctx, bqRecords); err != nil {
		slog.WarnContext(ctx, "failed to insert alert results to BigQuery",
			slog.String("error", err.Error()),
			slog.Int("record_count", len(records)),
		)
	}

	return nil
}

func (r *bigQueryRecorder) Flush(ctx context.Context) error {
	return nil
}

func (r *bigQueryRecorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
