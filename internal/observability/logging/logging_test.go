package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestContextHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler := &contextHandler{
		Handler: slog.NewJSONHandler(&buf, nil),
		service: ServiceInfo{Name: "campaign-status-alerts", Version: "test"},
		module:  Module("campaign-alerts"),
	}

	logger := slog.New(handler)
	logger.InfoContext(context.Background(), "reconciliation completed", slog.Int("tracked_count", 3))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("failed to decode log record: %v", err)
	}

	if record["service"] != "campaign-status-alerts" {
		t.Errorf("unexpected service attr: %v", record["service"])
	}
	if record["version"] != "test" {
		t.Errorf("unexpected version attr: %v", record["version"])
	}
	if record["module"] != "campaign-alerts" {
		t.Errorf("unexpected module attr: %v", record["module"])
	}
	if record["tracked_count"] != float64(3) {
		t.Errorf("unexpected tracked_count attr: %v", record["tracked_count"])
	}
}

func TestContextHandlerWithAttrsKeepsService(t *testing.T) {
	var buf bytes.Buffer
	base := &contextHandler{
		Handler: slog.NewJSONHandler(&buf, nil),
		service: ServiceInfo{Name: "campaign-status-alerts", Version: "test"},
		module:  Module("campaign-alerts"),
	}

	logger := slog.New(base).With(slog.String("run_id", "abc"))
	logger.Info("alert pass complete")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("failed to decode log record: %v", err)
	}

	if record["run_id"] != "abc" {
		t.Errorf("unexpected run_id attr: %v", record["run_id"])
	}
	if record["module"] != "campaign-alerts" {
		t.Errorf("expected module attr to survive With, got %v", record["module"])
	}
}
