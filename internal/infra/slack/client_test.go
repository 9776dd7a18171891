package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/campaignops/campaign-status-alerts/internal/domain"
)

func testClient(serverURL string) *Client {
	return &Client{
		apiBaseURL: serverURL,
		botToken:   "xoxb-test",
		issueURLFn: func(key string) string { return "https://jira.example.com/browse/" + key },
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func sampleAlert(first bool) domain.Alert {
	return domain.Alert{
		Key:          "CAMP-7",
		Status:       "5: Submission Review",
		Summary:      "summer push",
		Assignee:     "Dana",
		First:        first,
		StartTime:    time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC),
		BusinessTime: 26 * time.Hour,
		Threshold:    24 * time.Hour,
	}
}

func TestPostAlert(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat.postMessage" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer xoxb-test" {
			t.Errorf("unexpected auth header: %s", got)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	if err := client.PostAlert(context.Background(), "C123", sampleAlert(true)); err != nil {
		t.Fatalf("PostAlert failed: %v", err)
	}

	if captured["channel"] != "C123" {
		t.Errorf("unexpected channel: %v", captured["channel"])
	}
	text, _ := captured["text"].(string)
	if !strings.Contains(text, firstAlertHeader) {
		t.Errorf("expected first-alert header in fallback text, got %q", text)
	}
	if !strings.Contains(text, "CAMP-7") {
		t.Errorf("expected issue key in fallback text, got %q", text)
	}
	if _, ok := captured["blocks"].([]any); !ok {
		t.Error("expected blocks in payload")
	}
}

func TestPostAlertReminderHeader(t *testing.T) {
	var text string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		text, _ = payload["text"].(string)
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	if err := client.PostAlert(context.Background(), "C123", sampleAlert(false)); err != nil {
		t.Fatalf("PostAlert failed: %v", err)
	}
	if !strings.Contains(text, reminderHeader) {
		t.Errorf("expected reminder header, got %q", text)
	}
}

func TestPostAlertAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok": false, "error": "channel_not_found"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	err := client.PostAlert(context.Background(), "C999", sampleAlert(true))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "channel_not_found") {
		t.Errorf("expected api error code in message, got %v", err)
	}
}

func TestJoinChannelAlreadyMember(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/conversations.join" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"ok": false, "error": "already_in_channel"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	if err := client.JoinChannel(context.Background(), "C123"); err != nil {
		t.Errorf("expected already_in_channel to be tolerated, got %v", err)
	}
}

func TestAlertBlocksIncludeComment(t *testing.T) {
	alert := sampleAlert(true)
	alert.Comment = &domain.Comment{
		Text:      "waiting on creative",
		Author:    "Dana",
		CreatedAt: time.Date(2024, time.January, 9, 11, 30, 0, 0, time.UTC),
	}

	blocks := alertBlocks(alert, "https://jira.example.com/browse/CAMP-7")

	found := false
	for _, block := range blocks {
		text, ok := block["text"].(map[string]any)
		if !ok {
			continue
		}
		if s, _ := text["text"].(string); strings.Contains(s, "waiting on creative") {
			found = true
		}
	}
	if !found {
		t.Error("expected comment text in blocks")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{45 * time.Minute, "45m"},
		{90 * time.Minute, "1h 30m"},
		{26 * time.Hour, "1d 2h"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
