package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"

	"github.com/campaignops/campaign-status-alerts/internal/domain"
	"github.com/campaignops/campaign-status-alerts/internal/service/businesstime"
	"github.com/campaignops/campaign-status-alerts/internal/service/command"
	"github.com/campaignops/campaign-status-alerts/internal/service/threshold"
	"github.com/campaignops/campaign-status-alerts/internal/service/tracking"
)

func newTestHandler(t *testing.T, seed []domain.ObservedIssue) (*CommandHandler, *tracking.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	source := domain.NewMockIssueSource(ctrl)
	repo := domain.NewMockSnapshotRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	policy := threshold.NewPolicy()
	calendar, err := businesstime.NewCalendar()
	if err != nil {
		t.Fatalf("failed to build calendar: %v", err)
	}
	store := tracking.NewStore(repo, policy, source)

	if len(seed) > 0 {
		for _, issue := range seed {
			source.EXPECT().GetChangelog(gomock.Any(), issue.Key).Return([]domain.StatusChange{
				{At: issue.CreatedAt, Field: domain.StatusFieldName, To: issue.Status},
			}, nil)
		}
		if err := store.Reconcile(context.Background(), seed); err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}
	}

	svc := command.NewService(store, policy, calendar)
	return NewCommandHandler(svc), store
}

func postCommand(t *testing.T, h *CommandHandler, name, text string) (int, map[string]any) {
	t.Helper()

	form := url.Values{}
	form.Set("command", name)
	form.Set("text", text)
	form.Set("user_id", "U123")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/commands", strings.NewReader(form.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	h.HandleSlashCommand(c)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return w.Code, body
}

func TestCheckDuration(t *testing.T) {
	h, _ := newTestHandler(t, []domain.ObservedIssue{
		{
			Key:       "CAMP-1",
			Status:    "4: Campaign creation",
			Summary:   "spring launch",
			CreatedAt: time.Now().Add(-2 * time.Hour),
		},
	})

	code, body := postCommand(t, h, "/check-duration", "camp-1")
	if code != http.StatusOK {
		t.Fatalf("unexpected status: %d", code)
	}
	text, _ := body["text"].(string)
	if !strings.Contains(text, "CAMP-1") {
		t.Errorf("expected issue key in response, got %q", text)
	}
	if !strings.Contains(text, "4: Campaign creation") {
		t.Errorf("expected status in response, got %q", text)
	}
	if body["response_type"] != "ephemeral" {
		t.Errorf("expected ephemeral response, got %v", body["response_type"])
	}
}

func TestCheckDurationNotTracked(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	code, body := postCommand(t, h, "/check-duration", "CAMP-404")
	if code != http.StatusOK {
		t.Fatalf("unexpected status: %d", code)
	}
	text, _ := body["text"].(string)
	if !strings.Contains(text, "not currently tracked") {
		t.Errorf("unexpected response: %q", text)
	}
}

func TestUpdateThreshold(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "known status", text: "4: Campaign creation 60", want: "set to 1h 0m"},
		{name: "disable", text: "4: Campaign creation -1", want: "disabled"},
		{name: "unknown status", text: "No Such Status 60", want: "Unknown status"},
		{name: "too few arguments", text: "60", want: "Usage"},
		{name: "invalid minutes", text: "4: Campaign creation zero", want: "Minutes must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, body := postCommand(t, h, "/update-threshold", tt.text)
			text, _ := body["text"].(string)
			if !strings.Contains(text, tt.want) {
				t.Errorf("expected %q in response, got %q", tt.want, text)
			}
		})
	}
}

func TestListThresholds(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	_, body := postCommand(t, h, "/list-thresholds", "")
	text, _ := body["text"].(string)
	for _, want := range []string{"4: Campaign creation", "5: Submission Review", "6: Live - FASE1-5"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in threshold list, got %q", want, text)
		}
	}
}

func TestClearTracking(t *testing.T) {
	h, store := newTestHandler(t, []domain.ObservedIssue{
		{
			Key:       "CAMP-1",
			Status:    "4: Campaign creation",
			CreatedAt: time.Now().Add(-time.Hour),
		},
	})

	_, body := postCommand(t, h, "/clear-tracking", "CAMP-1")
	text, _ := body["text"].(string)
	if !strings.Contains(text, "Stopped tracking") {
		t.Errorf("unexpected response: %q", text)
	}
	if store.Get("CAMP-1") != nil {
		t.Error("expected record to be removed from the store")
	}
}

func TestUnknownCommand(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	_, body := postCommand(t, h, "/frobnicate", "")
	text, _ := body["text"].(string)
	if !strings.Contains(text, "Unknown command") {
		t.Errorf("unexpected response: %q", text)
	}
}

func TestVerifySlackSignature(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const secret = "signing-secret"

	router := gin.New()
	router.POST("/commands", VerifySlackSignature(secret), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	body := "command=%2Flist-thresholds&text="
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	tests := []struct {
		name      string
		timestamp string
		signature string
		want      int
	}{
		{
			name:      "valid signature",
			timestamp: timestamp,
			signature: computeSignature(secret, timestamp, []byte(body)),
			want:      http.StatusOK,
		},
		{
			name:      "wrong signature",
			timestamp: timestamp,
			signature: "v0=deadbeef",
			want:      http.StatusUnauthorized,
		},
		{
			name:      "stale timestamp",
			timestamp: strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10),
			signature: computeSignature(secret, strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10), []byte(body)),
			want:      http.StatusUnauthorized,
		},
		{
			name: "missing headers",
			want: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/commands", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.timestamp != "" {
				req.Header.Set("X-Slack-Request-Timestamp", tt.timestamp)
			}
			if tt.signature != "" {
				req.Header.Set("X-Slack-Signature", tt.signature)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, w.Code)
			}
		})
	}
}
