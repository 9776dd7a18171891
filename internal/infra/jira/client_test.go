package jira

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campaignops/campaign-status-alerts/internal/domain"
)

func testClient(serverURL string) *Client {
	return &Client{
		baseURL:    serverURL,
		email:      "bot@example.com",
		apiToken:   "token",
		project:    "CAMP",
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestSearchActiveIssues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/3/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("jql"); got != `project = "CAMP"` {
			t.Errorf("unexpected jql: %s", got)
		}
		if _, _, ok := r.BasicAuth(); !ok {
			t.Error("expected basic auth on request")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"issues": [
				{
					"key": "CAMP-1",
					"fields": {
						"status": {"name": "4: Campaign creation"},
						"summary": "spring launch",
						"created": "2024-01-08T09:00:00.000-0500",
						"assignee": {"displayName": "Dana"}
					}
				},
				{
					"key": "CAMP-2",
					"fields": {
						"summary": "missing status"
					}
				}
			]
		}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	issues, err := client.SearchActiveIssues(context.Background())
	if err != nil {
		t.Fatalf("SearchActiveIssues failed: %v", err)
	}

	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	issue := issues[0]
	if issue.Key != "CAMP-1" {
		t.Errorf("unexpected key: %s", issue.Key)
	}
	if issue.Status != "4: Campaign creation" {
		t.Errorf("unexpected status: %s", issue.Status)
	}
	if issue.Assignee != "Dana" {
		t.Errorf("unexpected assignee: %s", issue.Assignee)
	}
	if issue.CreatedAt.IsZero() {
		t.Error("expected created time to be parsed")
	}
}

func TestGetChangelog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/3/issue/CAMP-1/changelog" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"values": [
				{
					"created": "2024-01-08T10:00:00.000-0500",
					"items": [
						{"field": "status", "toString": "4: Campaign creation"},
						{"field": "assignee", "toString": "Dana"}
					]
				},
				{
					"created": "2024-01-09T10:00:00.000-0500",
					"items": [
						{"field": "status", "toString": "5: Submission Review"}
					]
				}
			]
		}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	changes, err := client.GetChangelog(context.Background(), "CAMP-1")
	if err != nil {
		t.Fatalf("GetChangelog failed: %v", err)
	}

	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(changes))
	}
	entered := domain.StatusEnteredAt(changes, "5: Submission Review")
	if entered.IsZero() {
		t.Fatal("expected a status transition match")
	}
	if entered.Day() != 9 {
		t.Errorf("expected most recent transition, got day %d", entered.Day())
	}
}

func TestExists(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		want       bool
		wantErr    bool
	}{
		{name: "present", statusCode: http.StatusOK, want: true},
		{name: "deleted", statusCode: http.StatusNotFound, want: false},
		{name: "transient failure", statusCode: http.StatusBadGateway, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client := testClient(server.URL)
			got, err := client.Exists(context.Background(), "CAMP-1")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Exists failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLatestComment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/3/issue/CAMP-1/comment" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("orderBy"); got != "-created" {
			t.Errorf("unexpected orderBy: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"comments": [
				{
					"author": {"displayName": "Dana"},
					"created": "2024-01-09T11:30:00.000-0500",
					"body": {
						"type": "doc",
						"version": 1,
						"content": [
							{
								"type": "paragraph",
								"content": [
									{"type": "text", "text": "waiting on creative"}
								]
							}
						]
					}
				}
			]
		}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	comment, err := client.LatestComment(context.Background(), "CAMP-1")
	if err != nil {
		t.Fatalf("LatestComment failed: %v", err)
	}
	if comment == nil {
		t.Fatal("expected a comment")
	}
	if comment.Text != "waiting on creative" {
		t.Errorf("unexpected text: %q", comment.Text)
	}
	if comment.Author != "Dana" {
		t.Errorf("unexpected author: %q", comment.Author)
	}
}

func TestLatestCommentEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"comments": []}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	comment, err := client.LatestComment(context.Background(), "CAMP-1")
	if err != nil {
		t.Fatalf("LatestComment failed: %v", err)
	}
	if comment != nil {
		t.Errorf("expected nil comment, got %+v", comment)
	}
}

func TestGetJSONNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.GetChangelog(context.Background(), "CAMP-404")
	if !errors.Is(err, domain.ErrIssueNotFound) {
		t.Errorf("expected ErrIssueNotFound, got %v", err)
	}
}
