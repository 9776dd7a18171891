package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/campaignops/campaign-status-alerts/internal/domain"
)

const (
	searchMaxResults = 100
	requestTimeout   = 30 * time.Second
)

// Client talks to the Jira REST API v3 with basic auth. It implements
// domain.IssueSource; every call is bounded by the client timeout.
type Client struct {
	baseURL    string
	email      string
	apiToken   string
	project    string
	httpClient *http.Client
}

func NewClient(host, email, apiToken, project string) *Client {
	return &Client{
		baseURL:  "https://" + host,
		email:    email,
		apiToken: apiToken,
		project:  project,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// SearchActiveIssues lists every issue in the configured project with
// the fields reconciliation needs.
func (c *Client) SearchActiveIssues(ctx context.Context) ([]domain.ObservedIssue, error) {
	q := url.Values{}
	q.Set("jql", fmt.Sprintf("project = %q", c.project))
	q.Set("maxResults", fmt.Sprintf("%d", searchMaxResults))
	q.Set("fields", "key,status,summary,created,assignee")

	var resp searchResponse
	if err := c.getJSON(ctx, "/rest/api/3/search", q, &resp); err != nil {
		return nil, fmt.Errorf("issue search failed: %w", err)
	}

	issues := make([]domain.ObservedIssue, 0, len(resp.Issues))
	for _, issue := range resp.Issues {
		if issue.Fields.Status == nil {
			slog.WarnContext(ctx, "issue without status field, skipping",
				slog.String("key", issue.Key),
			)
			continue
		}

		observed := domain.ObservedIssue{
			Key:       issue.Key,
			Status:    issue.Fields.Status.Name,
			Summary:   issue.Fields.Summary,
			CreatedAt: issue.Fields.Created.Time,
		}
		if issue.Fields.Assignee != nil {
			observed.Assignee = issue.Fields.Assignee.DisplayName
		}
		issues = append(issues, observed)
	}

	slog.DebugContext(ctx, "fetched active issues",
		slog.String("project", c.project),
		slog.Int("count", len(issues)),
	)
	return issues, nil
}

// GetChangelog returns the status-change history of one issue, one
// entry per changelog item.
func (c *Client) GetChangelog(ctx context.Context, key string) ([]domain.StatusChange, error) {
	var resp changelogResponse
	path := fmt.Sprintf("/rest/api/3/issue/%s/changelog", url.PathEscape(key))
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("changelog fetch for %s failed: %w", key, err)
	}

	changes := make([]domain.StatusChange, 0, len(resp.Values))
	for _, entry := range resp.Values {
		for _, item := range entry.Items {
			changes = append(changes, domain.StatusChange{
				At:    entry.Created.Time,
				Field: item.Field,
				To:    item.ToString,
			})
		}
	}
	return changes, nil
}

// Exists checks whether the issue is still present. A definitive 404
// yields (false, nil); transient failures are returned as errors.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	path := fmt.Sprintf("/rest/api/3/issue/%s", url.PathEscape(key))
	req, err := c.newRequest(ctx, path, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("existence check for %s failed: %w", key, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("existence check for %s: unexpected status code: %d", key, resp.StatusCode)
	}
	return true, nil
}

// LatestComment fetches the most recent comment on an issue, or nil
// when the issue has none.
func (c *Client) LatestComment(ctx context.Context, key string) (*domain.Comment, error) {
	q := url.Values{}
	q.Set("maxResults", "1")
	q.Set("orderBy", "-created")

	var resp commentsResponse
	path := fmt.Sprintf("/rest/api/3/issue/%s/comment", url.PathEscape(key))
	if err := c.getJSON(ctx, path, q, &resp); err != nil {
		return nil, fmt.Errorf("comment fetch for %s failed: %w", key, err)
	}

	if len(resp.Comments) == 0 {
		return nil, nil
	}

	comment := resp.Comments[0]
	return &domain.Comment{
		Text:      commentText(comment.Body),
		Author:    comment.Author.DisplayName,
		CreatedAt: comment.Created.Time,
	}, nil
}

// IssueURL returns the browse link for an issue key.
func (c *Client) IssueURL(key string) string {
	return c.baseURL + "/browse/" + url.PathEscape(key)
}

func (c *Client) newRequest(ctx context.Context, path string, query url.Values) (*http.Request, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	u.Path = path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, path, query)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrIssueNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
