package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/campaignops/campaign-status-alerts/internal/domain"
)

const (
	defaultAPIBaseURL = "https://slack.com/api"
	requestTimeout    = 30 * time.Second
)

// Client posts alerts through the Slack Web API with a bot token. It
// implements domain.Notifier.
type Client struct {
	apiBaseURL string
	botToken   string
	issueURLFn func(key string) string
	httpClient *http.Client
}

// NewClient builds a notifier. issueURLFn turns an issue key into the
// browse link embedded in alert messages.
func NewClient(botToken string, issueURLFn func(key string) string) *Client {
	return &Client{
		apiBaseURL: defaultAPIBaseURL,
		botToken:   botToken,
		issueURLFn: issueURLFn,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// PostAlert sends the alert as a Block Kit message to the channel.
func (c *Client) PostAlert(ctx context.Context, channelID string, alert domain.Alert) error {
	payload := map[string]any{
		"channel": channelID,
		"text":    fallbackText(alert),
		"blocks":  alertBlocks(alert, c.issueURLFn(alert.Key)),
	}
	if err := c.call(ctx, "chat.postMessage", payload); err != nil {
		return fmt.Errorf("failed to post alert for %s: %w", alert.Key, err)
	}
	return nil
}

// JoinChannel joins the alerts channel so posting does not fail on
// not_in_channel. Already being a member is not an error.
func (c *Client) JoinChannel(ctx context.Context, channelID string) error {
	err := c.call(ctx, "conversations.join", map[string]any{"channel": channelID})
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.code == "already_in_channel" {
			return nil
		}
		return fmt.Errorf("failed to join channel %s: %w", channelID, err)
	}
	return nil
}

// apiError is a Slack-level failure, reported with ok:false and an
// error code in an HTTP 200 response.
type apiError struct {
	method string
	code   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("slack %s returned error: %s", e.method, e.code)
}

func (c *Client) call(ctx context.Context, method string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.botToken)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var result struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.OK {
		slog.WarnContext(ctx, "slack api call rejected",
			slog.String("method", method),
			slog.String("error", result.Error),
		)
		return &apiError{method: method, code: result.Error}
	}
	return nil
}
