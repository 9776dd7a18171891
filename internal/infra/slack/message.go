package slack

import (
	"fmt"
	"strings"
	"time"

	"github.com/campaignops/campaign-status-alerts/internal/domain"
)

const (
	firstAlertHeader = "⏰ Campaign Status Timer Alert"
	reminderHeader   = "🔄 Campaign Status Reminder"
)

func fallbackText(alert domain.Alert) string {
	header := firstAlertHeader
	if !alert.First {
		header = reminderHeader
	}
	return fmt.Sprintf("%s: %s has been in %q for %s (business time)",
		header, alert.Key, alert.Status, formatDuration(alert.BusinessTime))
}

// alertBlocks builds the Block Kit message body: a header, the issue
// link with its status and timing fields, and the latest comment when
// one is cached.
func alertBlocks(alert domain.Alert, issueURL string) []map[string]any {
	header := firstAlertHeader
	if !alert.First {
		header = reminderHeader
	}

	summary := alert.Summary
	if summary == "" {
		summary = alert.Key
	}
	assignee := alert.Assignee
	if assignee == "" {
		assignee = "Unassigned"
	}

	blocks := []map[string]any{
		{
			"type": "header",
			"text": map[string]any{
				"type": "plain_text",
				"text": header,
			},
		},
		{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": fmt.Sprintf("*<%s|%s>* %s", issueURL, alert.Key, summary),
			},
		},
		{
			"type": "section",
			"fields": []map[string]any{
				mrkdwnField("*Status:*\n" + alert.Status),
				mrkdwnField("*Assignee:*\n" + assignee),
				mrkdwnField("*Business time in status:*\n" + formatDuration(alert.BusinessTime)),
				mrkdwnField("*Threshold:*\n" + formatDuration(alert.Threshold)),
			},
		},
	}

	if alert.Comment != nil && strings.TrimSpace(alert.Comment.Text) != "" {
		blocks = append(blocks, map[string]any{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": fmt.Sprintf("*Latest comment* (%s, %s):\n%s",
					alert.Comment.Author,
					alert.Comment.CreatedAt.Format("Jan 2 15:04"),
					truncate(alert.Comment.Text, 500)),
			},
		})
	}

	blocks = append(blocks, map[string]any{
		"type": "context",
		"elements": []map[string]any{
			{
				"type": "mrkdwn",
				"text": fmt.Sprintf("In status since %s", alert.StartTime.Format("Jan 2 15:04 MST")),
			},
		},
	})

	return blocks
}

func mrkdwnField(text string) map[string]any {
	return map[string]any{
		"type": "mrkdwn",
		"text": text,
	}
}

func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	}
	return fmt.Sprintf("%dd %dh", hours/24, hours%24)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
