package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campaignops/campaign-status-alerts/internal/service/command"
	"github.com/campaignops/campaign-status-alerts/internal/service/threshold"
)

// CommandHandler serves the Slack slash-command surface. Every
// response is an ephemeral Slack message; operational failures are
// reported in the message text rather than as HTTP errors, since Slack
// shows non-200 responses to the user as a generic failure.
type CommandHandler struct {
	commands *command.Service
}

func NewCommandHandler(commands *command.Service) *CommandHandler {
	return &CommandHandler{
		commands: commands,
	}
}

func (h *CommandHandler) HandleSlashCommand(c *gin.Context) {
	ctx := c.Request.Context()

	name := c.PostForm("command")
	text := strings.TrimSpace(c.PostForm("text"))

	slog.InfoContext(ctx, "handling slash command",
		slog.String("command", name),
		slog.String("user_id", c.PostForm("user_id")),
	)

	switch name {
	case "/check-duration":
		h.checkDuration(c, text)
	case "/update-threshold":
		h.updateThreshold(c, text)
	case "/list-thresholds":
		h.listThresholds(c)
	case "/reload-tracking":
		h.reloadTracking(c)
	case "/clear-tracking":
		h.clearTracking(c, text)
	default:
		slog.WarnContext(ctx, "unknown slash command", slog.String("command", name))
		respondEphemeral(c, fmt.Sprintf("Unknown command: %s", name))
	}
}

func (h *CommandHandler) checkDuration(c *gin.Context, text string) {
	key := strings.ToUpper(text)
	if key == "" {
		respondEphemeral(c, "Usage: /check-duration <issue-key>")
		return
	}

	info, ok := h.commands.QueryDuration(key)
	if !ok {
		respondEphemeral(c, fmt.Sprintf("%s is not currently tracked.", key))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s* in *%s*\n", info.Key, info.Status)
	fmt.Fprintf(&sb, "Since: %s\n", info.StartTime.Format("Mon Jan 2 15:04 MST"))
	fmt.Fprintf(&sb, "Elapsed: %s (business: %s)\n",
		formatDuration(info.TotalTime), formatDuration(info.BusinessTime))
	if info.LastAlertTime != nil {
		fmt.Fprintf(&sb, "Last alert: %s\n", info.LastAlertTime.Format("Mon Jan 2 15:04 MST"))
	} else {
		sb.WriteString("Last alert: never\n")
	}
	if info.LatestComment != nil {
		fmt.Fprintf(&sb, "Latest comment (%s): %s\n", info.LatestComment.Author, info.LatestComment.Text)
	}
	if info.WeekendNow {
		sb.WriteString("_Weekend in the reference timezone; business time is paused._")
	}

	respondEphemeral(c, sb.String())
}

// updateThreshold parses "<status> <minutes>"; the status may contain
// spaces, so the minutes are taken from the final token.
func (h *CommandHandler) updateThreshold(c *gin.Context, text string) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		respondEphemeral(c, "Usage: /update-threshold <status> <minutes>")
		return
	}

	minutes, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil || (minutes <= 0 && threshold.Minutes(minutes) != threshold.Disabled) {
		respondEphemeral(c, "Minutes must be a positive integer, or -1 to disable alerts.")
		return
	}
	status := strings.Join(fields[:len(fields)-1], " ")

	if !h.commands.UpdateThreshold(status, minutes) {
		respondEphemeral(c, fmt.Sprintf("Unknown status: %q. Use /list-thresholds to see valid statuses.", status))
		return
	}

	if threshold.Minutes(minutes) == threshold.Disabled {
		respondEphemeral(c, fmt.Sprintf("Alerts disabled for %q.", status))
		return
	}
	respondEphemeral(c, fmt.Sprintf("Threshold for %q set to %s.", status,
		formatDuration(time.Duration(minutes)*time.Minute)))
}

func (h *CommandHandler) listThresholds(c *gin.Context) {
	entries := h.commands.ListThresholds()

	var sb strings.Builder
	sb.WriteString("*Current alert thresholds*\n")
	for _, entry := range entries {
		if entry.Minutes == threshold.Disabled {
			fmt.Fprintf(&sb, "• %s: disabled\n", entry.Status)
			continue
		}
		fmt.Fprintf(&sb, "• %s: %s\n", entry.Status, formatDuration(entry.Minutes.Duration()))
	}
	respondEphemeral(c, sb.String())
}

func (h *CommandHandler) reloadTracking(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.commands.ForceReload(ctx); err != nil {
		slog.ErrorContext(ctx, "forced reconciliation failed",
			slog.String("error", err.Error()),
		)
		respondEphemeral(c, "Reload failed; tracking state is unchanged. Check the service logs.")
		return
	}
	respondEphemeral(c, "Tracking state rebuilt from the issue tracker.")
}

func (h *CommandHandler) clearTracking(c *gin.Context, text string) {
	key := strings.ToUpper(text)
	if key == "" {
		respondEphemeral(c, "Usage: /clear-tracking <issue-key>")
		return
	}

	if !h.commands.ClearTracking(c.Request.Context(), key) {
		respondEphemeral(c, fmt.Sprintf("%s is not currently tracked.", key))
		return
	}
	respondEphemeral(c, fmt.Sprintf("Stopped tracking %s.", key))
}

func respondEphemeral(c *gin.Context, text string) {
	c.JSON(http.StatusOK, gin.H{
		"response_type": "ephemeral",
		"text":          text,
	})
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
