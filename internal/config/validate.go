package config

import (
	"errors"
	"fmt"
)

// ValidateForRun checks that every credential the service needs at
// startup is present. It reports all missing variables at once.
func ValidateForRun(cfg *Config) error {
	required := []struct {
		name  string
		value string
	}{
		{"SLACK_BOT_TOKEN", cfg.Slack.BotToken},
		{"SLACK_SIGNING_SECRET", cfg.Slack.SigningSecret},
		{"SLACK_ALERTS_CHANNEL", cfg.Slack.AlertsChannel},
		{"JIRA_HOST", cfg.Jira.Host},
		{"JIRA_EMAIL", cfg.Jira.Email},
		{"JIRA_API_TOKEN", cfg.Jira.APIToken},
		{"JIRA_PROJECT", cfg.Jira.Project},
	}

	var errs []error
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s environment variable is required", r.name))
		}
	}

	if cfg.Snapshot.Backend == "redis" {
		if err := cfg.Redis.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
