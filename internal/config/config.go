package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	defaultCheckInterval     = 5 * time.Minute
	defaultReconcileInterval = 60 * time.Minute
	defaultSnapshotPath      = "tracking.json"
)

type Config struct {
	Port     string
	LogLevel slog.Level
	Jira     JiraConfig
	Slack    SlackConfig
	Redis    *RedisConfig
	Alert    AlertConfig
	Snapshot SnapshotConfig
}

type JiraConfig struct {
	Host     string
	Email    string
	APIToken string
	Project  string
}

type SlackConfig struct {
	BotToken      string
	SigningSecret string
	AlertsChannel string
}

type AlertConfig struct {
	CheckInterval     time.Duration
	ReconcileInterval time.Duration
}

type SnapshotConfig struct {
	// Backend is "file" or "redis".
	Backend string
	Path    string
}

func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	redisConfig, err := LoadRedisConfig()
	if err != nil {
		return nil, err
	}

	snapshotBackend := os.Getenv("SNAPSHOT_BACKEND")
	if snapshotBackend == "" {
		snapshotBackend = "file"
	}
	snapshotPath := os.Getenv("TRACKING_FILE_PATH")
	if snapshotPath == "" {
		snapshotPath = defaultSnapshotPath
	}

	return &Config{
		Port:     port,
		LogLevel: parseLogLevel(os.Getenv("LOG_LEVEL")),
		Jira: JiraConfig{
			Host:     os.Getenv("JIRA_HOST"),
			Email:    os.Getenv("JIRA_EMAIL"),
			APIToken: os.Getenv("JIRA_API_TOKEN"),
			Project:  os.Getenv("JIRA_PROJECT"),
		},
		Slack: SlackConfig{
			BotToken:      os.Getenv("SLACK_BOT_TOKEN"),
			SigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),
			AlertsChannel: os.Getenv("SLACK_ALERTS_CHANNEL"),
		},
		Redis: redisConfig,
		Alert: AlertConfig{
			CheckInterval:     parseInterval(os.Getenv("ALERT_CHECK_INTERVAL"), defaultCheckInterval),
			ReconcileInterval: parseInterval(os.Getenv("RECONCILE_INTERVAL"), defaultReconcileInterval),
		},
		Snapshot: SnapshotConfig{
			Backend: snapshotBackend,
			Path:    snapshotPath,
		},
	}, nil
}

func parseInterval(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		slog.Warn("invalid interval, using default",
			slog.String("value", raw),
			slog.Duration("default", fallback),
		)
		return fallback
	}
	return parsed
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
