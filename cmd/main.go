package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/campaignops/campaign-status-alerts/internal/config"
	"github.com/campaignops/campaign-status-alerts/internal/domain"
	"github.com/campaignops/campaign-status-alerts/internal/handler"
	"github.com/campaignops/campaign-status-alerts/internal/health"
	"github.com/campaignops/campaign-status-alerts/internal/infra/alertrecorder"
	"github.com/campaignops/campaign-status-alerts/internal/infra/jira"
	"github.com/campaignops/campaign-status-alerts/internal/infra/slack"
	"github.com/campaignops/campaign-status-alerts/internal/infra/snapshot"
	"github.com/campaignops/campaign-status-alerts/internal/observability"
	"github.com/campaignops/campaign-status-alerts/internal/observability/logging"
	"github.com/campaignops/campaign-status-alerts/internal/observability/metrics"
	"github.com/campaignops/campaign-status-alerts/internal/observability/middleware"
	"github.com/campaignops/campaign-status-alerts/internal/scheduler"
	"github.com/campaignops/campaign-status-alerts/internal/service/alert"
	"github.com/campaignops/campaign-status-alerts/internal/service/businesstime"
	"github.com/campaignops/campaign-status-alerts/internal/service/command"
	"github.com/campaignops/campaign-status-alerts/internal/service/threshold"
	"github.com/campaignops/campaign-status-alerts/internal/service/tracking"
)

// Version is set via ldflags at build time
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	env := logging.EnvDev
	if e := os.Getenv("ENV"); e != "" {
		env = logging.Environment(e)
	}

	obs, err := observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:    "campaign-status-alerts",
			Version: Version,
		},
		Environment:   env,
		LogLevel:      cfg.LogLevel,
		SamplingRate:  1.0,
		DefaultModule: logging.Module("campaign-alerts"),
	})
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	alertMetrics, err := metrics.NewAlertMetrics()
	if err != nil {
		slog.Error("failed to initialize alert metrics", slog.String("error", err.Error()))
		return 1
	}

	// Alert result recorder (InfluxDB for local, BigQuery for gcloud)
	recorderCfg := alertrecorder.LoadConfig()
	recorder, err := alertrecorder.NewRecorder(ctx, recorderCfg)
	if err != nil {
		slog.Error("failed to initialize alert result recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			slog.Warn("failed to close alert result recorder", slog.String("error", err.Error()))
		}
	}()

	jiraClient := jira.NewClient(cfg.Jira.Host, cfg.Jira.Email, cfg.Jira.APIToken, cfg.Jira.Project)
	notifier := slack.NewClient(cfg.Slack.BotToken, jiraClient.IssueURL)

	var redisClient *redis.Client
	var snapshotRepo domain.SnapshotRepository
	if cfg.Snapshot.Backend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			slog.Error("failed to instrument redis tracing",
				slog.String("event", "redis.otel.tracing.fail"),
				slog.String("error", err.Error()),
			)
			return 1
		}
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			slog.Error("failed to instrument redis metrics",
				slog.String("event", "redis.otel.metrics.fail"),
				slog.String("error", err.Error()),
			)
			return 1
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.Error("failed to connect redis",
				slog.String("event", "redis.connect.fail"),
				slog.String("error", err.Error()),
			)
			return 1
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				slog.Warn("failed to close redis client", slog.String("error", err.Error()))
			}
		}()

		slog.Info("redis snapshot backend connected",
			slog.String("addr", cfg.Redis.Addr),
		)
		snapshotRepo = snapshot.NewRedisRepository(redisClient)
	} else {
		snapshotRepo = snapshot.NewFileRepository(cfg.Snapshot.Path)
	}

	calendar, err := businesstime.NewCalendar()
	if err != nil {
		slog.Error("failed to load reference timezone", slog.String("error", err.Error()))
		return 1
	}

	policy := threshold.NewPolicy()
	store := tracking.NewStore(snapshotRepo, policy, jiraClient)

	// A missing or unreadable snapshot is not fatal; the initial
	// reconciliation rebuilds tracking state from the issue tracker.
	if err := store.Load(ctx); err != nil {
		slog.Warn("failed to load tracking snapshot, starting empty",
			slog.String("error", err.Error()),
		)
	} else {
		slog.Info("tracking snapshot loaded",
			slog.Int("record_count", store.Count()),
		)
	}

	engine := alert.NewEngine(
		store,
		policy,
		calendar,
		jiraClient,
		notifier,
		recorder,
		alertMetrics,
		cfg.Slack.AlertsChannel,
	)
	sched := scheduler.New(engine, store, alertMetrics, cfg.Alert.CheckInterval, cfg.Alert.ReconcileInterval)
	sched.Start(ctx)

	commandService := command.NewService(store, policy, calendar)
	commandHandler := handler.NewCommandHandler(commandService)

	r := gin.New()
	r.Use(middleware.RequestLogging([]string{"/health", "/health/live", "/health/ready"}))
	r.Use(middleware.PanicRecoveryGin())

	healthChecker := health.NewChecker(redisClient, store, Version)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	slackGroup := r.Group("/slack")
	slackGroup.Use(handler.VerifySlackSignature(cfg.Slack.SigningSecret))
	{
		slackGroup.POST("/commands", commandHandler.HandleSlashCommand)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.String("project", cfg.Jira.Project),
			slog.String("channel", cfg.Slack.AlertsChannel),
			slog.Duration("check_interval", cfg.Alert.CheckInterval),
			slog.Duration("reconcile_interval", cfg.Alert.ReconcileInterval),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()
		sched.Wait()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		if err := store.Persist(shutdownCtx); err != nil {
			slog.Warn("failed to persist tracking snapshot on shutdown", slog.String("error", err.Error()))
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}
