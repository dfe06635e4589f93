// Package control wires the pipeline components together and manages their
// lifecycle.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pressly/goose/v3"

	"github.com/vietddude/sentinel/internal/alerting"
	"github.com/vietddude/sentinel/internal/core/config"
	"github.com/vietddude/sentinel/internal/gateway"
	"github.com/vietddude/sentinel/internal/infra/storage"
	"github.com/vietddude/sentinel/internal/infra/storage/memory"
	"github.com/vietddude/sentinel/internal/infra/storage/postgres"
	"github.com/vietddude/sentinel/internal/metrics"

	redisclient "github.com/vietddude/sentinel/internal/infra/redis"
)

// App is the main application struct that owns the pipeline lifecycle.
// Constructed once at process start, torn down at shutdown; consumers
// receive components by parameter, never through package-level state.
type App struct {
	cfg         *config.AppConfig
	collector   *metrics.Collector
	router      *alerting.Router
	server      *gateway.Server
	db          *postgres.DB
	redisClient *redisclient.Client
	log         *slog.Logger
}

// NewApp creates a new App with all dependencies initialized. Storage
// selection: PostgreSQL when configured, then Redis, then in-memory.
func NewApp(cfg *config.AppConfig) (*App, error) {
	log := slog.Default()

	app := &App{
		cfg:       cfg,
		collector: metrics.NewCollector(),
		log:       log,
	}

	// 1. Initialize storage
	var repo storage.AlertRepository
	switch {
	case cfg.Database.URL != "":
		db, err := postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		app.db = db

		// Run migrations. Goose needs the raw *sql.DB that sqlx wraps.
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		repo = postgres.NewAlertRepo(db)
		log.Info("Using PostgreSQL alert storage")

	case cfg.Redis.URL != "":
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		app.redisClient = client
		repo = redisclient.NewAlertRepo(client)
		log.Info("Using Redis alert storage")

	default:
		repo = memory.NewAlertRepo(memory.NewMemoryStorage())
		log.Info("Using in-memory alert storage")
	}

	// 2. Escalation collaborators
	var pager alerting.Pager
	var incident alerting.IncidentCreator
	var notifier alerting.Notifier
	if cfg.Alerting.PagerURL != "" {
		pager = alerting.NewWebhook(cfg.Alerting.PagerURL, cfg.Alerting.WebhookTimeout, cfg.Retry)
	}
	if cfg.Alerting.IncidentURL != "" {
		incident = alerting.NewWebhook(cfg.Alerting.IncidentURL, cfg.Alerting.WebhookTimeout, cfg.Retry)
	}
	if cfg.Alerting.NotifyURL != "" {
		notifier = alerting.NewWebhook(cfg.Alerting.NotifyURL, cfg.Alerting.WebhookTimeout, cfg.Retry)
	}

	// 3. Router and gateway
	app.router = alerting.NewRouter(repo, pager, incident, notifier, log)
	app.server = gateway.NewServer(app.router, app.collector, log, cfg.Server.Port)

	return app, nil
}

// Router exposes the alert router for embedding callers.
func (a *App) Router() *alerting.Router { return a.router }

// Collector exposes the metrics collector for embedding callers.
func (a *App) Collector() *metrics.Collector { return a.collector }

// Start starts the HTTP gateway.
func (a *App) Start(ctx context.Context) error {
	a.log.Info("Starting gateway", "port", a.cfg.Server.Port)
	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Gateway server stopped", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the gateway and storage connections.
func (a *App) Stop(ctx context.Context) error {
	if err := a.server.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop gateway: %w", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close redis", "error", err)
		}
	}
	return nil
}
