package config

import (
	"time"

	redisclient "github.com/vietddude/sentinel/internal/infra/redis"
	"github.com/vietddude/sentinel/internal/infra/storage/postgres"
	"github.com/vietddude/sentinel/internal/retry"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Logging  LoggingConfig      `yaml:"logging"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
	Alerting AlertingConfig     `yaml:"alerting"`
	Retry    retry.Policy       `yaml:"retry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// AlertingConfig holds escalation endpoint settings. An empty URL disables
// the corresponding path (it degrades to logging).
type AlertingConfig struct {
	PagerURL       string        `yaml:"pager_url"`
	IncidentURL    string        `yaml:"incident_url"`
	NotifyURL      string        `yaml:"notify_url"`
	WebhookTimeout time.Duration `yaml:"webhook_timeout"`
}
