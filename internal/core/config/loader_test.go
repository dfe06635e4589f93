package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: info\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("expected default max attempts 3, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.BaseDelay != time.Second {
		t.Errorf("expected default base delay 1s, got %v", cfg.Retry.BaseDelay)
	}
	if cfg.Alerting.WebhookTimeout != 10*time.Second {
		t.Errorf("expected default webhook timeout 10s, got %v", cfg.Alerting.WebhookTimeout)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_PAGER_URL", "https://pager.example.com/hook")
	path := writeConfig(t, "alerting:\n  pager_url: ${TEST_PAGER_URL}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Alerting.PagerURL != "https://pager.example.com/hook" {
		t.Errorf("expected env expansion, got %q", cfg.Alerting.PagerURL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}
