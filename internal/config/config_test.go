package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: ":9000"
backend:
  base_url: http://model:8000
  timeout: 5
  retry_backoff: 100ms
sessions:
  idle_ttl: 10m
`)
	t.Setenv("CHURNBOARD_CONFIG_PATH", path)
	t.Setenv("CHURN_API_MAX_RETRIES", "0")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":9000" || cfg.Backend.BaseURL != "http://model:8000" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.Backend.Timeout.Std() != 5*time.Second || cfg.Backend.RetryBackoff.Std() != 100*time.Millisecond {
		t.Fatalf("backend=%+v", cfg.Backend)
	}
	if cfg.Sessions.IdleTTL.Std() != 10*time.Minute || cfg.Sessions.SweepInterval.Std() != time.Minute {
		t.Fatalf("sessions=%+v", cfg.Sessions)
	}
	if cfg.Backend.MaxRetries != 0 {
		t.Fatalf("max_retries=%d", cfg.Backend.MaxRetries)
	}
	if len(cfg.HTTP.CORSOrigins) != 2 || cfg.HTTP.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("origins=%v", cfg.HTTP.CORSOrigins)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("CHURNBOARD_CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: localhost
  timeout: forever
`)
	t.Setenv("CHURNBOARD_CONFIG_PATH", path)
	_, err := Load(nil)
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Fatalf("err=%v", err)
	}

	cfg := Default()
	cfg.Backend.BaseURL = "localhost"
	cfg.Sessions.PreviewSize = 0
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "base_url") || !strings.Contains(err.Error(), "preview_size") {
		t.Fatalf("err=%v", err)
	}
}
