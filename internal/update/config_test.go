package update

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRuntimeConfigDefaults(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	if cfg.BaseURL != "http://localhost:5000" || cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("unexpected transport defaults: %+v", cfg)
	}
	if cfg.SessionSec() != 1500 || cfg.ToastDuration != 3*time.Second {
		t.Fatalf("unexpected focus defaults: %+v", cfg)
	}
	if cfg.RetryBackoff != 10*time.Second || cfg.RetryMaxAttempts != 5 || cfg.SchedulerBuffer != 64 {
		t.Fatalf("unexpected retry defaults: %+v", cfg)
	}
	if cfg.DBPath != ".adhdash.db" || len(cfg.KanbanColumns) != 6 {
		t.Fatalf("unexpected storage defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestRuntimeConfigFromEnv(t *testing.T) {
	t.Setenv("ADHDASH_BASE_URL", "http://dash.local:8080")
	t.Setenv("ADHDASH_REQUEST_TIMEOUT", "5s")
	t.Setenv("ADHDASH_FOCUS_SESSION_MINUTES", "50")
	t.Setenv("ADHDASH_TOAST_DURATION", "2")
	t.Setenv("ADHDASH_CELEBRATIONS", "off")
	t.Setenv("ADHDASH_DESKTOP_NOTIFICATIONS", "true")
	t.Setenv("ADHDASH_DB_PATH", "")
	t.Setenv("ADHDASH_LOG_LEVEL", "DEBUG")
	t.Setenv("ADHDASH_KANBAN_COLUMNS", "Todo, Doing ,,Done")
	t.Setenv("ADHDASH_RETRY_MAX_ATTEMPTS", "-1")
	t.Setenv("ADHDASH_SCHEDULER_BUFFER", "128")

	cfg := RuntimeConfigFromEnv(DefaultRuntimeConfig())
	if cfg.BaseURL != "http://dash.local:8080" || cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("unexpected transport config: %+v", cfg)
	}
	if cfg.FocusSessionMinutes != 50 || cfg.ToastDuration != 2*time.Second {
		t.Fatalf("unexpected focus config: %+v", cfg)
	}
	if cfg.Celebrations || !cfg.DesktopNotifications {
		t.Fatalf("unexpected capability flags: %+v", cfg)
	}
	if cfg.DBPath != "" {
		t.Fatal("an empty db path should disable the store")
	}
	if lvl, err := cfg.SlogLevel(); err != nil || lvl != slog.LevelDebug {
		t.Fatalf("unexpected level %v %v", lvl, err)
	}
	if len(cfg.KanbanColumns) != 3 || cfg.KanbanColumns[1] != "Doing" {
		t.Fatalf("unexpected columns %q", cfg.KanbanColumns)
	}
	if cfg.RetryMaxAttempts != 5 || cfg.SchedulerBuffer != 128 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}

func TestLoadRuntimeConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adhdash.yaml")
	body := "base_url: http://yaml.local\nrequest_timeout: 12s\nbell: false\nkanban_columns: [A, B]\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadRuntimeConfigFile(path, DefaultRuntimeConfig())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://yaml.local" || cfg.RequestTimeout != 12*time.Second || cfg.Bell {
		t.Fatalf("unexpected file overlay: %+v", cfg)
	}
	if cfg.FocusSessionMinutes != 25 || len(cfg.KanbanColumns) != 2 {
		t.Fatalf("absent keys should keep defaults: %+v", cfg)
	}

	t.Setenv("ADHDASH_BASE_URL", "http://env.local")
	if got := RuntimeConfigFromEnv(cfg); got.BaseURL != "http://env.local" {
		t.Fatal("env should win over the file")
	}
}

func TestLoadRuntimeConfigFileMissingAndBroken(t *testing.T) {
	base := DefaultRuntimeConfig()
	cfg, err := LoadRuntimeConfigFile(filepath.Join(t.TempDir(), "none.yaml"), base)
	if err != nil || cfg.BaseURL != base.BaseURL {
		t.Fatalf("missing file should be ignored: %v", err)
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("base_url: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadRuntimeConfigFile(path, base); !errors.Is(err, ErrConfigFileFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestRuntimeConfigValidate(t *testing.T) {
	cases := []struct {
		mutate func(*RuntimeConfig)
		want   error
	}{
		{func(c *RuntimeConfig) { c.BaseURL = " " }, ErrEmptyBaseURL},
		{func(c *RuntimeConfig) { c.FocusSessionMinutes = 0 }, ErrInvalidSession},
		{func(c *RuntimeConfig) { c.RequestTimeout = 0 }, ErrInvalidTimeout},
		{func(c *RuntimeConfig) { c.LogLevel = "loud" }, ErrInvalidLogLevel},
	}
	for _, tc := range cases {
		cfg := DefaultRuntimeConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("expected %v, got %v", tc.want, err)
		}
	}
}
