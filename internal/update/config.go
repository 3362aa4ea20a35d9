package update

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/adhdash/internal/model"
)

var (
	ErrEmptyBaseURL     = errors.New("config: base url is required")
	ErrInvalidSession   = errors.New("config: focus session must be positive")
	ErrInvalidTimeout   = errors.New("config: request timeout must be positive")
	ErrInvalidLogLevel  = errors.New("config: unknown log level")
	ErrConfigFileFormat = errors.New("config: invalid config file")
)

type RuntimeConfig struct {
	BaseURL              string        `yaml:"base_url"`
	RequestTimeout       time.Duration `yaml:"request_timeout"`
	FocusSessionMinutes  int           `yaml:"focus_session_minutes"`
	ToastDuration        time.Duration `yaml:"toast_duration"`
	Celebrations         bool          `yaml:"celebrations"`
	Bell                 bool          `yaml:"bell"`
	DesktopNotifications bool          `yaml:"desktop_notifications"`
	DBPath               string        `yaml:"db_path"`
	LogPath              string        `yaml:"log_path"`
	LogLevel             string        `yaml:"log_level"`
	KanbanColumns        []string      `yaml:"kanban_columns"`
	RetryBackoff         time.Duration `yaml:"retry_backoff"`
	RetryMaxAttempts     int           `yaml:"retry_max_attempts"`
	SchedulerBuffer      int           `yaml:"scheduler_buffer"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		BaseURL:              "http://localhost:5000",
		RequestTimeout:       30 * time.Second,
		FocusSessionMinutes:  25,
		ToastDuration:        3 * time.Second,
		Celebrations:         true,
		Bell:                 true,
		DesktopNotifications: false,
		DBPath:               ".adhdash.db",
		LogPath:              "adhdash.log",
		LogLevel:             "info",
		KanbanColumns:        model.DefaultStatuses(),
		RetryBackoff:         10 * time.Second,
		RetryMaxAttempts:     5,
		SchedulerBuffer:      64,
	}
}

// LoadRuntimeConfigFile overlays base with the keys present in a YAML file.
// A missing file leaves base untouched.
func LoadRuntimeConfigFile(path string, base RuntimeConfig) (RuntimeConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return base, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := base
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return base, fmt.Errorf("%w: %s: %v", ErrConfigFileFormat, path, err)
	}
	return cfg, nil
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("ADHDASH_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v, ok := getEnvDuration("ADHDASH_REQUEST_TIMEOUT"); ok && v > 0 {
		cfg.RequestTimeout = v
	}
	if v, ok := getEnvInt("ADHDASH_FOCUS_SESSION_MINUTES"); ok && v > 0 {
		cfg.FocusSessionMinutes = v
	}
	if v, ok := getEnvDuration("ADHDASH_TOAST_DURATION"); ok && v > 0 {
		cfg.ToastDuration = v
	}
	if v, ok := getEnvBool("ADHDASH_CELEBRATIONS"); ok {
		cfg.Celebrations = v
	}
	if v, ok := getEnvBool("ADHDASH_BELL"); ok {
		cfg.Bell = v
	}
	if v, ok := getEnvBool("ADHDASH_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := os.LookupEnv("ADHDASH_DB_PATH"); ok {
		cfg.DBPath = strings.TrimSpace(v)
	}
	if v := strings.TrimSpace(os.Getenv("ADHDASH_LOG_PATH")); v != "" {
		cfg.LogPath = v
	}
	if v := strings.TrimSpace(os.Getenv("ADHDASH_LOG_LEVEL")); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("ADHDASH_KANBAN_COLUMNS")); v != "" {
		var cols []string
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cols = append(cols, c)
			}
		}
		if len(cols) > 0 {
			cfg.KanbanColumns = cols
		}
	}
	if v, ok := getEnvDuration("ADHDASH_RETRY_BACKOFF"); ok && v > 0 {
		cfg.RetryBackoff = v
	}
	if v, ok := getEnvInt("ADHDASH_RETRY_MAX_ATTEMPTS"); ok && v > 0 {
		cfg.RetryMaxAttempts = v
	}
	if v, ok := getEnvInt("ADHDASH_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	return cfg
}

func (c RuntimeConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrEmptyBaseURL
	}
	if c.FocusSessionMinutes <= 0 {
		return ErrInvalidSession
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

func (c RuntimeConfig) SessionSec() int {
	return c.FocusSessionMinutes * 60
}

func (c RuntimeConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

// getEnvDuration accepts a Go duration ("90s") or a bare number of seconds.
func getEnvDuration(name string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, true
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second, true
	}
	return 0, false
}
