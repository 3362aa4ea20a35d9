package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/adhdash/internal/api"
	"github.com/sandeepkv93/adhdash/internal/scheduler"
	"github.com/sandeepkv93/adhdash/internal/storage"
	"github.com/sandeepkv93/adhdash/internal/timer"
	"github.com/sandeepkv93/adhdash/internal/update"
)

const defaultConfigPath = "adhdash.yaml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "adhdash failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := update.Deps{
		Backend:  api.NewClient(cfg.BaseURL, api.WithTimeout(cfg.RequestTimeout), api.WithLogger(logger)),
		Signaler: newSignaler(cfg),
		Logger:   logger,
	}

	if cfg.DBPath != "" {
		repo, err := storage.OpenSQLite(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer repo.Close()
		deps.Store = repo

		engine := scheduler.NewEngine(cfg.SchedulerBuffer)
		engine.Start()
		defer engine.Stop()
		deps.Engine = engine
	}

	model := update.NewModelWithConfig(ctx, deps, cfg)
	if n, err := model.ResumeOutbox(); err != nil {
		logger.Warn("resume queued moves failed", "error", err)
	} else if n > 0 {
		logger.Info("resumed queued moves", "count", n)
	}

	logger.Info("adhdash starting", "base_url", cfg.BaseURL, "db_path", cfg.DBPath)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}

// loadConfig applies defaults, then the optional YAML file, then ADHDASH_*
// environment variables.
func loadConfig() (update.RuntimeConfig, error) {
	path := defaultConfigPath
	if v, ok := os.LookupEnv("ADHDASH_CONFIG"); ok {
		path = v
	}
	cfg, err := update.LoadRuntimeConfigFile(path, update.DefaultRuntimeConfig())
	if err != nil {
		return cfg, err
	}
	cfg = update.RuntimeConfigFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(cfg update.RuntimeConfig) (*slog.Logger, func(), error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	var w io.Writer = io.Discard
	closeFn := func() {}
	if cfg.LogPath != "" {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}

func newSignaler(cfg update.RuntimeConfig) timer.Signaler {
	var out timer.MultiSignaler
	if cfg.Bell {
		out = append(out, timer.BellSignaler{W: os.Stderr})
	}
	if cfg.DesktopNotifications {
		out = append(out, timer.NewDesktopSignaler("adhdash", "Time's up! Take a break."))
	}
	if len(out) == 0 {
		return timer.NoopSignaler{}
	}
	return out
}
