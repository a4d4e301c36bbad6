package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/drivercopilot/drivercopilot/monitor/internal/alerts"
	"github.com/drivercopilot/drivercopilot/monitor/internal/config"
	"github.com/drivercopilot/drivercopilot/monitor/internal/dashboard"
	"github.com/drivercopilot/drivercopilot/monitor/internal/hub"
	"github.com/drivercopilot/drivercopilot/monitor/internal/metrics"
	"github.com/drivercopilot/drivercopilot/monitor/internal/session"
	"github.com/drivercopilot/drivercopilot/monitor/internal/trend"
)

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Run the interactive terminal dashboard (default)",
		RunE:  runDashboard,
	}
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI; logs go to a file.
	logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	level := setupLogging(logFile, cfg.Log.SlogLevel())

	slog.Info("copilot dashboard starting",
		"config", flagConfig,
		"tick_interval", cfg.Monitor.TickInterval,
		"rules", len(cfg.Alerts.Rules),
		"metrics_textfile", cfg.Metrics.TextfilePath,
	)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	h := hub.New()
	defer h.Close()

	engine := alerts.New(cfg.Alerts, alerts.LogNotifier{})
	rec := trend.New(cfg.Trend.IntervalTicks, cfg.Trend.Size)
	mon := session.New(session.Options{
		Interval:  cfg.Monitor.TickInterval,
		Seed:      cfg.Monitor.Seed,
		Publisher: h,
	})

	// Alerts and trends update before the dashboard and metrics writer
	// receive the same snapshot.
	h.Observe(engine, rec)

	if path := cfg.Metrics.TextfilePath; path != "" {
		w := metrics.NewTextfileWriter(path, engine)
		if err := w.Write(mon.Snapshot()); err != nil {
			slog.Warn("initial metrics textfile write failed", "path", path, "err", err)
		}
		go w.Run(ctx, h.Subscribe("metrics", 0))
	}

	if flagConfig != "" {
		go watchConfig(ctx, flagConfig, engine, level)
	}

	model := dashboard.New(ctx, mon, engine, rec, h.Subscribe("dashboard", 0))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()

	if mon.Active() {
		_ = mon.Stop()
	}
	slog.Info("copilot dashboard shutting down")

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// watchConfig applies alert settings and the log level on every valid
// reload. Tick interval and seed take effect on the next restart.
func watchConfig(ctx context.Context, path string, engine *alerts.Engine, level *slog.LevelVar) {
	err := config.Watch(ctx, path, func(updated *config.Config) {
		if err := checkRules(updated); err != nil {
			slog.Error("config reload rejected", "err", err)
			return
		}
		engine.Apply(updated.Alerts)
		level.Set(updated.Log.SlogLevel())
		slog.Info("config hot-reloaded",
			"muted", updated.Alerts.Muted,
			"rules", len(updated.Alerts.Rules),
			"log_level", updated.Log.Level,
		)
	})
	if err != nil {
		slog.Error("config watcher stopped", "err", err)
	}
}
