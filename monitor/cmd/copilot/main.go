package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/drivercopilot/drivercopilot/monitor/internal/alerts"
	"github.com/drivercopilot/drivercopilot/monitor/internal/config"
)

// envConfig names the config file when --config is not given.
const envConfig = "COPILOT_CONFIG"

var flagConfig string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "copilot",
		Short: "Driver Co-Pilot - terminal driver alertness monitor",
		Long: `Driver Co-Pilot simulates driver-monitoring detections, scores the
driver's alertness once per tick and raises graded fatigue alerts.

Without a subcommand the interactive dashboard starts. Use "simulate" for a
headless run that prints one JSON snapshot per tick.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadEnv,
		RunE:              runDashboard,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "",
		"path to config file (default $"+envConfig+", else built-in defaults)")

	root.AddCommand(newDashboardCmd(), newSimulateCmd())
	return root
}

// loadEnv reads an optional .env file and resolves the config path.
func loadEnv(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	if !cmd.Flags().Changed("config") {
		flagConfig = os.Getenv(envConfig)
	}
	return nil
}

// loadConfig loads the config and checks every rule condition parses.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := checkRules(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func checkRules(cfg *config.Config) error {
	for _, r := range cfg.Alerts.Rules {
		if err := alerts.ValidateCondition(r.Condition); err != nil {
			return fmt.Errorf("config: alerts.rules %q: %w", r.Name, err)
		}
	}
	return nil
}

// setupLogging installs a JSON slog default writing to w. The returned
// LevelVar lets config reloads change the level.
func setupLogging(w io.Writer, level slog.Level) *slog.LevelVar {
	lv := new(slog.LevelVar)
	lv.Set(level)
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv})))
	return lv
}
