package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/drivercopilot/drivercopilot/monitor/internal/alerts"
	"github.com/drivercopilot/drivercopilot/monitor/internal/config"
	"github.com/drivercopilot/drivercopilot/monitor/internal/metrics"
	"github.com/drivercopilot/drivercopilot/monitor/internal/session"
	"github.com/drivercopilot/drivercopilot/monitor/internal/trend"
	"github.com/drivercopilot/drivercopilot/pkg/types"
)

var (
	flagTicks int
	flagSeed  int64
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a headless session and print one JSON snapshot per tick",
		Long: `simulate runs one monitoring session on a virtual clock, applying
--ticks ticks back to back, and writes each resulting snapshot to stdout as
a JSON line. With a fixed --seed the scores and levels are reproducible.
Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flagConfig)
			if err != nil {
				return err
			}
			setupLogging(cmd.ErrOrStderr(), cfg.Log.SlogLevel())

			if cmd.Flags().Changed("seed") {
				cfg.Monitor.Seed = flagSeed
			}
			if flagTicks <= 0 {
				return fmt.Errorf("--ticks must be positive")
			}
			return simulate(cmd.Context(), cmd.OutOrStdout(), cfg, flagTicks, time.Now())
		},
	}
	cmd.Flags().IntVar(&flagTicks, "ticks", 60, "number of ticks to apply")
	cmd.Flags().Int64Var(&flagSeed, "seed", 0, "random seed (0 = time-seeded)")
	return cmd
}

// simLine is one line of simulate output.
type simLine struct {
	types.Snapshot
	Alerts []alerts.Alert `json:"alerts,omitempty"`
	Trends *trend.Trends  `json:"trends,omitempty"`
}

// simulate runs a manual session for ticks ticks. The virtual clock starts
// at start and advances by the configured tick interval per tick.
func simulate(ctx context.Context, out io.Writer, cfg *config.Config, ticks int, start time.Time) error {
	clock := start
	var cues []alerts.Alert

	engine := alerts.New(cfg.Alerts, alerts.NotifierFunc(func(a alerts.Alert) {
		cues = append(cues, a)
	}))
	rec := trend.New(cfg.Trend.IntervalTicks, cfg.Trend.Size)
	mon := session.New(session.Options{
		Interval: cfg.Monitor.TickInterval,
		Seed:     cfg.Monitor.Seed,
		Manual:   true,
		Now:      func() time.Time { return clock },
	})

	var textfile *metrics.TextfileWriter
	if cfg.Metrics.TextfilePath != "" {
		textfile = metrics.NewTextfileWriter(cfg.Metrics.TextfilePath, engine)
	}

	if err := mon.Start(ctx); err != nil {
		return fmt.Errorf("simulate: %w", err)
	}
	defer mon.Stop() //nolint:errcheck // session always running here

	enc := json.NewEncoder(out)
	for i := 1; i <= ticks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		clock = start.Add(time.Duration(i) * cfg.Monitor.TickInterval)
		snap, ok := mon.Step(clock)
		if !ok {
			return fmt.Errorf("simulate: tick %d not applied", i)
		}

		cues = cues[:0]
		engine.Observe(snap)
		line := simLine{Snapshot: snap, Alerts: append([]alerts.Alert(nil), cues...)}
		if rec.Record(snap) {
			tr := rec.Trends()
			line.Trends = &tr
		}
		if textfile != nil {
			if err := textfile.Write(snap); err != nil {
				slog.Warn("simulate: metrics textfile write failed", "err", err)
			}
		}

		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("simulate: write snapshot: %w", err)
		}
	}

	slog.Info("simulate: done",
		"ticks", ticks,
		"score", mon.Snapshot().State.Score,
		"alerts", engine.AlertCount(),
	)
	return nil
}
