package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Valid(t *testing.T) {
	yaml := `
monitor:
  tick_interval: 500ms
  seed: 42
trend:
  interval_ticks: 5
  size: 30
alerts:
  muted: true
  history_size: 8
  rules:
    - name: blink-high
      condition: "blink_rate > 25"
      severity: critical
      cooldown: 30s
metrics:
  textfile_path: /tmp/copilot.prom
log:
  level: debug
  file: /tmp/copilot.log
`
	cfg := loadFromString(t, yaml)

	if cfg.Monitor.TickInterval != 500*time.Millisecond {
		t.Errorf("tick_interval: got %v", cfg.Monitor.TickInterval)
	}
	if cfg.Monitor.Seed != 42 {
		t.Errorf("seed: got %d", cfg.Monitor.Seed)
	}
	if cfg.Trend.IntervalTicks != 5 || cfg.Trend.Size != 30 {
		t.Errorf("trend: got %+v", cfg.Trend)
	}
	if !cfg.Alerts.Muted {
		t.Error("alerts.muted: got false")
	}
	if cfg.Alerts.HistorySize != 8 {
		t.Errorf("alerts.history_size: got %d", cfg.Alerts.HistorySize)
	}
	if len(cfg.Alerts.Rules) != 1 {
		t.Fatalf("rules: got %d, want 1", len(cfg.Alerts.Rules))
	}
	r := cfg.Alerts.Rules[0]
	if r.Name != "blink-high" || r.Severity != "critical" || r.Cooldown != 30*time.Second {
		t.Errorf("rule: got %+v", r)
	}
	if cfg.Metrics.TextfilePath != "/tmp/copilot.prom" {
		t.Errorf("metrics.textfile_path: got %q", cfg.Metrics.TextfilePath)
	}
	if cfg.Log.SlogLevel() != slog.LevelDebug {
		t.Errorf("log level: got %v", cfg.Log.SlogLevel())
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadFromString(t, "monitor: {}\n")

	if cfg.Monitor.TickInterval != DefaultTickInterval {
		t.Errorf("default tick_interval: got %v, want %v", cfg.Monitor.TickInterval, DefaultTickInterval)
	}
	if cfg.Trend.IntervalTicks != DefaultTrendIntervalTicks {
		t.Errorf("default interval_ticks: got %d", cfg.Trend.IntervalTicks)
	}
	if cfg.Trend.Size != DefaultTrendSize {
		t.Errorf("default trend size: got %d", cfg.Trend.Size)
	}
	if cfg.Alerts.HistorySize != DefaultAlertHistorySize {
		t.Errorf("default history_size: got %d", cfg.Alerts.HistorySize)
	}
	if cfg.Log.File != DefaultLogFile {
		t.Errorf("default log file: got %q", cfg.Log.File)
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Monitor.TickInterval != DefaultTickInterval {
		t.Errorf("tick_interval: got %v", cfg.Monitor.TickInterval)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoad_RuleDefaults(t *testing.T) {
	yaml := `
alerts:
  rules:
    - name: yawns
      condition: "yawn_count >= 6"
`
	cfg := loadFromString(t, yaml)
	r := cfg.Alerts.Rules[0]
	if r.Severity != "warning" {
		t.Errorf("default severity: got %q", r.Severity)
	}
	if r.Cooldown != DefaultRuleCooldown {
		t.Errorf("default cooldown: got %v", r.Cooldown)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative tick interval", "monitor:\n  tick_interval: -1s\n"},
		{"zero trend interval", "trend:\n  interval_ticks: 0\n"},
		{"trend too small", "trend:\n  size: 2\n"},
		{"zero alert history", "alerts:\n  history_size: 0\n"},
		{"unknown log level", "log:\n  level: chatty\n"},
		{"rule without name", "alerts:\n  rules:\n    - condition: \"score < 50\"\n"},
		{"malformed condition", "alerts:\n  rules:\n    - name: x\n      condition: \"score<50\"\n"},
		{"unknown severity", "alerts:\n  rules:\n    - name: x\n      condition: \"score < 50\"\n      severity: loud\n"},
		{"duplicate rule", "alerts:\n  rules:\n    - name: x\n      condition: \"score < 50\"\n    - name: x\n      condition: \"score < 40\"\n"},
		{"bad yaml", "monitor: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := loadStringErr(t, tc.yaml); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvSeed, "1234")

	cfg := loadFromString(t, "log:\n  level: debug\n")
	if cfg.Log.Level != "warn" {
		t.Errorf("log level: got %q, want warn", cfg.Log.Level)
	}
	if cfg.Monitor.Seed != 1234 {
		t.Errorf("seed: got %d, want 1234", cfg.Monitor.Seed)
	}
}

func TestLoad_BadSeedEnv(t *testing.T) {
	t.Setenv(EnvSeed, "not-a-number")
	if _, err := loadStringErr(t, "monitor: {}\n"); err == nil {
		t.Fatal("expected error for bad seed override, got nil")
	}
}

func TestLogConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := (LogConfig{Level: tc.in}).SlogLevel(); got != tc.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

// loadFromString writes yaml to a temp file and calls Load, failing on error.
func loadFromString(t *testing.T, content string) *Config {
	t.Helper()
	cfg, err := loadStringErr(t, content)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	return cfg
}

// loadStringErr writes yaml to a temp file and calls Load, returning any error.
func loadStringErr(t *testing.T, content string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "copilot.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return Load(path)
}
