package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultTickInterval       = time.Second
	DefaultTrendIntervalTicks = 10
	DefaultTrendSize          = 20
	DefaultAlertHistorySize   = 5
	DefaultRuleCooldown       = time.Minute
	DefaultLogLevel           = "info"
	DefaultLogFile            = "copilot.log"
)

// Environment variables that override file values.
const (
	EnvLogLevel = "COPILOT_LOG_LEVEL"
	EnvSeed     = "COPILOT_SEED"
)

// Config is the top-level co-pilot configuration.
type Config struct {
	Monitor MonitorConfig `yaml:"monitor"`
	Trend   TrendConfig   `yaml:"trend"`
	Alerts  AlertsConfig  `yaml:"alerts"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// MonitorConfig controls the session timer.
type MonitorConfig struct {
	// TickInterval is the evaluator period.
	TickInterval time.Duration `yaml:"tick_interval"`

	// Seed fixes the random source for every session. Zero seeds from the
	// clock at session start.
	Seed int64 `yaml:"seed"`
}

// TrendConfig controls the trend recorder.
type TrendConfig struct {
	// IntervalTicks is how many ticks pass between recorded data points.
	IntervalTicks int `yaml:"interval_ticks"`

	// Size is the number of data points kept.
	Size int `yaml:"size"`
}

// AlertsConfig holds the alert panel settings and optional rules.
type AlertsConfig struct {
	// Muted suppresses alert cues. History is still recorded.
	Muted bool `yaml:"muted"`

	// HistorySize caps the recent-alert list.
	HistorySize int `yaml:"history_size"`

	Rules []AlertRule `yaml:"rules"`
}

// AlertRule defines a threshold-based condition evaluated every tick.
type AlertRule struct {
	// Name is the human-readable rule identifier.
	Name string `yaml:"name"`

	// Condition is an expression like "blink_rate > 25" or "level == level3".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after the rule fires.
	Cooldown time.Duration `yaml:"cooldown"`
}

// MetricsConfig configures the Prometheus textfile writer.
type MetricsConfig struct {
	// TextfilePath is where the exposition file is written each tick.
	TextfilePath string `yaml:"textfile_path"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// SlogLevel converts Level to a slog.Level. Unknown values map to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults. An empty path returns
// the defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	for i := range cfg.Alerts.Rules {
		r := &cfg.Alerts.Rules[i]
		if r.Severity == "" {
			r.Severity = "warning"
		}
		if r.Cooldown == 0 {
			r.Cooldown = DefaultRuleCooldown
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a Config pre-populated with default values.
func Defaults() *Config {
	return &Config{
		Monitor: MonitorConfig{
			TickInterval: DefaultTickInterval,
		},
		Trend: TrendConfig{
			IntervalTicks: DefaultTrendIntervalTicks,
			Size:          DefaultTrendSize,
		},
		Alerts: AlertsConfig{
			HistorySize: DefaultAlertHistorySize,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
			File:  DefaultLogFile,
		},
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvSeed); v != "" {
		var seed int64
		if _, err := fmt.Sscanf(v, "%d", &seed); err != nil {
			return fmt.Errorf("%s: %q is not an integer", EnvSeed, v)
		}
		cfg.Monitor.Seed = seed
	}
	return nil
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Monitor.TickInterval <= 0 {
		return fmt.Errorf("monitor.tick_interval must be positive")
	}
	if cfg.Trend.IntervalTicks <= 0 {
		return fmt.Errorf("trend.interval_ticks must be positive")
	}
	if cfg.Trend.Size < 3 {
		return fmt.Errorf("trend.size must be at least 3")
	}
	if cfg.Alerts.HistorySize <= 0 {
		return fmt.Errorf("alerts.history_size must be positive")
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}
	seen := make(map[string]bool, len(cfg.Alerts.Rules))
	for i, r := range cfg.Alerts.Rules {
		if r.Name == "" {
			return fmt.Errorf("alerts.rules[%d]: name is required", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("alerts.rules[%d]: duplicate name %q", i, r.Name)
		}
		seen[r.Name] = true
		if len(strings.Fields(r.Condition)) != 3 {
			return fmt.Errorf("alerts.rules[%d] %q: condition must be \"field op value\"", i, r.Name)
		}
		switch r.Severity {
		case "critical", "warning", "info":
		default:
			return fmt.Errorf("alerts.rules[%d] %q: unknown severity %q", i, r.Name, r.Severity)
		}
		if r.Cooldown < 0 {
			return fmt.Errorf("alerts.rules[%d] %q: cooldown must not be negative", i, r.Name)
		}
	}
	return nil
}
