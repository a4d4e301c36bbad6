// Package config loads and watches the co-pilot configuration file
// (copilot.yaml).
//
// Top-level types:
//   - Config{Monitor, Trend, Alerts, Metrics, Log}: full tree parsed from YAML
//   - MonitorConfig: tick_interval, seed (0 = seeded from the clock)
//   - TrendConfig: interval_ticks, size
//   - AlertsConfig: muted, history_size, rules []
//   - AlertRule: name, condition ("score < 50", "level == level3"), severity,
//     cooldown
//   - MetricsConfig: textfile_path (empty disables the writer)
//   - LogConfig: level (debug|info|warn|error), file
//
// Load(path) reads the YAML file, applies defaults (1s tick, 10-tick trend
// interval, 20 trend points, 5 alerts, info logging to copilot.log), applies
// environment overrides, then validates. An empty path yields the defaults.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. The caller decides which fields are
// hot-reloadable; the session timer keeps its interval until restart.
package config
