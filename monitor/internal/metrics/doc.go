// Package metrics writes the current session snapshot as a Prometheus text
// exposition file, for pickup by a node-exporter textfile collector.
//
// Families(snap, alerts) builds the metric families; TextfileWriter renders
// them with expfmt and replaces the target file atomically (temp file +
// rename) so a collector never reads a partial write. Nothing listens on a
// socket.
//
// Exported series. All are gauges: yawn and tick counts restart with every
// session, so they do not behave as Prometheus counters.
//
//	copilot_monitoring_active        gauge   1 while a session runs
//	copilot_alertness_score          gauge   20-100
//	copilot_alert_level              gauge   0 (none) to 3 (level3)
//	copilot_blink_rate               gauge   blinks/min
//	copilot_yawn_count               gauge   yawns this session
//	copilot_head_pose_stability      gauge   percent
//	copilot_session_ticks            gauge   ticks this session
//	copilot_alerts_recorded          gauge   level alerts in recent history
package metrics
