// Package alerts turns the snapshot stream into driver-facing alerts.
// Level alerts are recorded whenever the alert level rises or falls into a
// non-none level; configured rules fire and resolve against each snapshot
// with a per-rule cooldown measured on snapshot time.
package alerts
