// Package types defines the Snapshot value shared by the session monitor and
// every presentation consumer (dashboard, alert engine, trend recorder,
// metrics writer). It is the canonical read-only output of one tick.
package types
