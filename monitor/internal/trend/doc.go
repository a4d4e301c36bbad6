// Package trend keeps a short in-memory series of session data points and
// classifies each metric as stable, increasing or decreasing.
package trend
