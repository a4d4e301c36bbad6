// Package session owns the monitoring lifecycle: one Monitor drives the
// alertness evaluator from a single fixed-period timer and publishes a
// types.Snapshot after every tick.
//
// Start resets the sample and state to their documented defaults, assigns a
// new session ID and seeds a fresh random source. Stop cancels the timer and
// waits for the loop goroutine to exit, so no tick is applied once Stop
// returns. Step applies exactly one tick and is what the timer calls; tests
// call it directly with an explicit time instead of sleeping.
//
// With Options.Manual the timer is not started and only Step advances the
// session, which is how headless runs replay a session on a virtual clock.
//
// Ticks never overlap: a tick that arrives while another is still being
// applied is skipped and counted.
package session
