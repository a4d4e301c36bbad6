// Package dashboard is the terminal UI for a monitoring session.
//
// Model is a Bubble Tea model. It never drives the evaluator itself: it
// renders whatever the session publishes through its hub subscription and
// forwards the driver's key presses to the session controller and alert
// engine.
//
// Keys:
//
//	s, space   start or stop monitoring
//	m          mute or unmute alert cues
//	q, ctrl+c  stop monitoring and quit
package dashboard
