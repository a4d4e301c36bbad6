package types

import (
	"fmt"
	"time"

	"github.com/drivercopilot/drivercopilot/pkg/alertness"
)

// Snapshot is the monitor's output for one tick. Consumers must treat it as
// read-only; it is passed by value.
type Snapshot struct {
	SessionID    string           `json:"session_id,omitempty"`
	Active       bool             `json:"active"`
	Ticks        int              `json:"ticks"`
	TripDuration time.Duration    `json:"trip_duration"`
	StartedAt    time.Time        `json:"started_at,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
	Sample       alertness.Sample `json:"sample"`
	State        alertness.State  `json:"state"`
}

// Idle returns the snapshot reported while no session is running.
func Idle(now time.Time) Snapshot {
	return Snapshot{
		Timestamp: now,
		Sample:    alertness.DefaultSample(),
		State:     alertness.DefaultState(),
	}
}

// TripClock formats TripDuration as m:ss, or h:mm:ss past the first hour.
func (s Snapshot) TripClock() string {
	total := int(s.TripDuration / time.Second)
	h, m, sec := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
