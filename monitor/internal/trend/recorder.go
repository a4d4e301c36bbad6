package trend

import (
	"math"
	"sync"
	"time"

	"github.com/drivercopilot/drivercopilot/pkg/types"
)

// stableBand is the absolute change below which a metric counts as stable.
const stableBand = 2.0

// Direction classifies a metric's recent movement.
type Direction string

const (
	Stable     Direction = "stable"
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
)

// Point is one recorded observation.
type Point struct {
	Timestamp         time.Time `json:"timestamp"`
	Tick              int       `json:"tick"`
	BlinkRate         float64   `json:"blink_rate"`
	YawnCount         int       `json:"yawn_count"`
	HeadPoseStability float64   `json:"head_pose_stability"`
	Score             int       `json:"score"`
}

// Trends holds the direction of every tracked metric.
type Trends struct {
	BlinkRate         Direction `json:"blink_rate"`
	YawnCount         Direction `json:"yawn_count"`
	HeadPoseStability Direction `json:"head_pose_stability"`
	Score             Direction `json:"score"`
}

// allStable is reported until enough points exist.
var allStable = Trends{Stable, Stable, Stable, Stable}

// Recorder samples every Nth tick of a session into a bounded series.
//
// All exported methods are safe for concurrent use.
type Recorder struct {
	every int
	size  int

	mu        sync.RWMutex
	sessionID string
	points    []Point // oldest first
}

// New returns a Recorder that keeps size points, one every `every` ticks.
func New(every, size int) *Recorder {
	if every <= 0 {
		every = 1
	}
	if size < 3 {
		size = 3
	}
	return &Recorder{every: every, size: size}
}

// Observe records snap. It lets the hub run the recorder ahead of its
// subscribers.
func (r *Recorder) Observe(snap types.Snapshot) {
	r.Record(snap)
}

// Record considers snap for the series. Idle snapshots and a change of
// session clear it. It reports whether a point was appended.
func (r *Recorder) Record(snap types.Snapshot) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !snap.Active {
		r.sessionID = ""
		r.points = nil
		return false
	}
	if snap.SessionID != r.sessionID {
		r.sessionID = snap.SessionID
		r.points = nil
	}
	if snap.Ticks == 0 || snap.Ticks%r.every != 0 {
		return false
	}
	if n := len(r.points); n > 0 && r.points[n-1].Tick == snap.Ticks {
		return false
	}

	r.points = append(r.points, Point{
		Timestamp:         snap.Timestamp,
		Tick:              snap.Ticks,
		BlinkRate:         snap.Sample.BlinkRate,
		YawnCount:         snap.Sample.YawnCount,
		HeadPoseStability: snap.Sample.HeadPoseStability,
		Score:             snap.State.Score,
	})
	if len(r.points) > r.size {
		r.points = r.points[len(r.points)-r.size:]
	}
	return true
}

// Points returns a copy of the series, oldest first.
func (r *Recorder) Points() []Point {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Point(nil), r.points...)
}

// Trends classifies each metric from the last three points. With fewer than
// three points every metric is stable.
func (r *Recorder) Trends() Trends {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.points)
	if n < 3 {
		return allStable
	}
	p := r.points[n-3:]
	return Trends{
		BlinkRate:         classify(p[0].BlinkRate, p[1].BlinkRate, p[2].BlinkRate),
		YawnCount:         classify(float64(p[0].YawnCount), float64(p[1].YawnCount), float64(p[2].YawnCount)),
		HeadPoseStability: classify(p[0].HeadPoseStability, p[1].HeadPoseStability, p[2].HeadPoseStability),
		Score:             classify(float64(p[0].Score), float64(p[1].Score), float64(p[2].Score)),
	}
}

// classify compares the oldest value with the mean of the two newer ones.
func classify(oldest, mid, newest float64) Direction {
	diff := (mid+newest)/2 - oldest
	switch {
	case math.Abs(diff) < stableBand:
		return Stable
	case diff > 0:
		return Increasing
	default:
		return Decreasing
	}
}
