package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/drivercopilot/drivercopilot/pkg/alertness"
	"github.com/drivercopilot/drivercopilot/pkg/types"
)

// Errors returned by Start and Stop.
var (
	ErrAlreadyRunning = errors.New("session: monitoring already running")
	ErrNotRunning     = errors.New("session: monitoring not running")
)

// Publisher receives a snapshot after every tick and on every lifecycle
// change. Publish is called with the monitor's lock held, so it must not
// block or call back into the Monitor. *hub.Hub satisfies it.
type Publisher interface {
	Publish(types.Snapshot)
}

// Options configures a Monitor.
type Options struct {
	// Interval is the tick period. Required.
	Interval time.Duration

	// Seed fixes the random source for every session. Zero seeds from the
	// clock at Start.
	Seed int64

	// Publisher receives snapshots. Optional.
	Publisher Publisher

	// Manual disables the internal timer. Ticks are applied only by Step,
	// and the session ends only on Stop.
	Manual bool

	// Now and NewRandom are injectable for deterministic tests.
	Now       func() time.Time
	NewRandom func(seed int64) alertness.Random
}

// Monitor runs monitoring sessions.
//
// All exported methods are safe for concurrent use.
type Monitor struct {
	interval  time.Duration
	seed      int64
	pub       Publisher
	manual    bool
	now       func() time.Time
	newRandom func(int64) alertness.Random

	mu        sync.Mutex
	active    bool
	sessionID string
	startedAt time.Time
	ticks     int
	sample    alertness.Sample
	state     alertness.State
	rnd       alertness.Random
	cancel    context.CancelFunc
	done      chan struct{}

	gen     atomic.Uint64 // incremented on every Start; stale loops compare against it
	inTick  atomic.Bool
	skipped atomic.Int64
}

// New returns an idle Monitor.
func New(opts Options) *Monitor {
	m := &Monitor{
		interval:  opts.Interval,
		seed:      opts.Seed,
		pub:       opts.Publisher,
		manual:    opts.Manual,
		now:       opts.Now,
		newRandom: opts.NewRandom,
	}
	if m.interval <= 0 {
		m.interval = time.Second
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newRandom == nil {
		m.newRandom = alertness.NewRandom
	}
	m.resetLocked()
	return m
}

// Start begins a new session and its timer. The timer stops when Stop is
// called or ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active {
		return ErrAlreadyRunning
	}

	now := m.now()
	seed := m.seed
	if seed == 0 {
		seed = now.UnixNano()
	}

	m.resetLocked()
	gen := m.gen.Add(1)
	m.active = true
	m.sessionID = uuid.New().String()
	m.startedAt = now
	m.rnd = m.newRandom(seed)

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	if m.manual {
		close(m.done)
	} else {
		go m.run(loopCtx, gen, m.done)
	}

	slog.Info("session: started",
		"session_id", m.sessionID,
		"interval", m.interval,
		"manual", m.manual,
		"seed", seed,
	)
	m.publishLocked(now)
	return nil
}

// Stop ends the running session. When Stop returns the timer goroutine has
// exited and no further tick will be applied. All session state is
// discarded.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return ErrNotRunning
	}

	id, ticks := m.sessionID, m.ticks
	m.cancel()
	done := m.done
	m.resetLocked()
	m.publishLocked(m.now())
	m.mu.Unlock()

	<-done

	slog.Info("session: stopped", "session_id", id, "ticks", ticks)
	return nil
}

// Toggle starts monitoring when idle and stops it when running. It returns
// whether monitoring is active afterwards.
func (m *Monitor) Toggle(ctx context.Context) (bool, error) {
	if m.Active() {
		return false, m.Stop()
	}
	return true, m.Start(ctx)
}

// Active reports whether a session is running.
func (m *Monitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Step applies one tick to the running session at time now and returns the
// resulting snapshot. It returns false without changing anything when no
// session is running or another tick is still being applied.
func (m *Monitor) Step(now time.Time) (types.Snapshot, bool) {
	return m.step(m.gen.Load(), now)
}

// Snapshot returns the current read-only output.
func (m *Monitor) Snapshot() types.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(m.now())
}

// Skipped returns how many ticks were dropped because a previous tick was
// still in progress.
func (m *Monitor) Skipped() int64 {
	return m.skipped.Load()
}

// --- internal ---------------------------------------------------------------

func (m *Monitor) run(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	t := time.NewTicker(m.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			m.expire(gen)
			return
		case now := <-t.C:
			// A tick and a cancellation can be ready together; never apply
			// a tick once cancellation is visible.
			if ctx.Err() != nil {
				m.expire(gen)
				return
			}
			m.step(gen, now)
		}
	}
}

func (m *Monitor) step(gen uint64, now time.Time) (types.Snapshot, bool) {
	if !m.inTick.CompareAndSwap(false, true) {
		m.skipped.Add(1)
		slog.Warn("session: tick skipped, previous tick still running")
		return types.Snapshot{}, false
	}
	defer m.inTick.Store(false)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active || m.gen.Load() != gen {
		return types.Snapshot{}, false
	}

	prevLevel := m.state.Level
	m.sample, m.state = alertness.Tick(m.sample, m.rnd)
	m.ticks++

	if m.state.Level != prevLevel {
		slog.Info("session: alert level changed",
			"session_id", m.sessionID,
			"from", prevLevel,
			"to", m.state.Level,
			"score", m.state.Score,
		)
	}
	slog.Debug("session: tick",
		"session_id", m.sessionID,
		"tick", m.ticks,
		"score", m.state.Score,
		"level", m.state.Level,
	)

	return m.publishLocked(now), true
}

// expire ends a session whose parent context was cancelled without Stop.
func (m *Monitor) expire(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active || m.gen.Load() != gen {
		return
	}
	slog.Info("session: context cancelled, ending session", "session_id", m.sessionID)
	m.resetLocked()
	m.publishLocked(m.now())
}

func (m *Monitor) resetLocked() {
	m.active = false
	m.sessionID = ""
	m.startedAt = time.Time{}
	m.ticks = 0
	m.sample = alertness.DefaultSample()
	m.state = alertness.DefaultState()
	m.rnd = nil
	m.cancel = nil
}

func (m *Monitor) snapshotLocked(now time.Time) types.Snapshot {
	if !m.active {
		return types.Idle(now)
	}
	return types.Snapshot{
		SessionID:    m.sessionID,
		Active:       true,
		Ticks:        m.ticks,
		TripDuration: time.Duration(m.ticks) * m.interval,
		StartedAt:    m.startedAt,
		Timestamp:    now,
		Sample:       m.sample,
		State:        m.state,
	}
}

func (m *Monitor) publishLocked(now time.Time) types.Snapshot {
	snap := m.snapshotLocked(now)
	if m.pub != nil {
		m.pub.Publish(snap)
	}
	return snap
}
