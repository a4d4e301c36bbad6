package hub

import (
	"log/slog"
	"sync"

	"github.com/drivercopilot/drivercopilot/pkg/types"
)

// DefaultBuffer is the per-subscriber queue depth used when Subscribe is
// given a non-positive size.
const DefaultBuffer = 16

// Subscription is one consumer's view of the hub.
type Subscription struct {
	// C receives snapshots in publish order. It is closed when the
	// subscription ends.
	C <-chan types.Snapshot

	name    string
	ch      chan types.Snapshot
	hub     *Hub
	dropped int
}

// Name returns the label given at Subscribe time.
func (s *Subscription) Name() string { return s.name }

// Dropped returns how many snapshots were evicted because the consumer fell
// behind.
func (s *Subscription) Dropped() int {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	return s.dropped
}

// Unsubscribe removes the subscription and closes C. Safe to call more than
// once.
func (s *Subscription) Unsubscribe() {
	s.hub.remove(s)
}

// Observer sees every snapshot synchronously, before any subscriber.
// *alerts.Engine satisfies it.
type Observer interface {
	Observe(types.Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(types.Snapshot)

// Observe calls f(snap).
func (f ObserverFunc) Observe(snap types.Snapshot) { f(snap) }

// Hub broadcasts snapshots to all subscribers.
//
// All exported methods are safe for concurrent use.
type Hub struct {
	mu        sync.Mutex
	observers []Observer
	subs      map[*Subscription]struct{}
	closed    bool
}

// New creates an empty Hub.
func New() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a consumer with a queue of buf snapshots.
// Subscribing to a closed hub returns a subscription whose channel is
// already closed.
func (h *Hub) Subscribe(name string, buf int) *Subscription {
	if buf <= 0 {
		buf = DefaultBuffer
	}
	ch := make(chan types.Snapshot, buf)
	s := &Subscription{C: ch, name: name, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// Observe registers observers, run in order on every Publish. Observers run
// with the hub locked and must not call back into it.
func (h *Hub) Observe(obs ...Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers = append(h.observers, obs...)
}

// Publish runs the observers on snap, then delivers it to every subscriber
// without blocking. A subscriber whose queue is full loses its oldest queued
// snapshot. Subscribers reading derived state from an observer therefore
// always see it updated for the snapshot they receive.
func (h *Hub) Publish(snap types.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	for _, o := range h.observers {
		o.Observe(snap)
	}

	for s := range h.subs {
		select {
		case s.ch <- snap:
			continue
		default:
		}
		// Queue full: drop the oldest, keep the newest. Only Publish sends,
		// and it holds mu, so the second send cannot block.
		select {
		case <-s.ch:
			s.dropped++
			slog.Debug("hub: subscriber behind, evicted oldest snapshot",
				"subscriber", s.name, "buffer_cap", cap(s.ch))
		default:
		}
		s.ch <- snap
	}
}

// Count returns the number of active subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every subscription. Later Publish calls are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		close(s.ch)
		delete(h.subs, s)
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.ch)
	}
}
