// Package hub fans out session snapshots to in-process consumers.
//
// Hub manages a set of subscribers and delivers every published
// types.Snapshot to each of them. Publish never blocks the session tick:
// each subscriber owns a bounded buffer, and when that buffer is full the
// oldest queued snapshot is evicted so the newest one always gets through.
//
// New() creates a Hub.
// Hub.Subscribe(name, buf) registers a consumer and returns a Subscription
// whose C channel receives snapshots; the channel is closed on Unsubscribe
// or Hub.Close.
// Hub.Observe(obs...) registers synchronous observers (the alert engine and
// trend recorder) that see each snapshot before any subscriber does.
// Hub.Publish(snap) is called by the session monitor once per tick.
package hub
