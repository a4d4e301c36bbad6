package alerts

import (
	"sync"
	"testing"
	"time"

	"github.com/drivercopilot/drivercopilot/monitor/internal/config"
	"github.com/drivercopilot/drivercopilot/pkg/alertness"
	"github.com/drivercopilot/drivercopilot/pkg/types"
)

// baseTime is a fixed reference point so all test timings are deterministic.
var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func at(sec int) time.Time {
	return baseTime.Add(time.Duration(sec) * time.Second)
}

// scored builds an active snapshot for session id at second sec with score.
func scored(id string, sec, score int) types.Snapshot {
	return types.Snapshot{
		SessionID: id,
		Active:    true,
		Ticks:     sec,
		Timestamp: at(sec),
		Sample:    alertness.DefaultSample(),
		State:     alertness.State{Score: score, Level: alertness.LevelFor(score)},
	}
}

// cueRecorder collects cues.
type cueRecorder struct {
	mu   sync.Mutex
	cues []Alert
}

func (c *cueRecorder) Cue(a Alert) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cues = append(c.cues, a)
}

func (c *cueRecorder) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cues)
}

func TestEngine_RecordsLevelChanges(t *testing.T) {
	rec := &cueRecorder{}
	e := New(config.AlertsConfig{HistorySize: 5}, rec)

	e.Observe(scored("s", 0, 85)) // none
	e.Observe(scored("s", 1, 70)) // level1
	e.Observe(scored("s", 2, 72)) // still level1, no new alert
	e.Observe(scored("s", 3, 50)) // level2
	e.Observe(scored("s", 4, 80)) // none: clears, no alert
	e.Observe(scored("s", 5, 30)) // level3

	h := e.History()
	if len(h) != 3 {
		t.Fatalf("History len = %d, want 3", len(h))
	}
	wantLevels := []alertness.Level{alertness.Level3, alertness.Level2, alertness.Level1}
	for i, want := range wantLevels {
		if h[i].Level != want {
			t.Errorf("History[%d].Level = %q, want %q", i, h[i].Level, want)
		}
	}
	if h[0].Title != "Critical Alert - Immediate Action Required" || h[0].Severity != "critical" {
		t.Errorf("level3 alert = %+v", h[0])
	}
	if h[0].Score != 30 || !h[0].RaisedAt.Equal(at(5)) {
		t.Errorf("level3 alert score/time = %d/%v", h[0].Score, h[0].RaisedAt)
	}
	if rec.count() != 3 {
		t.Errorf("cues = %d, want 3", rec.count())
	}
	if e.Level() != alertness.Level3 {
		t.Errorf("Level() = %q", e.Level())
	}
}

func TestEngine_HistoryCapped(t *testing.T) {
	e := New(config.AlertsConfig{HistorySize: 5}, nil)
	scores := []int{70, 80, 50, 80, 30, 80, 70, 80, 50, 80, 30}
	for i, s := range scores {
		e.Observe(scored("s", i, s))
	}
	h := e.History()
	if len(h) != 5 {
		t.Fatalf("History len = %d, want 5", len(h))
	}
	if h[0].Level != alertness.Level3 || !h[0].RaisedAt.Equal(at(10)) {
		t.Errorf("newest alert = %+v", h[0])
	}
}

func TestEngine_MuteSuppressesCuesOnly(t *testing.T) {
	rec := &cueRecorder{}
	e := New(config.AlertsConfig{Muted: true}, rec)

	e.Observe(scored("s", 0, 50))
	if rec.count() != 0 {
		t.Errorf("muted engine played %d cues", rec.count())
	}
	if len(e.History()) != 1 {
		t.Errorf("muted engine should still record history")
	}

	if muted := e.ToggleMute(); muted {
		t.Fatal("ToggleMute() should unmute")
	}
	e.Observe(scored("s", 1, 30))
	if rec.count() != 1 {
		t.Errorf("cues after unmute = %d, want 1", rec.count())
	}

	if muted := e.ToggleMute(); !muted || !e.Muted() {
		t.Error("second ToggleMute() should mute again")
	}
}

func TestEngine_StopResetsLevelTracker(t *testing.T) {
	e := New(config.AlertsConfig{}, nil)
	e.Observe(scored("a", 0, 50))
	e.Observe(types.Idle(at(1)))

	if e.Level() != alertness.LevelNone {
		t.Errorf("Level() after stop = %q, want none", e.Level())
	}

	// Same level in a new session counts as a new alert.
	e.Observe(scored("b", 2, 50))
	if len(e.History()) != 2 {
		t.Errorf("History len = %d, want 2", len(e.History()))
	}
}

func TestEngine_NewSessionResetsWithoutIdle(t *testing.T) {
	e := New(config.AlertsConfig{}, nil)
	e.Observe(scored("a", 0, 50))
	e.Observe(scored("b", 1, 50))
	if len(e.History()) != 2 {
		t.Errorf("History len = %d, want 2", len(e.History()))
	}
}

func TestEngine_RuleFiresResolvesAndCoolsDown(t *testing.T) {
	rec := &cueRecorder{}
	e := New(config.AlertsConfig{
		Rules: []config.AlertRule{{
			Name:      "low-score",
			Condition: "score < 90",
			Severity:  "critical",
			Cooldown:  10 * time.Second,
		}},
	}, rec)

	e.Observe(scored("s", 0, 95))
	if got := e.RuleAlerts(at(0)); len(got) != 0 {
		t.Fatalf("rule fired early: %+v", got)
	}

	e.Observe(scored("s", 1, 85)) // fires
	e.Observe(scored("s", 2, 85)) // still firing, no duplicate
	got := e.RuleAlerts(at(2))
	if len(got) != 1 || got[0].State != StateFiring || got[0].Severity != "critical" {
		t.Fatalf("RuleAlerts = %+v", got)
	}
	if got[0].Value != 85 {
		t.Errorf("Value = %.2f, want 85", got[0].Value)
	}

	e.Observe(scored("s", 3, 95)) // resolves
	got = e.RuleAlerts(at(3))
	if len(got) != 1 || got[0].State != StateResolved || got[0].ResolvedAt == nil {
		t.Fatalf("RuleAlerts after resolve = %+v", got)
	}

	e.Observe(scored("s", 5, 85)) // within cooldown, suppressed
	if n := countFiring(e.RuleAlerts(at(5))); n != 0 {
		t.Errorf("fired within cooldown: %d firing", n)
	}

	e.Observe(scored("s", 11, 85)) // cooldown elapsed
	if n := countFiring(e.RuleAlerts(at(11))); n != 1 {
		t.Errorf("firing after cooldown = %d, want 1", n)
	}

	// Resolved entries age out after an hour.
	if got := e.RuleAlerts(at(11).Add(2 * time.Hour)); len(got) != 1 {
		t.Errorf("RuleAlerts two hours later = %d entries, want only the firing one", len(got))
	}

	// Two level alerts never fire here (score 85/95 is none), so every cue is a rule.
	if rec.count() != 2 {
		t.Errorf("cues = %d, want 2", rec.count())
	}
}

func TestEngine_ApplyDropsRemovedRules(t *testing.T) {
	cfg := config.AlertsConfig{Rules: []config.AlertRule{
		{Name: "yawns", Condition: "yawn_count >= 2", Cooldown: time.Second},
	}}
	e := New(cfg, nil)
	e.Observe(scored("s", 0, 90))
	if n := countFiring(e.RuleAlerts(at(0))); n != 1 {
		t.Fatalf("firing = %d, want 1", n)
	}

	e.Apply(config.AlertsConfig{Muted: true, HistorySize: 2})
	if n := countFiring(e.RuleAlerts(at(1))); n != 0 {
		t.Errorf("removed rule still firing")
	}
	if !e.Muted() {
		t.Error("Apply did not set muted")
	}
}

func TestEngine_StopResolvesFiringRules(t *testing.T) {
	e := New(config.AlertsConfig{Rules: []config.AlertRule{
		{Name: "yawns", Condition: "yawn_count >= 2", Severity: "info", Cooldown: time.Minute},
	}}, nil)

	e.Observe(scored("a", 1, 90))
	if n := countFiring(e.RuleAlerts(at(1))); n != 1 {
		t.Fatalf("firing = %d, want 1", n)
	}

	e.Observe(types.Idle(at(4)))

	got := e.RuleAlerts(at(4))
	if len(got) != 1 {
		t.Fatalf("RuleAlerts after stop = %+v, want one resolved entry", got)
	}
	if got[0].State != StateResolved || got[0].ResolvedAt == nil || !got[0].ResolvedAt.Equal(at(4)) {
		t.Errorf("alert after stop = state %q resolved_at %v, want resolved at %v",
			got[0].State, got[0].ResolvedAt, at(4))
	}
	if got[0].SessionID != "a" {
		t.Errorf("SessionID = %q, want a", got[0].SessionID)
	}
}

func TestEngine_NewSessionResolvesFiringRules(t *testing.T) {
	e := New(config.AlertsConfig{Rules: []config.AlertRule{
		{Name: "yawns", Condition: "yawn_count >= 2", Cooldown: time.Minute},
	}}, nil)

	e.Observe(scored("a", 1, 90))
	e.Observe(scored("b", 2, 90))

	var resolved, firing int
	for _, a := range e.RuleAlerts(at(2)) {
		switch {
		case a.State == StateResolved && a.SessionID == "a":
			resolved++
		case a.State == StateFiring && a.SessionID == "b":
			firing++
		}
	}
	if resolved != 1 || firing != 1 {
		t.Errorf("resolved(a)=%d firing(b)=%d, want 1 and 1", resolved, firing)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(alertness.Level1).Title; got != "Mild Fatigue Detected" {
		t.Errorf("Describe(level1).Title = %q", got)
	}
	if got := Describe(alertness.Level("??")).Title; got != "All Clear" {
		t.Errorf("Describe(unknown).Title = %q", got)
	}
}

func countFiring(as []Alert) int {
	n := 0
	for _, a := range as {
		if a.State == StateFiring {
			n++
		}
	}
	return n
}
