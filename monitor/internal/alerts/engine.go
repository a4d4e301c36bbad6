package alerts

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/drivercopilot/drivercopilot/monitor/internal/config"
	"github.com/drivercopilot/drivercopilot/pkg/alertness"
	"github.com/drivercopilot/drivercopilot/pkg/types"
)

const (
	maxRuleHistory    = 50
	recentRuleWindow  = time.Hour
	defaultHistoryLen = config.DefaultAlertHistorySize
)

// Alert kinds.
const (
	KindLevel = "level"
	KindRule  = "rule"
)

// Alert states.
const (
	StateFiring   = "firing"
	StateResolved = "resolved"
)

// Alert is one alert event.
type Alert struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	SessionID  string          `json:"session_id"`
	Level      alertness.Level `json:"level,omitempty"`
	RuleName   string          `json:"rule_name,omitempty"`
	Severity   string          `json:"severity"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Action     string          `json:"action,omitempty"`
	Score      int             `json:"score"`
	Value      float64         `json:"value"`
	RaisedAt   time.Time       `json:"raised_at"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
	State      string          `json:"state"`
}

// Notifier plays the cue for an alert. Cue runs synchronously inside
// Observe, on the publishing goroutine, so it must not block.
type Notifier interface {
	Cue(a Alert)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Alert)

// Cue calls f(a).
func (f NotifierFunc) Cue(a Alert) { f(a) }

// LogNotifier stands in for an audio cue by logging it.
type LogNotifier struct{}

// Cue logs the alert at warn level.
func (LogNotifier) Cue(a Alert) {
	slog.Warn("alerts: cue",
		"kind", a.Kind,
		"level", a.Level,
		"rule", a.RuleName,
		"title", a.Title,
		"action", a.Action,
	)
}

// Engine evaluates level changes and rules against incoming snapshots.
//
// Engine is safe for concurrent use.
type Engine struct {
	notifier Notifier

	mu          sync.Mutex
	rules       []config.AlertRule
	historySize int
	muted       bool

	sessionID string
	level     alertness.Level
	history   []*Alert // level alerts, newest first

	active      map[string]*Alert    // key: rule name
	lastFire    map[string]time.Time // snapshot time of last fire per rule
	ruleHistory []*Alert             // resolved rule alerts, oldest first
}

// New creates an Engine from the alerts configuration. A nil notifier
// disables cues.
func New(cfg config.AlertsConfig, n Notifier) *Engine {
	e := &Engine{
		notifier: n,
		level:    alertness.LevelNone,
		active:   make(map[string]*Alert),
		lastFire: make(map[string]time.Time),
	}
	e.Apply(cfg)
	return e
}

// Apply replaces the rules, mute flag and history size. Rule state for
// rules that no longer exist is dropped.
func (e *Engine) Apply(cfg config.AlertsConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rules = append([]config.AlertRule(nil), cfg.Rules...)
	e.muted = cfg.Muted
	e.historySize = cfg.HistorySize
	if e.historySize <= 0 {
		e.historySize = defaultHistoryLen
	}
	if len(e.history) > e.historySize {
		e.history = e.history[:e.historySize]
	}

	keep := make(map[string]bool, len(e.rules))
	for _, r := range e.rules {
		keep[r.Name] = true
	}
	for name := range e.active {
		if !keep[name] {
			delete(e.active, name)
		}
	}
	for name := range e.lastFire {
		if !keep[name] {
			delete(e.lastFire, name)
		}
	}
}

// Observe processes one snapshot. It is registered as a hub observer so
// history is current before any subscriber sees the same snapshot.
func (e *Engine) Observe(snap types.Snapshot) {
	var cues []Alert

	e.mu.Lock()
	if !snap.Active {
		if e.sessionID != "" {
			e.resetSessionLocked(snap.Timestamp)
		}
		e.mu.Unlock()
		return
	}
	if snap.SessionID != e.sessionID {
		e.resetSessionLocked(snap.Timestamp)
		e.sessionID = snap.SessionID
	}

	if a := e.observeLevelLocked(snap); a != nil && !e.muted {
		cues = append(cues, *a)
	}
	for _, a := range e.evaluateRulesLocked(snap) {
		if !e.muted {
			cues = append(cues, a)
		}
	}
	e.mu.Unlock()

	if e.notifier != nil {
		for _, a := range cues {
			e.notifier.Cue(a)
		}
	}
}

// History returns copies of the recent level alerts, newest first.
func (e *Engine) History() []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Alert, 0, len(e.history))
	for _, a := range e.history {
		out = append(out, *a)
	}
	return out
}

// AlertCount returns the number of level alerts in history.
func (e *Engine) AlertCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.history)
}

// RuleAlerts returns copies of all firing rule alerts plus any resolved
// within the past hour of now, newest first.
func (e *Engine) RuleAlerts(now time.Time) []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := now.Add(-recentRuleWindow)
	out := make([]Alert, 0, len(e.active))
	for _, a := range e.active {
		out = append(out, *a)
	}
	for _, a := range e.ruleHistory {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RaisedAt.After(out[j].RaisedAt) })
	return out
}

// Level returns the level last observed for the running session.
func (e *Engine) Level() alertness.Level {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.level
}

// Muted reports whether cues are suppressed.
func (e *Engine) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// ToggleMute flips the mute flag and returns the new value.
func (e *Engine) ToggleMute() bool {
	e.mu.Lock()
	e.muted = !e.muted
	muted := e.muted
	e.mu.Unlock()
	slog.Info("alerts: mute changed", "muted", muted)
	return muted
}

// --- internal ---------------------------------------------------------------

func (e *Engine) observeLevelLocked(snap types.Snapshot) *Alert {
	lvl := snap.State.Level
	if lvl == e.level {
		return nil
	}
	prev := e.level
	e.level = lvl
	if lvl == alertness.LevelNone {
		slog.Info("alerts: level cleared", "session_id", snap.SessionID, "from", prev)
		return nil
	}

	p := Describe(lvl)
	a := &Alert{
		ID:        uuid.New().String(),
		Kind:      KindLevel,
		SessionID: snap.SessionID,
		Level:     lvl,
		Severity:  severityFor(lvl),
		Title:     p.Title,
		Message:   p.Message,
		Action:    p.Action,
		Score:     snap.State.Score,
		Value:     float64(snap.State.Score),
		RaisedAt:  snap.Timestamp,
		State:     StateFiring,
	}

	e.history = append([]*Alert{a}, e.history...)
	if len(e.history) > e.historySize {
		e.history = e.history[:e.historySize]
	}

	slog.Warn("alerts: level raised",
		"session_id", snap.SessionID,
		"from", prev,
		"to", lvl,
		"score", snap.State.Score,
	)
	return a
}

// evaluateRulesLocked returns the rule alerts that fired on this snapshot.
func (e *Engine) evaluateRulesLocked(snap types.Snapshot) []Alert {
	now := snap.Timestamp
	var fired []Alert

	for _, rule := range e.rules {
		fires, value := evalCondition(rule.Condition, snap)

		if fires {
			if _, firing := e.active[rule.Name]; firing {
				continue
			}
			cooldown := rule.Cooldown
			if cooldown <= 0 {
				cooldown = config.DefaultRuleCooldown
			}
			if last, ok := e.lastFire[rule.Name]; ok && now.Sub(last) < cooldown {
				continue
			}
			sev := rule.Severity
			if sev == "" {
				sev = "warning"
			}
			a := &Alert{
				ID:        uuid.New().String(),
				Kind:      KindRule,
				SessionID: snap.SessionID,
				Level:     snap.State.Level,
				RuleName:  rule.Name,
				Severity:  sev,
				Title:     rule.Name,
				Message: fmt.Sprintf("[%s] %s: %s (value %.2f)",
					sev, rule.Name, rule.Condition, value),
				Score:    snap.State.Score,
				Value:    value,
				RaisedAt: now,
				State:    StateFiring,
			}
			e.active[rule.Name] = a
			e.lastFire[rule.Name] = now
			fired = append(fired, *a)

			slog.Warn("alerts: rule fired",
				"rule", rule.Name,
				"session_id", snap.SessionID,
				"value", value,
				"severity", sev,
			)
			continue
		}

		if _, ok := e.active[rule.Name]; ok {
			e.resolveLocked(rule.Name, now)
		}
	}
	return fired
}

// resolveLocked moves the firing alert for rule into the resolved history.
func (e *Engine) resolveLocked(rule string, at time.Time) {
	a := e.active[rule]
	resolved := at
	a.State = StateResolved
	a.ResolvedAt = &resolved
	delete(e.active, rule)

	e.ruleHistory = append(e.ruleHistory, a)
	if len(e.ruleHistory) > maxRuleHistory {
		e.ruleHistory = e.ruleHistory[len(e.ruleHistory)-maxRuleHistory:]
	}
	slog.Info("alerts: rule resolved", "rule", rule, "session_id", a.SessionID)
}

// resetSessionLocked resolves still-firing rule alerts at time at and
// forgets per-session tracking. History survives.
func (e *Engine) resetSessionLocked(at time.Time) {
	names := make([]string, 0, len(e.active))
	for name := range e.active {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e.resolveLocked(name, at)
	}

	e.sessionID = ""
	e.level = alertness.LevelNone
	e.active = make(map[string]*Alert)
	e.lastFire = make(map[string]time.Time)
}
