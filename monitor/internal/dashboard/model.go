package dashboard

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drivercopilot/drivercopilot/monitor/internal/alerts"
	"github.com/drivercopilot/drivercopilot/monitor/internal/hub"
	"github.com/drivercopilot/drivercopilot/monitor/internal/trend"
	"github.com/drivercopilot/drivercopilot/pkg/types"
)

// Controller starts and stops monitoring. *session.Monitor satisfies it.
type Controller interface {
	Toggle(ctx context.Context) (bool, error)
	Stop() error
	Active() bool
	Snapshot() types.Snapshot
}

// AlertSource exposes alert history, rule alerts and the mute switch.
// *alerts.Engine satisfies it.
type AlertSource interface {
	History() []alerts.Alert
	RuleAlerts(now time.Time) []alerts.Alert
	Muted() bool
	ToggleMute() bool
}

// TrendSource exposes recent trends. *trend.Recorder satisfies it.
type TrendSource interface {
	Trends() trend.Trends
}

// shared holds what every copy of the value-receiver Model must see.
type shared struct {
	ctx    context.Context
	ctrl   Controller
	alerts AlertSource
	trends TrendSource
	sub    *hub.Subscription
}

// Model is the root Bubble Tea model.
type Model struct {
	width  int
	height int

	snap    types.Snapshot
	history []alerts.Alert
	rules   []alerts.Alert
	trends  trend.Trends
	muted   bool
	err     error

	shared *shared
}

// New creates a Model. ctx bounds sessions started from the UI; sub is the
// hub subscription the model renders from. trends may be nil.
func New(ctx context.Context, ctrl Controller, a AlertSource, tr TrendSource, sub *hub.Subscription) Model {
	m := Model{
		snap:  ctrl.Snapshot(),
		muted: a.Muted(),
		shared: &shared{
			ctx:    ctx,
			ctrl:   ctrl,
			alerts: a,
			trends: tr,
			sub:    sub,
		},
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.shared.sub)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SnapshotMsg:
		m.snap = types.Snapshot(msg)
		m.refresh()
		return m, waitForSnapshot(m.shared.sub)

	case ClosedMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		m.stop()
		return m, tea.Quit

	case "s", "S", " ", "space":
		active, err := m.shared.ctrl.Toggle(m.shared.ctx)
		m.err = err
		if err != nil {
			slog.Error("dashboard: toggle failed", "err", err)
		} else {
			slog.Info("dashboard: monitoring toggled", "active", active)
		}
		m.snap = m.shared.ctrl.Snapshot()
		m.refresh()

	case "m", "M":
		m.muted = m.shared.alerts.ToggleMute()
	}

	return m, nil
}

// refresh pulls the derived views that are not carried on the snapshot.
func (m *Model) refresh() {
	m.history = m.shared.alerts.History()
	m.rules = m.shared.alerts.RuleAlerts(m.snap.Timestamp)
	m.muted = m.shared.alerts.Muted()
	if m.shared.trends != nil {
		m.trends = m.shared.trends.Trends()
	}
}

func (m Model) stop() {
	if !m.shared.ctrl.Active() {
		return
	}
	if err := m.shared.ctrl.Stop(); err != nil {
		slog.Warn("dashboard: stop on quit", "err", err)
	}
}
