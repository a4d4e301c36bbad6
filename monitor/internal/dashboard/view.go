package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/drivercopilot/drivercopilot/monitor/internal/alerts"
	"github.com/drivercopilot/drivercopilot/monitor/internal/trend"
	"github.com/drivercopilot/drivercopilot/pkg/alertness"
)

const (
	minWidth     = 60
	gaugeWidth   = 30
	historyShown = 5
	rulesShown   = 5
)

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing Driver Co-Pilot..."
	}
	width := m.width
	if width < minWidth {
		width = minWidth
	}
	half := width/2 - 2

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderScore(half),
		m.renderMetrics(half),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderBanner(half),
		m.renderAlerts(half),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(width),
		body,
		m.renderStatus(width),
	)
}

func (m Model) renderHeader(width int) string {
	status := styleIdle.Render("IDLE")
	if m.snap.Active {
		status = styleActive.Render("MONITORING")
	}
	text := fmt.Sprintf("DRIVER CO-PILOT  %s  trip %s", status, m.snap.TripClock())
	if m.muted {
		text += "  [muted]"
	}
	return styleHeader.Width(width).Render(text)
}

func (m Model) renderScore(width int) string {
	st := m.snap.State
	score := styleScore.Foreground(levelColor(st.Level)).
		Render(fmt.Sprintf("%d / %d", st.Score, alertness.MaxScore))

	content := lipgloss.JoinVertical(lipgloss.Left,
		stylePanelTitle.Render("Alertness"),
		score,
		gauge(st.Score, gaugeWidth),
		styleLabel.Render("level ")+styleValue.Render(string(st.Level)),
	)
	return stylePanel.Width(width).Render(content)
}

func (m Model) renderBanner(width int) string {
	lvl := m.snap.State.Level
	p := alerts.Describe(lvl)
	lines := []string{lipgloss.NewStyle().Bold(true).Render(p.Title), p.Message}
	if p.Action != "" {
		lines = append(lines, styleLabel.Render("action: ")+p.Action)
	}
	return bannerStyle(lvl).Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderMetrics(width int) string {
	s := m.snap.Sample
	rows := []string{
		stylePanelTitle.Render("Live metrics"),
		metricRow("blink rate", fmt.Sprintf("%.1f /min", s.BlinkRate), m.trends.BlinkRate),
		metricRow("yawns", fmt.Sprintf("%d", s.YawnCount), m.trends.YawnCount),
		metricRow("head pose", fmt.Sprintf("%.0f%%", s.HeadPoseStability), m.trends.HeadPoseStability),
		metricRow("score", fmt.Sprintf("%d", m.snap.State.Score), m.trends.Score),
		metricRow("gaze", string(s.Gaze), ""),
		metricRow("emotion", string(s.Emotion), ""),
	}
	return stylePanel.Width(width).Render(strings.Join(rows, "\n"))
}

func (m Model) renderAlerts(width int) string {
	rows := []string{stylePanelTitle.Render("Recent alerts")}
	if len(m.history) == 0 {
		rows = append(rows, styleLabel.Render("none yet"))
	}
	for i, a := range m.history {
		if i == historyShown {
			break
		}
		mark := lipgloss.NewStyle().Foreground(levelColor(a.Level)).Render("●")
		rows = append(rows, fmt.Sprintf("%s %s %s  %s",
			mark,
			styleLabel.Render(a.RaisedAt.Format("15:04:05")),
			a.Title,
			styleLabel.Render(fmt.Sprintf("score %d", a.Score)),
		))
	}
	if len(m.rules) > 0 {
		rows = append(rows, "", stylePanelTitle.Render("Rules"))
	}
	for i, a := range m.rules {
		if i == rulesShown {
			break
		}
		state := styleRuleFiring.Render(a.State)
		if a.State == alerts.StateResolved {
			state = styleLabel.Render(a.State)
		}
		rows = append(rows, fmt.Sprintf("%s %s %s  %s",
			state,
			styleLabel.Render(a.RaisedAt.Format("15:04:05")),
			a.RuleName,
			styleLabel.Render(fmt.Sprintf("[%s] value %.1f", a.Severity, a.Value)),
		))
	}
	return stylePanel.Width(width).Render(strings.Join(rows, "\n"))
}

func (m Model) renderStatus(width int) string {
	toggle := "start"
	if m.snap.Active {
		toggle = "stop"
	}
	mute := "mute"
	if m.muted {
		mute = "unmute"
	}
	text := fmt.Sprintf("%s %s  %s %s  %s quit  ticks %d",
		styleKey.Render("s"), toggle,
		styleKey.Render("m"), mute,
		styleKey.Render("q"),
		m.snap.Ticks,
	)
	if m.err != nil {
		text += "  " + styleError.Render(m.err.Error())
	}
	return styleStatusBar.Width(width).Render(text)
}

func metricRow(label, value string, dir trend.Direction) string {
	row := fmt.Sprintf("%s %s", styleLabel.Render(fmt.Sprintf("%-11s", label)), styleValue.Render(value))
	if dir != "" {
		row += " " + styleLabel.Render(arrow(dir))
	}
	return row
}

func arrow(d trend.Direction) string {
	switch d {
	case trend.Increasing:
		return "↑"
	case trend.Decreasing:
		return "↓"
	default:
		return "→"
	}
}

// gauge renders score as a filled bar of the given width.
func gauge(score, width int) string {
	filled := score * width / alertness.MaxScore
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
