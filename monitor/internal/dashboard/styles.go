package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/drivercopilot/drivercopilot/pkg/alertness"
)

// Palette
var (
	colorAccent  = lipgloss.Color("#38BDF8")
	colorText    = lipgloss.Color("#E2E8F0")
	colorMuted   = lipgloss.Color("#64748B")
	colorOK      = lipgloss.Color("#22C55E")
	colorLevel1  = lipgloss.Color("#FACC15")
	colorLevel2  = lipgloss.Color("#F97316")
	colorLevel3  = lipgloss.Color("#EF4444")
	colorBarBg   = lipgloss.Color("#0F172A")
	colorBarEdge = lipgloss.Color("#1E293B")
)

var (
	styleHeader = lipgloss.NewStyle().
			Background(colorBarBg).
			Foreground(colorAccent).
			Bold(true).
			Padding(0, 1)

	styleStatusBar = lipgloss.NewStyle().
			Background(colorBarBg).
			Foreground(colorMuted).
			Padding(0, 1)

	styleKey = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	styleActive = lipgloss.NewStyle().
			Foreground(colorOK).
			Bold(true)

	styleIdle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Bold(true)

	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBarEdge).
			Padding(0, 1)

	stylePanelTitle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	styleLabel = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleValue = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	styleScore = lipgloss.NewStyle().
			Bold(true)

	styleError = lipgloss.NewStyle().
			Foreground(colorLevel3)

	styleRuleFiring = lipgloss.NewStyle().
			Foreground(colorLevel2).
			Bold(true)
)

// levelColor is the accent used for a level's banner and score.
func levelColor(l alertness.Level) lipgloss.Color {
	switch l {
	case alertness.Level1:
		return colorLevel1
	case alertness.Level2:
		return colorLevel2
	case alertness.Level3:
		return colorLevel3
	default:
		return colorOK
	}
}

func bannerStyle(l alertness.Level) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(levelColor(l)).
		Foreground(levelColor(l)).
		Padding(0, 1)
}
