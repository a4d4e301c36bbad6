package alerts

import "github.com/drivercopilot/drivercopilot/pkg/alertness"

// Presentation is the driver-facing text for one alert level.
type Presentation struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

var catalogue = map[alertness.Level]Presentation{
	alertness.LevelNone: {
		Title:   "All Clear",
		Message: "Driver alertness is optimal",
	},
	alertness.Level1: {
		Title:   "Mild Fatigue Detected",
		Message: "Consider taking a short break soon",
		Action:  "Gentle reminder",
	},
	alertness.Level2: {
		Title:   "Moderate Fatigue Alert",
		Message: "Please find a safe place to rest",
		Action:  "Audio alert + vibration",
	},
	alertness.Level3: {
		Title:   "Critical Alert - Immediate Action Required",
		Message: "Pull over safely immediately",
		Action:  "Emergency protocol activated",
	},
}

// Describe returns the presentation for l. Unknown levels describe as none.
func Describe(l alertness.Level) Presentation {
	if p, ok := catalogue[l]; ok {
		return p
	}
	return catalogue[alertness.LevelNone]
}

// severityFor maps an alert level to a rule-style severity label.
func severityFor(l alertness.Level) string {
	switch l {
	case alertness.Level3:
		return "critical"
	case alertness.Level2:
		return "warning"
	default:
		return "info"
	}
}
