package alertness

import "math"

// Penalty weights for the alertness score formula.
const (
	yawnPenalty      = 5.0
	blinkPenalty     = 2.0
	blinkRateNominal = 15.0
)

// Score bounds.
const (
	MinScore = 20
	MaxScore = 100
)

// Thresholds that map a score to an alert level. A score strictly below a
// threshold falls into the more severe level.
const (
	ThresholdLevel1 = 75
	ThresholdLevel2 = 60
	ThresholdLevel3 = 40
)

// Level is the discrete alert bucket derived from a score.
type Level string

const (
	LevelNone Level = "none"
	Level1    Level = "level1"
	Level2    Level = "level2"
	Level3    Level = "level3"
)

// Severity returns 0 for none through 3 for level3.
func (l Level) Severity() int {
	switch l {
	case Level1:
		return 1
	case Level2:
		return 2
	case Level3:
		return 3
	default:
		return 0
	}
}

// State is the scored result for one sample.
type State struct {
	// Score is in [20, 100].
	Score int `json:"score"`

	// Level is a pure function of Score.
	Level Level `json:"level"`
}

// DefaultState is the state reported before the first tick of a session.
func DefaultState() State {
	return State{Score: DefaultScore, Level: LevelFor(DefaultScore)}
}

// Evaluate scores s.
//
//	score = 100 - 5*yawns - 2*|blinkRate - 15| - (100 - headPoseStability)
//
// The raw value may fall outside [20, 100]; it is clamped once, after every
// term is summed, and then rounded to the nearest integer.
func Evaluate(s Sample) State {
	raw := 100 -
		yawnPenalty*float64(s.YawnCount) -
		blinkPenalty*math.Abs(s.BlinkRate-blinkRateNominal) -
		(100 - s.HeadPoseStability)

	score := int(math.Round(clamp(raw, MinScore, MaxScore)))
	return State{Score: score, Level: LevelFor(score)}
}

// LevelFor maps a score to its alert level. First match wins.
func LevelFor(score int) Level {
	switch {
	case score < ThresholdLevel3:
		return Level3
	case score < ThresholdLevel2:
		return Level2
	case score < ThresholdLevel1:
		return Level1
	default:
		return LevelNone
	}
}
