package alerts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/drivercopilot/drivercopilot/pkg/alertness"
	"github.com/drivercopilot/drivercopilot/pkg/types"
)

// evalCondition evaluates a rule condition string against a Snapshot.
//
// Supported expressions (field operator value):
//
//	score < 50
//	blink_rate > 25
//	yawn_count >= 6
//	head_pose_stability < 80
//	trip_minutes > 120
//	level == level3
//	level >= level2
//
// Level comparisons use severity order: none < level1 < level2 < level3.
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is unknown.
func evalCondition(cond string, snap types.Snapshot) (bool, float64) {
	field, op, threshold, err := parseCondition(cond)
	if err != nil {
		return false, 0
	}
	v, _ := fieldValue(field, snap)
	return compareFloat(v, op, threshold), v
}

// ValidateCondition reports whether cond is a well-formed rule condition.
func ValidateCondition(cond string) error {
	_, _, _, err := parseCondition(cond)
	return err
}

func parseCondition(cond string) (field, op string, threshold float64, err error) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return "", "", 0, fmt.Errorf("alerts: condition %q: want \"field op value\"", cond)
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	switch op {
	case ">", ">=", "<", "<=", "==":
	default:
		return "", "", 0, fmt.Errorf("alerts: condition %q: unknown operator %q", cond, op)
	}
	if _, ok := fieldValue(field, types.Snapshot{}); !ok {
		return "", "", 0, fmt.Errorf("alerts: condition %q: unknown field %q", cond, field)
	}

	if field == "level" {
		lvl := alertness.Level(rhs)
		switch lvl {
		case alertness.LevelNone, alertness.Level1, alertness.Level2, alertness.Level3:
		default:
			return "", "", 0, fmt.Errorf("alerts: condition %q: unknown level %q", cond, rhs)
		}
		return field, op, float64(lvl.Severity()), nil
	}

	threshold, err = strconv.ParseFloat(rhs, 64)
	if err != nil {
		return "", "", 0, fmt.Errorf("alerts: condition %q: %w", cond, err)
	}
	return field, op, threshold, nil
}

// fieldValue maps a field name to its value in the snapshot.
func fieldValue(field string, snap types.Snapshot) (float64, bool) {
	switch field {
	case "score":
		return float64(snap.State.Score), true
	case "level":
		return float64(snap.State.Level.Severity()), true
	case "blink_rate":
		return snap.Sample.BlinkRate, true
	case "yawn_count":
		return float64(snap.Sample.YawnCount), true
	case "head_pose_stability":
		return snap.Sample.HeadPoseStability, true
	case "trip_minutes":
		return snap.TripDuration.Minutes(), true
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
