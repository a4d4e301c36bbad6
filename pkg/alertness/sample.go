package alertness

import (
	"errors"
	"fmt"
	"math"
)

// Clamp bounds for the numeric sample fields.
const (
	MinBlinkRate = 10.0
	MaxBlinkRate = 30.0

	MinHeadPoseStability = 70.0
	MaxHeadPoseStability = 100.0
)

// Session defaults applied when monitoring starts.
const (
	DefaultBlinkRate         = 18.0
	DefaultYawnCount         = 2
	DefaultHeadPoseStability = 92.0
	DefaultScore             = 85
)

// ErrInvalidSample is returned by NewSample for out-of-domain input.
var ErrInvalidSample = errors.New("alertness: invalid sample")

// Gaze is the cosmetic gaze-direction label.
type Gaze string

const (
	GazeForward Gaze = "forward"
	GazeLeft    Gaze = "left"
	GazeRight   Gaze = "right"
	GazeDown    Gaze = "down"
)

// Emotion is the cosmetic emotional-state label.
type Emotion string

const (
	EmotionAlert    Emotion = "alert"
	EmotionCalm     Emotion = "calm"
	EmotionTired    Emotion = "tired"
	EmotionStressed Emotion = "stressed"
)

// Valid reports whether g is a known gaze label.
func (g Gaze) Valid() bool {
	switch g {
	case GazeForward, GazeLeft, GazeRight, GazeDown:
		return true
	}
	return false
}

// Valid reports whether e is a known emotion label.
func (e Emotion) Valid() bool {
	switch e {
	case EmotionAlert, EmotionCalm, EmotionTired, EmotionStressed:
		return true
	}
	return false
}

// Sample is one detection observation.
type Sample struct {
	// BlinkRate is blinks per minute, always within [10, 30].
	BlinkRate float64 `json:"blink_rate"`

	// YawnCount is the session's yawn counter. It never decreases within a
	// session.
	YawnCount int `json:"yawn_count"`

	// HeadPoseStability is a percentage, always within [70, 100].
	HeadPoseStability float64 `json:"head_pose_stability"`

	// Gaze and Emotion are display labels only; scoring ignores them.
	Gaze    Gaze    `json:"gaze"`
	Emotion Emotion `json:"emotion"`
}

// DefaultSample returns the sample a new session starts from.
func DefaultSample() Sample {
	return Sample{
		BlinkRate:         DefaultBlinkRate,
		YawnCount:         DefaultYawnCount,
		HeadPoseStability: DefaultHeadPoseStability,
		Gaze:              GazeForward,
		Emotion:           EmotionAlert,
	}
}

// NewSample builds a Sample. Numeric values outside their ranges are
// clamped. Unknown labels and NaN or infinite numbers wrap ErrInvalidSample.
func NewSample(blinkRate float64, yawnCount int, headPose float64, gaze Gaze, emotion Emotion) (Sample, error) {
	if !finite(blinkRate) {
		return Sample{}, fmt.Errorf("%w: blink rate %v", ErrInvalidSample, blinkRate)
	}
	if !finite(headPose) {
		return Sample{}, fmt.Errorf("%w: head pose stability %v", ErrInvalidSample, headPose)
	}
	if !gaze.Valid() {
		return Sample{}, fmt.Errorf("%w: unknown gaze %q", ErrInvalidSample, gaze)
	}
	if !emotion.Valid() {
		return Sample{}, fmt.Errorf("%w: unknown emotion %q", ErrInvalidSample, emotion)
	}
	if yawnCount < 0 {
		yawnCount = 0
	}
	return Sample{
		BlinkRate:         clamp(blinkRate, MinBlinkRate, MaxBlinkRate),
		YawnCount:         yawnCount,
		HeadPoseStability: clamp(headPose, MinHeadPoseStability, MaxHeadPoseStability),
		Gaze:              gaze,
		Emotion:           emotion,
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// clamp restricts v to the range [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
