package alertness

import (
	"math/rand"
)

// Perturbation parameters applied on every tick.
const (
	blinkJitter    = 2.0  // blink rate moves by uniform(-2, 2)
	headPoseJitter = 5.0  // head pose moves by uniform(-5, 5)
	yawnChance     = 0.02 // probability of one new yawn per tick
)

// Random is the source of uniform draws in [0, 1). *rand.Rand satisfies it.
type Random interface {
	Float64() float64
}

// NewRandom returns a generator seeded with seed. Equal seeds produce equal
// tick sequences.
func NewRandom(seed int64) Random {
	return rand.New(rand.NewSource(seed)) //nolint:gosec // simulation, not crypto
}

// Perturb derives the next sample from prev. It draws three values from r in
// a fixed order: blink, yawn, head pose.
func Perturb(prev Sample, r Random) Sample {
	next := prev

	next.BlinkRate = clamp(prev.BlinkRate+uniform(r, -blinkJitter, blinkJitter),
		MinBlinkRate, MaxBlinkRate)

	if r.Float64() < yawnChance {
		next.YawnCount = prev.YawnCount + 1
	}

	next.HeadPoseStability = clamp(prev.HeadPoseStability+uniform(r, -headPoseJitter, headPoseJitter),
		MinHeadPoseStability, MaxHeadPoseStability)

	return next
}

// Tick perturbs prev and scores the resulting sample. It has no state beyond
// its arguments.
func Tick(prev Sample, r Random) (Sample, State) {
	next := Perturb(prev, r)
	return next, Evaluate(next)
}

func uniform(r Random, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}
