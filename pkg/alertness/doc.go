// Package alertness converts per-tick driver detection metrics into a
// bounded alertness score and a discrete alert level.
//
// sample.go defines Sample (blink rate, yawn count, head-pose stability and
// the cosmetic gaze/emotion labels) and NewSample, which clamps numeric
// ranges and rejects out-of-domain labels.
//
// score.go provides the pure Evaluate(Sample) function:
//
//	score = 100 - 5*yawns - 2*|blinkRate-15| - (100-headPose)
//
// clamped once to [20, 100] and rounded. LevelFor maps a score to a Level:
// level3 <40, level2 <60, level1 <75, none otherwise.
//
// evaluator.go provides Perturb and Tick. Both take an explicit Random so a
// fixed seed reproduces the exact sequence of samples and states.
package alertness
