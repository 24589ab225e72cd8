package tts

import "math"

// Narration parameter bounds.
const (
	MinRate     = 0.5
	MaxRate     = 2.5
	DefaultRate = 1.0

	MinPitch     = 0.5
	MaxPitch     = 2.0
	DefaultPitch = 1.0
)

// RateSteps are the discrete rates offered by keyboard controls.
var RateSteps = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0, 2.5}

// ClampRate limits a rate to [MinRate, MaxRate]. NaN becomes DefaultRate.
func ClampRate(r float64) float64 {
	return clamp(r, MinRate, MaxRate, DefaultRate)
}

// ClampPitch limits a pitch to [MinPitch, MaxPitch]. NaN becomes DefaultPitch.
func ClampPitch(p float64) float64 {
	return clamp(p, MinPitch, MaxPitch, DefaultPitch)
}

// ClampVolume limits a volume to [0, 1]. NaN becomes 1.
func ClampVolume(v float64) float64 {
	return clamp(v, 0, 1, 1)
}

// NextRate returns the first step above r, or MaxRate.
func NextRate(r float64) float64 {
	for _, step := range RateSteps {
		if step > r+0.001 {
			return step
		}
	}
	return MaxRate
}

// PrevRate returns the last step below r, or MinRate.
func PrevRate(r float64) float64 {
	for i := len(RateSteps) - 1; i >= 0; i-- {
		if RateSteps[i] < r-0.001 {
			return RateSteps[i]
		}
	}
	return MinRate
}

func clamp(v, lo, hi, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	return math.Max(lo, math.Min(hi, v))
}
