// Package testutil holds deterministic signal generators, tolerance helpers
// and ABF fixture writers shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// Sine generates amplitude*sin(2*pi*freqHz*t + phase) sampled at sampleRate.
func Sine(freqHz, sampleRate, amplitude, phase float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i)+phase)
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Add returns the element-wise sum of equal-length signals.
func Add(signals ...[]float64) []float64 {
	if len(signals) == 0 {
		return nil
	}
	out := make([]float64, len(signals[0]))
	for _, s := range signals {
		for i := range out {
			out[i] += s[i]
		}
	}
	return out
}

// TimeAxis returns n sample times i/sampleRate in seconds.
func TimeAxis(sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) / sampleRate
	}
	return out
}
