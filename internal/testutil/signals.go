// Package testutil provides deterministic signal generators and numeric
// assertion helpers shared by the analysis packages' tests.
package testutil

import (
	"math"
	"math/rand"
)

// Sine generates a deterministic sine tone.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// Noise generates reproducible white noise from a fixed seed.
func Noise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))

	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// SpectrumDB returns a flat dB spectrum with the given number of bins.
func SpectrumDB(level float64, bins int) []float64 {
	out := make([]float64, bins)
	for i := range out {
		out[i] = level
	}

	return out
}

// RampSpectrumDB returns a spectrum rising linearly from lo to hi dB
// across its bins.
func RampSpectrumDB(lo, hi float64, bins int) []float64 {
	out := make([]float64, bins)
	if bins == 1 {
		out[0] = lo
		return out
	}

	step := (hi - lo) / float64(bins-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}

	return out
}
