// Package logfreq maps between frequency and linear screen coordinates on
// a logarithmic axis, and snaps frequencies to equal-tempered grids.
//
// The mapping is shared by drawing code (band/cursor placement) and input
// handling (interpreting drag positions as cutoff frequencies), so both
// directions are exact algebraic inverses of each other.
package logfreq

import "math"

// gridAnchorHz anchors equal-tempered snapping grids.
const gridAnchorHz = 1000.0

// FrequencyToX maps freq onto [0, width] with base-10 logarithmic
// interpolation over [fMin, fMax]. The frequency is clamped into the
// range before mapping, so the result always lies within [0, width].
func FrequencyToX(freq, fMin, fMax, width float64) float64 {
	if freq < fMin {
		freq = fMin
	}

	if freq > fMax {
		freq = fMax
	}

	logMin := math.Log10(fMin)
	logMax := math.Log10(fMax)

	return (math.Log10(freq) - logMin) / (logMax - logMin) * width
}

// XToFrequency is the algebraic inverse of [FrequencyToX].
//
// The coordinate is intentionally not clamped: out-of-range pixel
// positions project to frequencies outside [fMin, fMax]. Callers that
// need an in-range frequency must clamp x to [0, width] first.
func XToFrequency(x, fMin, fMax, width float64) float64 {
	logMin := math.Log10(fMin)
	logMax := math.Log10(fMax)

	return math.Pow(10, logMin+x/width*(logMax-logMin))
}

// SnapToGrid rounds freq to the nearest step on an equal-tempered grid
// anchored at 1 kHz with stepsPerOctave steps per octave.
//
// With stepsPerOctave=12 this snaps to semitones relative to 1000 Hz.
func SnapToGrid(freq float64, stepsPerOctave int) float64 {
	if freq <= 0 || stepsPerOctave <= 0 {
		return freq
	}

	steps := math.Round(math.Log2(freq/gridAnchorHz) * float64(stepsPerOctave))

	return gridAnchorHz * math.Pow(2, steps/float64(stepsPerOctave))
}
