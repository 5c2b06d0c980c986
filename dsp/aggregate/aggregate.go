package aggregate

import (
	"math"

	"github.com/cwbudde/algo-analyzer/dsp/bands"
)

// Display range contract: every aggregated value is clamped into
// [ClampMinDB, ClampMaxDB] regardless of reducer.
const (
	ClampMinDB = -100.0
	ClampMaxDB = 0.0

	// emptyBandDB is the defensive default for a band whose bin range is
	// empty. The k1=k0+1 fallback makes this unreachable in practice.
	emptyBandDB = -120.0

	// rmsFloorLinear floors linear magnitudes at -200 dB before the
	// final log so silent ranges never produce log(0).
	rmsFloorLinear = 1e-10
)

// Reducer selects how the bins covered by one band collapse to a value.
type Reducer int

const (
	// Mean averages dB values directly. This is not linear-domain power
	// averaging; it slightly under-represents peaks in wide bands but is
	// cheap and perceptually acceptable for display. Kept deliberately.
	Mean Reducer = iota

	// Max takes the loudest bin in the band.
	Max

	// RMS converts bins to linear magnitude, takes the root mean square
	// and converts back to dB.
	RMS
)

// String returns the reducer name.
func (r Reducer) String() string {
	switch r {
	case Mean:
		return "mean"
	case Max:
		return "max"
	case RMS:
		return "rms"
	default:
		return "unknown"
	}
}

type config struct {
	boostDB float64
}

// Option configures aggregation.
type Option func(*config)

// WithBoost adds a display gain in dB to every band value before the
// final clamp. The analyzer uses +20 dB for quiet sources.
func WithBoost(db float64) Option {
	return func(cfg *config) { cfg.boostDB = db }
}

// Aggregate folds spectrum onto the band partition and returns one
// clamped dB value per band.
//
// The spectrum holds dB magnitudes for linearly spaced FFT bins; bin k
// covers frequency k*sampleRate/fftSize. Callers must guarantee
// sampleRate > 0 and fftSize > 0; these are contract violations, not
// runtime-checked errors, so the per-tick path stays branch-free.
func Aggregate(spectrum []float64, sampleRate float64, fftSize int, partition []bands.Band, reducer Reducer, opts ...Option) []float64 {
	out := make([]float64, len(partition))
	AggregateInto(out, spectrum, sampleRate, fftSize, partition, reducer, opts...)

	return out
}

// AggregateInto is the allocation-free variant of [Aggregate]. dst must
// have the same length as the partition; extra elements are left
// untouched. dst is written wholesale, so consumers holding the previous
// slice never observe a partially updated result.
func AggregateInto(dst, spectrum []float64, sampleRate float64, fftSize int, partition []bands.Band, reducer Reducer, opts ...Option) {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	maxBin := fftSize/2 - 1

	for i := range partition {
		if i >= len(dst) {
			return
		}

		k0, k1 := binRange(partition[i], sampleRate, fftSize, maxBin)

		v := reduce(spectrum, k0, k1, reducer)
		v += cfg.boostDB

		dst[i] = clamp(v, ClampMinDB, ClampMaxDB)
	}
}

// binRange returns the inclusive-exclusive bin range covered by the band,
// clamped to the representable spectrum and widened to at least one bin.
func binRange(b bands.Band, sampleRate float64, fftSize, maxBin int) (int, int) {
	k0 := int(math.Floor(b.Low / sampleRate * float64(fftSize)))
	k1 := int(math.Floor(b.High / sampleRate * float64(fftSize)))

	k0 = clampInt(k0, 0, maxBin)
	k1 = clampInt(k1, 0, maxBin)

	// Sparse low-frequency bins: several narrow bands can land on the
	// same bin. Widen to one bin so no band goes dead.
	if k1 <= k0 {
		k1 = k0 + 1
	}

	return k0, k1
}

func reduce(spectrum []float64, k0, k1 int, reducer Reducer) float64 {
	if k1 > len(spectrum) {
		k1 = len(spectrum)
	}

	if k0 >= k1 {
		return emptyBandDB
	}

	switch reducer {
	case Max:
		maxDB := spectrum[k0]
		for _, v := range spectrum[k0+1 : k1] {
			if v > maxDB {
				maxDB = v
			}
		}

		return maxDB

	case RMS:
		sumSq := 0.0
		for _, v := range spectrum[k0:k1] {
			lin := math.Pow(10, v/20)
			sumSq += lin * lin
		}

		rms := math.Sqrt(sumSq / float64(k1-k0))

		return 20 * math.Log10(math.Max(rms, rmsFloorLinear))

	default: // Mean
		sum := 0.0
		for _, v := range spectrum[k0:k1] {
			sum += v
		}

		return sum / float64(k1-k0)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
