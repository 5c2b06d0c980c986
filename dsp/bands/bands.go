package bands

import (
	"fmt"
	"math"
)

// Default partition parameters for the full audible range.
const (
	DefaultMinFreq = 20.0
	DefaultMaxFreq = 20000.0
	DefaultCount   = 120
)

// Band is one logarithmically spaced frequency band.
type Band struct {
	Low    float64 // lower edge in Hz
	High   float64 // upper edge in Hz
	Center float64 // geometric mean of the edges in Hz
}

// MakeLog partitions [fMin, fMax] into count contiguous bands of constant
// frequency ratio.
//
// Band i spans:
//
//	low  = fMin * (fMax/fMin)^(i/count)
//	high = fMin * (fMax/fMin)^((i+1)/count)
//
// with Center = sqrt(low*high). The first band's Low equals fMin and the
// last band's High equals fMax (within floating-point tolerance).
//
// The returned slice is meant to be built once and shared read-only by
// all consumers.
func MakeLog(fMin, fMax float64, count int) ([]Band, error) {
	if fMin <= 0 || math.IsNaN(fMin) {
		return nil, fmt.Errorf("bands: min frequency must be > 0: %f", fMin)
	}

	if fMax <= fMin || math.IsNaN(fMax) {
		return nil, fmt.Errorf("bands: max frequency must exceed min: %f <= %f", fMax, fMin)
	}

	if count < 1 {
		return nil, fmt.Errorf("bands: count must be >= 1: %d", count)
	}

	ratio := fMax / fMin
	inv := 1 / float64(count)

	out := make([]Band, count)
	for i := range out {
		low := fMin * math.Pow(ratio, float64(i)*inv)
		high := fMin * math.Pow(ratio, float64(i+1)*inv)
		out[i] = Band{
			Low:    low,
			High:   high,
			Center: math.Sqrt(low * high),
		}
	}

	// Pin the outer edges so downstream code can compare against the
	// requested range without a tolerance.
	out[0].Low = fMin
	out[count-1].High = fMax

	return out, nil
}

// MakeDefault returns the canonical 120-band partition over 20 Hz .. 20 kHz.
func MakeDefault() []Band {
	out, err := MakeLog(DefaultMinFreq, DefaultMaxFreq, DefaultCount)
	if err != nil {
		// Unreachable with the fixed defaults above.
		panic(err)
	}

	return out
}
