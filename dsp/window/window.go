// Package window generates analysis window functions for FFT framing.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeBlackmanHarris
)

type config struct {
	periodic bool
}

// Option configures window generation.
type Option func(*config)

// WithPeriodic configures periodic form (FFT framing) instead of the
// symmetric form used for filter design.
func WithPeriodic() Option {
	return func(c *config) { c.periodic = true }
}

// Generate returns n window coefficients of the given type.
func Generate(t Type, n int, opts ...Option) []float64 {
	if n <= 0 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, n)
	if n == 1 {
		out[0] = 1

		return out
	}

	denom := float64(n - 1)
	if cfg.periodic {
		denom = float64(n)
	}

	for i := range out {
		x := 2 * math.Pi * float64(i) / denom

		switch t {
		case TypeHann:
			out[i] = 0.5 - 0.5*math.Cos(x)
		case TypeHamming:
			out[i] = 0.54 - 0.46*math.Cos(x)
		case TypeBlackman:
			out[i] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
		case TypeBlackmanHarris:
			out[i] = 0.35875 - 0.48829*math.Cos(x) + 0.14128*math.Cos(2*x) - 0.01168*math.Cos(3*x)
		default:
			out[i] = 1
		}
	}

	return out
}

// Apply multiplies samples by coeffs element-wise into out.
// All three slices must have the same length.
func Apply(out, samples, coeffs []float64) {
	vecmath.MulBlock(out, samples, coeffs)
}

// ApplyInPlace multiplies samples by coeffs element-wise in place.
func ApplyInPlace(samples, coeffs []float64) {
	vecmath.MulBlockInPlace(samples, coeffs)
}

// CoherentGain returns the mean of the coefficients, used to normalize
// FFT magnitudes for the window's amplitude loss.
func CoherentGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}

	sum := 0.0
	for _, w := range coeffs {
		sum += w
	}

	return sum / float64(len(coeffs))
}
