// Package cutoff provides runtime-tunable Butterworth high-pass and
// low-pass cascades.
//
// A Cascade is the filter-node endpoint for cutoff pushes coming from the
// parameter model: SetFrequency redesigns the coefficients in place while
// preserving filter state, so a live cutoff drag never clicks.
package cutoff

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-analyzer/dsp/filter/biquad"
	"github.com/cwbudde/algo-analyzer/dsp/filter/design"
)

// Kind selects the cascade's pass direction.
type Kind int

const (
	Highpass Kind = iota
	Lowpass
)

// String returns the kind name.
func (k Kind) String() string {
	if k == Lowpass {
		return "lowpass"
	}

	return "highpass"
}

const defaultOrder = 4

// Cascade is a Butterworth high-pass or low-pass whose cutoff frequency
// can be retuned between blocks.
type Cascade struct {
	kind       Kind
	chain      *biquad.Chain
	order      int
	sampleRate float64
	freqHz     float64
}

type config struct {
	order int
}

// Option configures a Cascade.
type Option func(*config)

// WithOrder sets the Butterworth order. Must be a positive even integer;
// defaults to 4.
func WithOrder(n int) Option {
	return func(cfg *config) {
		if n > 0 && n%2 == 0 {
			cfg.order = n
		}
	}
}

// NewCascade creates a cascade of the given kind tuned to freqHz.
func NewCascade(kind Kind, freqHz, sampleRate float64, opts ...Option) (*Cascade, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) {
		return nil, fmt.Errorf("cutoff: invalid sample rate %.3f", sampleRate)
	}

	if freqHz <= 0 || math.IsNaN(freqHz) {
		return nil, fmt.Errorf("cutoff: invalid frequency %.3f", freqHz)
	}

	cfg := config{order: defaultOrder}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	c := &Cascade{
		kind:       kind,
		order:      cfg.order,
		sampleRate: sampleRate,
	}
	c.chain = biquad.NewChain(c.designAt(freqHz))
	c.freqHz = clampFreq(freqHz, sampleRate)

	return c, nil
}

// SetFrequency retunes the cascade.
//
// The frequency is clamped below Nyquist; filter state carries over so
// the transition is click-free. Callers feeding values from the
// parameter model already guarantee the [20, 20000] range.
func (c *Cascade) SetFrequency(freqHz float64) {
	freqHz = clampFreq(freqHz, c.sampleRate)
	if freqHz == c.freqHz {
		return
	}

	c.freqHz = freqHz
	c.chain.UpdateCoefficients(c.designAt(freqHz))
}

// Frequency returns the current cutoff in Hz.
func (c *Cascade) Frequency() float64 { return c.freqHz }

// Order returns the Butterworth order.
func (c *Cascade) Order() int { return c.order }

// Kind returns the pass direction.
func (c *Cascade) Kind() Kind { return c.kind }

// ProcessBlock filters a block in place.
func (c *Cascade) ProcessBlock(buf []float64) {
	c.chain.ProcessBlock(buf)
}

// ProcessSample filters one sample.
func (c *Cascade) ProcessSample(x float64) float64 {
	return c.chain.ProcessSample(x)
}

// Reset clears all filter state.
func (c *Cascade) Reset() {
	c.chain.Reset()
}

// MagnitudeDB returns the cascade's magnitude response at freqHz in dB.
func (c *Cascade) MagnitudeDB(freqHz float64) float64 {
	return c.chain.MagnitudeDB(freqHz, c.sampleRate)
}

func (c *Cascade) designAt(freqHz float64) []biquad.Coefficients {
	freqHz = clampFreq(freqHz, c.sampleRate)

	if c.kind == Lowpass {
		return design.ButterworthLP(freqHz, c.order, c.sampleRate)
	}

	return design.ButterworthHP(freqHz, c.order, c.sampleRate)
}

// clampFreq keeps the cutoff strictly below Nyquist so the biquad design
// stays valid at low sample rates.
func clampFreq(freqHz, sampleRate float64) float64 {
	limit := sampleRate * 0.49
	if freqHz > limit {
		return limit
	}

	return freqHz
}
