// Package params owns the high-pass/low-pass cutoff pair and keeps the
// two values mutually consistent under drag input, presets and mode
// changes.
//
// The two cutoffs are deliberately modeled as one aggregate rather than
// two independent values: every valid range is relative to the other
// cutoff's current position, so joint re-validation on each mutation is
// the only way to keep the pair from drifting apart.
package params

import "math"

// Frequency bounds for both cutoffs and the default minimum separation
// between them in free mode.
const (
	MinFreq = 20.0
	MaxFreq = 20000.0

	DefaultMinDistance = 10.0
)

// Preset is a named cutoff pair.
type Preset struct {
	Name string
	Hpf  float64
	Lpf  float64
}

// ChangeFunc is called after a mutation that moved at least one cutoff.
// The engine uses it to push values into filter nodes only when needed.
type ChangeFunc func(hpfHz, lpfHz float64)

// Params holds the cutoff pair and its separation constraint.
//
// Invariant after every mutation: MinFreq <= hpf < lpf <= MaxFreq, and
// in fixed-distance mode lpf-hpf equals the fixed distance exactly.
type Params struct {
	hpf float64
	lpf float64

	minDistance   float64
	fixedEnabled  bool
	fixedDistance float64

	onChange ChangeFunc
}

type config struct {
	hpf         float64
	lpf         float64
	minDistance float64
	onChange    ChangeFunc
}

// Option configures Params.
type Option func(*config)

// WithCutoffs sets the initial cutoff pair. Values are validated the
// same way as setter input.
func WithCutoffs(hpfHz, lpfHz float64) Option {
	return func(cfg *config) {
		cfg.hpf = hpfHz
		cfg.lpf = lpfHz
	}
}

// WithMinDistance sets the minimum separation in Hz enforced in free mode.
func WithMinDistance(hz float64) Option {
	return func(cfg *config) {
		if hz > 0 {
			cfg.minDistance = hz
		}
	}
}

// WithChangeFunc registers a change notification callback.
func WithChangeFunc(fn ChangeFunc) Option {
	return func(cfg *config) { cfg.onChange = fn }
}

// New creates a Params aggregate in free mode.
func New(opts ...Option) *Params {
	cfg := config{
		hpf:         MinFreq,
		lpf:         MaxFreq,
		minDistance: DefaultMinDistance,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	p := &Params{
		hpf:         MinFreq,
		lpf:         MaxFreq,
		minDistance: cfg.minDistance,
		onChange:    cfg.onChange,
	}

	// Route the initial pair through the regular clamping so arbitrary
	// option input cannot violate the invariant.
	p.ApplyPreset(Preset{Hpf: cfg.hpf, Lpf: cfg.lpf})

	return p
}

// HpfCutoff returns the high-pass cutoff in Hz.
func (p *Params) HpfCutoff() float64 { return p.hpf }

// LpfCutoff returns the low-pass cutoff in Hz.
func (p *Params) LpfCutoff() float64 { return p.lpf }

// MinDistance returns the free-mode minimum separation in Hz.
func (p *Params) MinDistance() float64 { return p.minDistance }

// FixedDistanceEnabled reports whether the cutoffs move as a rigid pair.
func (p *Params) FixedDistanceEnabled() bool { return p.fixedEnabled }

// FixedDistance returns the rigid-pair separation in Hz. Meaningful only
// while fixed-distance mode is enabled.
func (p *Params) FixedDistance() float64 { return p.fixedDistance }

// SetHpfCutoff moves the high-pass cutoff.
//
// In free mode the value clamps to [MinFreq, lpf-minDistance] and the
// low-pass cutoff stays put. In fixed mode the value clamps to
// [MinFreq, MaxFreq-fixedDistance] and drags the low-pass cutoff along,
// preserving the exact separation.
func (p *Params) SetHpfCutoff(freqHz float64) {
	if p.fixedEnabled {
		hpf := clamp(freqHz, MinFreq, MaxFreq-p.fixedDistance)
		p.update(hpf, hpf+p.fixedDistance)

		return
	}

	p.update(clamp(freqHz, MinFreq, p.lpf-p.minDistance), p.lpf)
}

// SetLpfCutoff moves the low-pass cutoff; symmetric to [Params.SetHpfCutoff].
func (p *Params) SetLpfCutoff(freqHz float64) {
	if p.fixedEnabled {
		lpf := clamp(freqHz, MinFreq+p.fixedDistance, MaxFreq)
		p.update(lpf-p.fixedDistance, lpf)

		return
	}

	p.update(p.hpf, clamp(freqHz, p.hpf+p.minDistance, MaxFreq))
}

// ApplyPreset sets both cutoffs.
//
// In free mode both values are adopted (clamped into range and pushed
// apart to the minimum separation if needed). In fixed mode only the
// preset's high-pass cutoff is adopted and the current fixed distance is
// kept, so the user's chosen bandwidth stays stable across preset
// switches.
func (p *Params) ApplyPreset(preset Preset) {
	if p.fixedEnabled {
		hpf := clamp(preset.Hpf, MinFreq, MaxFreq-p.fixedDistance)
		p.update(hpf, hpf+p.fixedDistance)

		return
	}

	hpf := clamp(preset.Hpf, MinFreq, MaxFreq-p.minDistance)
	lpf := clamp(preset.Lpf, hpf+p.minDistance, MaxFreq)
	p.update(hpf, lpf)
}

// ToggleFixedDistance flips between free and fixed mode.
//
// Enabling captures the current gap as the fixed distance so the toggle
// itself never moves either cutoff.
func (p *Params) ToggleFixedDistance() {
	p.fixedEnabled = !p.fixedEnabled
	if p.fixedEnabled {
		p.fixedDistance = math.Max(p.minDistance, p.lpf-p.hpf)
	}
}

// SetFixedDistance sets the rigid-pair separation in Hz, clamped to
// [minDistance, MaxFreq-MinFreq]. While fixed mode is enabled the pair
// is re-anchored at the high-pass cutoff, shifting it down if the new
// distance would push the low-pass cutoff past MaxFreq.
func (p *Params) SetFixedDistance(hz float64) {
	p.fixedDistance = clamp(hz, p.minDistance, MaxFreq-MinFreq)

	if p.fixedEnabled {
		hpf := clamp(p.hpf, MinFreq, MaxFreq-p.fixedDistance)
		p.update(hpf, hpf+p.fixedDistance)
	}
}

func (p *Params) update(hpf, lpf float64) {
	if hpf == p.hpf && lpf == p.lpf {
		return
	}

	p.hpf = hpf
	p.lpf = lpf

	if p.onChange != nil {
		p.onChange(hpf, lpf)
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
