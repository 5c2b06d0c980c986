// Package source produces per-tick dB magnitude spectra from streaming
// PCM, implementing the analyzer's audio-source contract.
//
// Each channel runs a ring buffer with overlapping windowed FFT frames
// and exponential smoothing between frames. The engine only sees the
// resulting Frame; it never touches the FFT machinery.
package source

import (
	"fmt"
	"math"
	"strings"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-analyzer/analyzer"
	"github.com/cwbudde/algo-analyzer/dsp/window"
)

// FloorDB is the lower bound of produced spectra. Frames never contain
// NaN or -Inf; fully silent bins sit at this floor.
const FloorDB = -130.0

type channelAnalyzer struct {
	ring   []float64
	write  int
	filled int
	toHop  int

	input  []complex128
	output []complex128
	re     []float64
	im     []float64
	mag    []float64

	db    []float64
	ready bool
}

// FFT converts streaming PCM into smoothed dB spectra.
type FFT struct {
	sampleRate float64
	fftSize    int
	hopSize    int
	channels   int
	smoothing  float64

	win     []float64
	winGain float64
	plan    *algofft.Plan[complex128]

	left  channelAnalyzer
	right channelAnalyzer
}

type config struct {
	fftSize    int
	overlap    float64
	smoothing  float64
	channels   int
	windowName string
}

func defaultConfig() config {
	return config{
		fftSize:    2048,
		overlap:    0.5,
		smoothing:  0.8,
		channels:   2,
		windowName: "hann",
	}
}

// Option configures an FFT source.
type Option func(*config)

// WithFFTSize sets the FFT size. Valid sizes are the powers of two from
// 256 to 8192; anything else keeps the default of 2048.
func WithFFTSize(n int) Option {
	return func(cfg *config) {
		switch n {
		case 256, 512, 1024, 2048, 4096, 8192:
			cfg.fftSize = n
		}
	}
}

// WithOverlap sets the analysis frame overlap, clamped to [0.25, 0.95].
func WithOverlap(overlap float64) Option {
	return func(cfg *config) {
		cfg.overlap = clamp(overlap, 0.25, 0.95)
	}
}

// WithSmoothing sets the exponential smoothing factor applied between
// frames, clamped to [0, 0.95]. 0 disables smoothing.
func WithSmoothing(smoothing float64) Option {
	return func(cfg *config) {
		cfg.smoothing = clamp(smoothing, 0, 0.95)
	}
}

// WithChannels sets the channel count (1 or 2).
func WithChannels(n int) Option {
	return func(cfg *config) {
		if n == 1 || n == 2 {
			cfg.channels = n
		}
	}
}

// WithWindow selects the analysis window by name: "hann", "hamming",
// "blackman" or "blackmanharris".
func WithWindow(name string) Option {
	return func(cfg *config) {
		cfg.windowName = strings.ToLower(strings.TrimSpace(name))
	}
}

// NewFFT creates an FFT source for the given sample rate.
func NewFFT(sampleRate float64, opts ...Option) (*FFT, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) {
		return nil, fmt.Errorf("source: invalid sample rate %.3f", sampleRate)
	}

	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	winType, err := windowType(cfg.windowName)
	if err != nil {
		return nil, err
	}

	win := window.Generate(winType, cfg.fftSize, window.WithPeriodic())

	plan, err := algofft.NewPlan64(cfg.fftSize)
	if err != nil {
		return nil, fmt.Errorf("source: init fft plan: %w", err)
	}

	hop := int(math.Round(float64(cfg.fftSize) * (1 - cfg.overlap)))
	if hop < 1 {
		hop = 1
	}

	f := &FFT{
		sampleRate: sampleRate,
		fftSize:    cfg.fftSize,
		hopSize:    hop,
		channels:   cfg.channels,
		smoothing:  cfg.smoothing,
		win:        win,
		winGain:    window.CoherentGain(win),
		plan:       plan,
	}

	f.left.init(cfg.fftSize)
	if cfg.channels == 2 {
		f.right.init(cfg.fftSize)
	}

	return f, nil
}

func (c *channelAnalyzer) init(fftSize int) {
	c.ring = make([]float64, fftSize)
	c.input = make([]complex128, fftSize)
	c.output = make([]complex128, fftSize)
	c.re = make([]float64, fftSize/2)
	c.im = make([]float64, fftSize/2)
	c.mag = make([]float64, fftSize/2)

	c.db = make([]float64, fftSize/2)
	for i := range c.db {
		c.db[i] = FloorDB
	}
}

// SampleRate returns the configured sample rate.
func (f *FFT) SampleRate() float64 { return f.sampleRate }

// FFTSize returns the configured FFT size.
func (f *FFT) FFTSize() int { return f.fftSize }

// Channels returns the configured channel count.
func (f *FFT) Channels() int { return f.channels }

// Push feeds one block of PCM samples per channel. For mono sources
// right is ignored and may be nil. Spectra update every hop once the
// ring has filled.
func (f *FFT) Push(left, right []float64) {
	for _, x := range left {
		if f.left.push(x, f.hopSize) {
			f.analyze(&f.left)
		}
	}

	if f.channels != 2 {
		return
	}

	for _, x := range right {
		if f.right.push(x, f.hopSize) {
			f.analyze(&f.right)
		}
	}
}

// Frame returns the current spectra. Channel slices are nil until the
// first full analysis frame is available for that channel. The slices
// are overwritten on the next analysis step; consumers must not retain
// them across ticks.
func (f *FFT) Frame() analyzer.Frame {
	out := analyzer.Frame{
		SampleRate: f.sampleRate,
		FFTSize:    f.fftSize,
		Channels:   f.channels,
	}

	if f.left.ready {
		out.Left = f.left.db
	}

	if f.channels == 2 && f.right.ready {
		out.Right = f.right.db
	}

	return out
}

// Reset clears all ring and spectrum state, as on session restart.
func (f *FFT) Reset() {
	f.left.reset()
	f.right.reset()
}

func (c *channelAnalyzer) reset() {
	if c.ring == nil {
		return
	}

	for i := range c.ring {
		c.ring[i] = 0
	}

	for i := range c.db {
		c.db[i] = FloorDB
	}

	c.write = 0
	c.filled = 0
	c.toHop = 0
	c.ready = false
}

func (c *channelAnalyzer) push(x float64, hopSize int) bool {
	c.ring[c.write] = x

	c.write++
	if c.write >= len(c.ring) {
		c.write = 0
	}

	if c.filled < len(c.ring) {
		c.filled++
	}

	c.toHop++
	if c.filled < len(c.ring) || c.toHop < hopSize {
		return false
	}

	c.toHop = 0

	return true
}

func (f *FFT) analyze(c *channelAnalyzer) {
	const eps = 1e-12

	read := c.write
	for i := 0; i < f.fftSize; i++ {
		c.input[i] = complex(c.ring[read]*f.win[i], 0)

		read++
		if read >= f.fftSize {
			read = 0
		}
	}

	if err := f.plan.Forward(c.output, c.input); err != nil {
		return
	}

	for k := range c.re {
		c.re[k] = real(c.output[k])
		c.im[k] = imag(c.output[k])
	}

	vecmath.Magnitude(c.mag, c.re, c.im)

	norm := float64(f.fftSize) * math.Max(f.winGain, eps)

	for k := range c.db {
		mag := c.mag[k] / norm
		if k > 0 {
			// Single-sided spectrum: interior bins carry both halves.
			mag *= 2
		}

		valDB := 20 * math.Log10(math.Max(eps, mag))
		if valDB < FloorDB {
			valDB = FloorDB
		}

		if !c.ready {
			c.db[k] = valDB
			continue
		}

		c.db[k] = f.smoothing*c.db[k] + (1-f.smoothing)*valDB
	}

	c.ready = true
}

func windowType(name string) (window.Type, error) {
	switch name {
	case "hann":
		return window.TypeHann, nil
	case "hamming":
		return window.TypeHamming, nil
	case "blackman":
		return window.TypeBlackman, nil
	case "blackmanharris":
		return window.TypeBlackmanHarris, nil
	default:
		return 0, fmt.Errorf("source: unsupported window: %s", name)
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
