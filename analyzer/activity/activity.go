// Package activity decides per-channel signal presence from raw dB
// spectra using a hysteresis state machine.
//
// Entering silence is debounced: a channel must stay below the threshold
// for a hold time before it is reported inactive. Recovery is
// edge-triggered and immediate, so a single loud frame reactivates the
// channel with no residual debounce.
package activity

import (
	"math"
	"time"
)

// Detection defaults. The threshold applies to the RMS level of the
// channel's dB spectrum.
const (
	DefaultThresholdDB = -60.0
	DefaultHoldTime    = 500 * time.Millisecond

	// levelFloorLinear keeps the level computation away from log(0).
	levelFloorLinear = 1e-10
)

// ActiveChannels reports which channels carry signal this tick.
type ActiveChannels struct {
	Left  bool
	Right bool
}

// channelState models three logical states: active (start zero), pending
// silence (start set, silent false) and silent (silent true).
type channelState struct {
	silent bool
	start  time.Time
}

func (c *channelState) observe(levelDB, thresholdDB float64, hold time.Duration, now time.Time) {
	if levelDB >= thresholdDB {
		// Immediate recovery, no debounce.
		c.silent = false
		c.start = time.Time{}

		return
	}

	switch {
	case c.start.IsZero():
		c.start = now
	case !c.silent && now.Sub(c.start) >= hold:
		c.silent = true
	}
}

// Detector tracks left/right channel activity across ticks.
//
// It is driven from a single per-frame callback and holds no locks;
// concurrent use requires external synchronization.
type Detector struct {
	thresholdDB float64
	hold        time.Duration

	left  channelState
	right channelState
}

type config struct {
	thresholdDB float64
	hold        time.Duration
}

// Option configures a Detector.
type Option func(*config)

// WithThreshold sets the silence threshold in dB.
func WithThreshold(db float64) Option {
	return func(cfg *config) { cfg.thresholdDB = db }
}

// WithHoldTime sets how long a channel must stay below the threshold
// before it is reported inactive.
func WithHoldTime(d time.Duration) Option {
	return func(cfg *config) {
		if d > 0 {
			cfg.hold = d
		}
	}
}

// NewDetector creates a detector with both channels active.
func NewDetector(opts ...Option) *Detector {
	cfg := config{
		thresholdDB: DefaultThresholdDB,
		hold:        DefaultHoldTime,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Detector{
		thresholdDB: cfg.thresholdDB,
		hold:        cfg.hold,
	}
}

// Reset returns both channels to the active state, as on session restart.
func (d *Detector) Reset() {
	if d == nil {
		return
	}

	d.left = channelState{}
	d.right = channelState{}
}

// Process advances both channel state machines and reports activity.
//
// left and right hold the channels' raw dB spectra for this tick; a nil
// spectrum means no data is available and the channel reports inactive
// without touching its state machine. If both channels end up inactive,
// the left channel is forced active so routing never becomes undefined.
func (d *Detector) Process(now time.Time, left, right []float64) ActiveChannels {
	if d == nil {
		return ActiveChannels{Left: true}
	}

	out := ActiveChannels{}

	if left != nil {
		d.left.observe(LevelDB(left), d.thresholdDB, d.hold, now)
		out.Left = !d.left.silent
	}

	if right != nil {
		d.right.observe(LevelDB(right), d.thresholdDB, d.hold, now)
		out.Right = !d.right.silent
	}

	if !out.Left && !out.Right {
		out.Left = true
	}

	return out
}

// LevelDB computes the RMS level of a dB spectrum in dB.
//
// Each bin is converted to linear magnitude, the root mean square is
// taken across bins and converted back, floored at -200 dB.
func LevelDB(spectrum []float64) float64 {
	if len(spectrum) == 0 {
		return 20 * math.Log10(levelFloorLinear)
	}

	sumSq := 0.0
	for _, v := range spectrum {
		lin := math.Pow(10, v/20)
		sumSq += lin * lin
	}

	rms := math.Sqrt(sumSq / float64(len(spectrum)))

	return 20 * math.Log10(math.Max(rms, levelFloorLinear))
}
