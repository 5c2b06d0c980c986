// Package analyzer orchestrates the per-tick analysis pipeline: silence
// detection, routing decisions, filter-cutoff pushes and log-band
// aggregation.
//
// The engine is driven from a single display-synchronized callback. All
// state is touched only from that callback or from synchronous input
// handlers running between frames, so no locking is involved; each tick
// runs detection, routing and aggregation as a strict sequence and
// completes synchronously.
package analyzer

import (
	"time"

	"github.com/cwbudde/algo-analyzer/analyzer/activity"
	"github.com/cwbudde/algo-analyzer/analyzer/params"
	"github.com/cwbudde/algo-analyzer/analyzer/routing"
	"github.com/cwbudde/algo-analyzer/dsp/aggregate"
	"github.com/cwbudde/algo-analyzer/dsp/bands"
)

// BoostDB is the display gain applied while boost is enabled.
const BoostDB = 20.0

// Frame is one tick's worth of spectrum data from the audio source
// collaborator.
//
// Spectra are dB magnitudes over FFTSize/2 linearly spaced bins; a nil
// channel slice means no data is available for that channel this tick,
// which is a valid state (the channel reports inactive), not an error.
// Frames are ephemeral: the engine reads them during Tick and never
// retains them.
type Frame struct {
	SampleRate float64
	FFTSize    int
	Channels   int
	Left       []float64
	Right      []float64
}

// Router is the audio-graph collaborator. Apply is called only when
// channel activity changes, never unconditionally per tick, so the graph
// is not reconnected every frame.
type Router interface {
	Apply(plan routing.Plan)
}

// FilterNode is one cascaded filter stage accepting cutoff pushes. The
// engine guarantees pushed values are within [20, 20000], so
// implementations need no clamping of their own.
type FilterNode interface {
	SetFrequency(hz float64)
}

// Engine owns the analysis state machine and produces per-band display
// snapshots.
type Engine struct {
	partition []bands.Band
	reducer   aggregate.Reducer
	boost     bool

	filterParams *params.Params
	detector     *activity.Detector
	channelMode  routing.ChannelMode

	router   Router
	hpfNodes []FilterNode
	lpfNodes []FilterNode

	prevActive activity.ActiveChannels
	havePrev   bool

	active    activity.ActiveChannels
	effective routing.ChannelMode

	leftBands  []float64
	rightBands []float64
}

type config struct {
	partition    []bands.Band
	reducer      aggregate.Reducer
	router       Router
	detectorOpts []activity.Option
	paramsOpts   []params.Option
}

// Option configures an Engine.
type Option func(*config)

// WithPartition replaces the default 120-band partition.
func WithPartition(partition []bands.Band) Option {
	return func(cfg *config) {
		if len(partition) > 0 {
			cfg.partition = partition
		}
	}
}

// WithReducer selects the band reducer; default is RMS.
func WithReducer(r aggregate.Reducer) Option {
	return func(cfg *config) { cfg.reducer = r }
}

// WithRouter registers the audio-graph collaborator.
func WithRouter(r Router) Option {
	return func(cfg *config) { cfg.router = r }
}

// WithDetectorOptions forwards options to the silence detector.
func WithDetectorOptions(opts ...activity.Option) Option {
	return func(cfg *config) { cfg.detectorOpts = opts }
}

// WithParamsOptions forwards options to the filter parameter model.
func WithParamsOptions(opts ...params.Option) Option {
	return func(cfg *config) { cfg.paramsOpts = opts }
}

// New creates an engine with the default band partition and a fresh
// detector and parameter model.
func New(opts ...Option) *Engine {
	cfg := config{
		partition: bands.MakeDefault(),
		reducer:   aggregate.RMS,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	e := &Engine{
		partition: cfg.partition,
		reducer:   cfg.reducer,
		router:    cfg.router,
		detector:  activity.NewDetector(cfg.detectorOpts...),
	}

	paramsOpts := append([]params.Option{params.WithChangeFunc(e.pushCutoffs)}, cfg.paramsOpts...)
	e.filterParams = params.New(paramsOpts...)

	return e
}

// Params returns the filter parameter model. Mutations route cutoff
// pushes to all registered filter nodes.
func (e *Engine) Params() *params.Params { return e.filterParams }

// Partition returns the shared read-only band partition.
func (e *Engine) Partition() []bands.Band { return e.partition }

// ChannelMode returns the user-selected channel mode.
func (e *Engine) ChannelMode() routing.ChannelMode { return e.channelMode }

// SetChannelMode changes the channel mode. The next tick re-applies
// routing even if activity is unchanged.
func (e *Engine) SetChannelMode(mode routing.ChannelMode) {
	if mode == e.channelMode {
		return
	}

	e.channelMode = mode
	e.havePrev = false
}

// Reducer returns the active band reducer.
func (e *Engine) Reducer() aggregate.Reducer { return e.reducer }

// SetReducer switches the band reducer for subsequent ticks.
func (e *Engine) SetReducer(r aggregate.Reducer) { e.reducer = r }

// Boost reports whether the display boost is enabled.
func (e *Engine) Boost() bool { return e.boost }

// SetBoost enables or disables the +20 dB display boost.
func (e *Engine) SetBoost(on bool) { e.boost = on }

// AddHpfNode registers a high-pass filter stage and immediately pushes
// the current cutoff into it.
func (e *Engine) AddHpfNode(node FilterNode) {
	if node == nil {
		return
	}

	e.hpfNodes = append(e.hpfNodes, node)
	node.SetFrequency(e.filterParams.HpfCutoff())
}

// AddLpfNode registers a low-pass filter stage and immediately pushes
// the current cutoff into it.
func (e *Engine) AddLpfNode(node FilterNode) {
	if node == nil {
		return
	}

	e.lpfNodes = append(e.lpfNodes, node)
	node.SetFrequency(e.filterParams.LpfCutoff())
}

// ActiveChannels returns the activity determination of the last tick.
func (e *Engine) ActiveChannels() activity.ActiveChannels { return e.active }

// EffectiveMode returns the resolved mono/stereo mode of the last tick.
func (e *Engine) EffectiveMode() routing.ChannelMode { return e.effective }

// LeftBands returns the last aggregated left-channel snapshot, or nil
// if none has been produced. The slice is replaced wholesale each tick
// and never mutated, so callers may hold it across ticks.
func (e *Engine) LeftBands() []float64 { return e.leftBands }

// RightBands returns the last aggregated right-channel snapshot.
func (e *Engine) RightBands() []float64 { return e.rightBands }

// Bands returns the snapshot used for single-trace display: the left
// channel when available, otherwise the right.
func (e *Engine) Bands() []float64 {
	if e.leftBands != nil {
		return e.leftBands
	}

	return e.rightBands
}

// Reset returns detector and routing state to session defaults. Band
// snapshots are cleared; filter parameters are left untouched.
func (e *Engine) Reset() {
	e.detector.Reset()
	e.havePrev = false
	e.prevActive = activity.ActiveChannels{}
	e.active = activity.ActiveChannels{}
	e.leftBands = nil
	e.rightBands = nil
}

// Tick runs one analysis step.
//
// The intra-tick order is fixed: silence detection first, then the
// routing decision (re-applied on the graph only when activity changed
// against the previous tick), then band aggregation for the channels
// that carry data. A frame without any spectra degrades to an inactive
// determination; it never fails the tick.
func (e *Engine) Tick(now time.Time, frame Frame) {
	e.active = e.detector.Process(now, frame.Left, frame.Right)
	e.effective = routing.EffectiveMode(e.channelMode, e.active, frame.Channels)

	if !e.havePrev || e.active != e.prevActive {
		if e.router != nil {
			e.router.Apply(routing.BuildPlan(e.effective, e.active))
		}

		e.prevActive = e.active
		e.havePrev = true
	}

	e.leftBands = e.aggregateChannel(frame.Left, frame.SampleRate, frame.FFTSize, e.leftBands)
	e.rightBands = e.aggregateChannel(frame.Right, frame.SampleRate, frame.FFTSize, e.rightBands)
}

// aggregateChannel returns a fresh snapshot for a channel with data, or
// the previous snapshot when the channel has none this tick.
func (e *Engine) aggregateChannel(spectrum []float64, sampleRate float64, fftSize int, prev []float64) []float64 {
	if spectrum == nil || sampleRate <= 0 || fftSize <= 0 {
		return prev
	}

	// Fresh allocation per tick: consumers holding the previous slice
	// keep a consistent snapshot, no in-place mutation.
	if e.boost {
		return aggregate.Aggregate(spectrum, sampleRate, fftSize, e.partition, e.reducer, aggregate.WithBoost(BoostDB))
	}

	return aggregate.Aggregate(spectrum, sampleRate, fftSize, e.partition, e.reducer)
}

func (e *Engine) pushCutoffs(hpfHz, lpfHz float64) {
	for _, node := range e.hpfNodes {
		node.SetFrequency(hpfHz)
	}

	for _, node := range e.lpfNodes {
		node.SetFrequency(lpfHz)
	}
}
