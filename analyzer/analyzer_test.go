package analyzer

import (
	"testing"
	"time"

	"github.com/cwbudde/algo-analyzer/analyzer/routing"
	"github.com/cwbudde/algo-analyzer/dsp/aggregate"
	"github.com/cwbudde/algo-analyzer/internal/testutil"
)

const (
	testSampleRate = 48000.0
	testFFTSize    = 2048
)

type fakeRouter struct {
	plans []routing.Plan
}

func (r *fakeRouter) Apply(plan routing.Plan) {
	r.plans = append(r.plans, plan)
}

type fakeNode struct {
	freqs []float64
}

func (n *fakeNode) SetFrequency(hz float64) {
	n.freqs = append(n.freqs, hz)
}

func flatSpectrum(db float64) []float64 {
	return testutil.SpectrumDB(db, testFFTSize/2)
}

func stereoFrame(leftDB, rightDB float64) Frame {
	return Frame{
		SampleRate: testSampleRate,
		FFTSize:    testFFTSize,
		Channels:   2,
		Left:       flatSpectrum(leftDB),
		Right:      flatSpectrum(rightDB),
	}
}

func TestEngine_FirstTickAppliesRouting(t *testing.T) {
	router := &fakeRouter{}
	e := New(WithRouter(router))

	now := time.Now()
	e.Tick(now, stereoFrame(-30, -30))

	if len(router.plans) != 1 {
		t.Fatalf("plans after first tick = %d, want 1", len(router.plans))
	}

	plan := router.plans[0]
	if plan.Mode != routing.ModeStereo || !plan.Left || !plan.Right {
		t.Errorf("first plan = %+v, want full stereo", plan)
	}

	// Unchanged activity must not reconnect the graph.
	e.Tick(now.Add(20*time.Millisecond), stereoFrame(-30, -30))
	e.Tick(now.Add(40*time.Millisecond), stereoFrame(-30, -30))

	if len(router.plans) != 1 {
		t.Errorf("plans after steady ticks = %d, want still 1", len(router.plans))
	}
}

func TestEngine_ReroutesWhenChannelGoesSilent(t *testing.T) {
	router := &fakeRouter{}
	e := New(WithRouter(router))

	now := time.Now()
	e.Tick(now, stereoFrame(-30, -30))

	// Right drops below threshold; within the hold time it stays active.
	e.Tick(now.Add(100*time.Millisecond), stereoFrame(-30, -90))

	if len(router.plans) != 1 {
		t.Fatalf("rerouted before hold time elapsed: %d plans", len(router.plans))
	}

	e.Tick(now.Add(700*time.Millisecond), stereoFrame(-30, -90))

	if len(router.plans) != 2 {
		t.Fatalf("plans after silence hold = %d, want 2", len(router.plans))
	}

	plan := router.plans[1]
	if plan.Mode != routing.ModeMono || !plan.Left || plan.Right {
		t.Errorf("silent-right plan = %+v, want mono on left", plan)
	}

	// Recovery is immediate and triggers another re-route.
	e.Tick(now.Add(720*time.Millisecond), stereoFrame(-30, -30))

	if len(router.plans) != 3 {
		t.Fatalf("plans after recovery = %d, want 3", len(router.plans))
	}

	if got := router.plans[2]; got.Mode != routing.ModeStereo || !got.Right {
		t.Errorf("recovery plan = %+v, want stereo", got)
	}
}

func TestEngine_BothSilentKeepsLeftConnected(t *testing.T) {
	router := &fakeRouter{}
	e := New(WithRouter(router))

	now := time.Now()
	e.Tick(now, stereoFrame(-90, -90))
	e.Tick(now.Add(700*time.Millisecond), stereoFrame(-90, -90))

	plan := router.plans[len(router.plans)-1]
	if !plan.Left {
		t.Errorf("both-silent plan = %+v, want left kept connected", plan)
	}
}

func TestEngine_AutoModeFollowsInput(t *testing.T) {
	e := New()
	now := time.Now()

	e.Tick(now, stereoFrame(-30, -30))

	if e.EffectiveMode() != routing.ModeStereo {
		t.Errorf("auto with two active channels = %v, want stereo", e.EffectiveMode())
	}

	mono := Frame{
		SampleRate: testSampleRate,
		FFTSize:    testFFTSize,
		Channels:   1,
		Left:       flatSpectrum(-30),
	}
	e.Tick(now.Add(20*time.Millisecond), mono)

	if e.EffectiveMode() != routing.ModeMono {
		t.Errorf("auto with mono input = %v, want mono", e.EffectiveMode())
	}
}

func TestEngine_SetChannelModeForcesReroute(t *testing.T) {
	router := &fakeRouter{}
	e := New(WithRouter(router))

	now := time.Now()
	e.Tick(now, stereoFrame(-30, -30))
	e.SetChannelMode(routing.ModeMono)
	e.Tick(now.Add(20*time.Millisecond), stereoFrame(-30, -30))

	if len(router.plans) != 2 {
		t.Fatalf("plans after mode change = %d, want 2", len(router.plans))
	}

	if got := router.plans[1]; got.Mode != routing.ModeMono || !got.Left || got.Right {
		t.Errorf("forced mono plan = %+v", got)
	}

	// Setting the same mode again is a no-op.
	e.SetChannelMode(routing.ModeMono)
	e.Tick(now.Add(40*time.Millisecond), stereoFrame(-30, -30))

	if len(router.plans) != 2 {
		t.Errorf("plans after no-op mode set = %d, want still 2", len(router.plans))
	}
}

func TestEngine_BandSnapshotsReplacedWholesale(t *testing.T) {
	e := New()
	now := time.Now()

	e.Tick(now, stereoFrame(-30, -30))

	first := e.LeftBands()
	if len(first) != 120 {
		t.Fatalf("snapshot length = %d, want 120", len(first))
	}

	held := make([]float64, len(first))
	copy(held, first)

	e.Tick(now.Add(20*time.Millisecond), stereoFrame(-50, -50))

	if &e.LeftBands()[0] == &first[0] {
		t.Error("snapshot reused the previous backing array")
	}

	for i, v := range first {
		if v != held[i] {
			t.Fatalf("previous snapshot mutated at band %d", i)
		}
	}
}

func TestEngine_MissingChannelKeepsPreviousSnapshot(t *testing.T) {
	e := New()
	now := time.Now()

	e.Tick(now, stereoFrame(-30, -30))
	prev := e.RightBands()

	frame := stereoFrame(-30, -30)
	frame.Right = nil
	e.Tick(now.Add(20*time.Millisecond), frame)

	if &e.RightBands()[0] != &prev[0] {
		t.Error("nil right spectrum replaced the previous snapshot")
	}
}

func TestEngine_BoostRaisesBands(t *testing.T) {
	e := New()
	now := time.Now()

	e.Tick(now, stereoFrame(-60, -60))
	plain := e.LeftBands()[40]

	e.SetBoost(true)
	e.Tick(now.Add(20*time.Millisecond), stereoFrame(-60, -60))
	boosted := e.LeftBands()[40]

	if diff := boosted - plain; diff < BoostDB-0.5 || diff > BoostDB+0.5 {
		t.Errorf("boost lifted band by %v dB, want ~%v", diff, BoostDB)
	}
}

func TestEngine_CutoffPushes(t *testing.T) {
	e := New()

	hpf := &fakeNode{}
	lpf := &fakeNode{}
	e.AddHpfNode(hpf)
	e.AddLpfNode(lpf)

	// Registration pushes the current cutoffs immediately.
	if len(hpf.freqs) != 1 || hpf.freqs[0] != e.Params().HpfCutoff() {
		t.Fatalf("hpf initial push = %v", hpf.freqs)
	}

	if len(lpf.freqs) != 1 || lpf.freqs[0] != e.Params().LpfCutoff() {
		t.Fatalf("lpf initial push = %v", lpf.freqs)
	}

	e.Params().SetHpfCutoff(1000)

	if got := hpf.freqs[len(hpf.freqs)-1]; got != 1000 {
		t.Errorf("hpf push after setter = %v, want 1000", got)
	}

	// Out-of-range requests arrive pre-clamped.
	e.Params().SetLpfCutoff(90000)

	for _, f := range lpf.freqs {
		if f < 20 || f > 20000 {
			t.Errorf("pushed cutoff %v outside [20, 20000]", f)
		}
	}
}

func TestEngine_Bands_PrefersLeft(t *testing.T) {
	e := New()
	now := time.Now()

	frame := Frame{
		SampleRate: testSampleRate,
		FFTSize:    testFFTSize,
		Channels:   2,
		Right:      flatSpectrum(-30),
	}
	e.Tick(now, frame)

	if e.Bands() == nil {
		t.Fatal("no display bands with right-only data")
	}

	e.Tick(now.Add(20*time.Millisecond), stereoFrame(-30, -30))

	if &e.Bands()[0] != &e.LeftBands()[0] {
		t.Error("display bands do not prefer the left channel")
	}
}

func TestEngine_ReducerSwitch(t *testing.T) {
	e := New(WithReducer(aggregate.Max))

	if e.Reducer() != aggregate.Max {
		t.Errorf("reducer = %v, want max", e.Reducer())
	}

	e.SetReducer(aggregate.Mean)

	if e.Reducer() != aggregate.Mean {
		t.Errorf("reducer after switch = %v, want mean", e.Reducer())
	}
}

func TestEngine_Reset(t *testing.T) {
	router := &fakeRouter{}
	e := New(WithRouter(router))

	now := time.Now()
	e.Tick(now, stereoFrame(-30, -30))
	e.Reset()

	if e.LeftBands() != nil || e.RightBands() != nil {
		t.Error("band snapshots survive reset")
	}

	// After reset the next tick re-applies routing from scratch.
	e.Tick(now.Add(20*time.Millisecond), stereoFrame(-30, -30))

	if len(router.plans) != 2 {
		t.Errorf("plans after reset+tick = %d, want 2", len(router.plans))
	}
}
