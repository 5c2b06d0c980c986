package params

import (
	"math"
	"math/rand"
	"testing"
)

func checkInvariant(t *testing.T, p *Params) {
	t.Helper()

	if p.HpfCutoff() < MinFreq || p.LpfCutoff() > MaxFreq {
		t.Fatalf("cutoffs out of range: hpf=%v lpf=%v", p.HpfCutoff(), p.LpfCutoff())
	}

	if p.HpfCutoff() >= p.LpfCutoff() {
		t.Fatalf("hpf %v >= lpf %v", p.HpfCutoff(), p.LpfCutoff())
	}

	if p.FixedDistanceEnabled() {
		gap := p.LpfCutoff() - p.HpfCutoff()
		if math.Abs(gap-p.FixedDistance()) > 1e-9 {
			t.Fatalf("fixed mode gap %v != fixed distance %v", gap, p.FixedDistance())
		}
	}
}

func TestDefaults(t *testing.T) {
	p := New()

	if p.HpfCutoff() != MinFreq || p.LpfCutoff() != MaxFreq {
		t.Errorf("defaults hpf=%v lpf=%v, want %v/%v",
			p.HpfCutoff(), p.LpfCutoff(), MinFreq, MaxFreq)
	}

	if p.FixedDistanceEnabled() {
		t.Error("fixed-distance mode enabled by default")
	}

	if p.MinDistance() != DefaultMinDistance {
		t.Errorf("min distance = %v, want %v", p.MinDistance(), DefaultMinDistance)
	}
}

func TestSetHpfCutoff_ClampsToFloor(t *testing.T) {
	p := New(WithCutoffs(80, 12000))

	p.SetHpfCutoff(5)

	if p.HpfCutoff() != 20 {
		t.Errorf("hpf = %v, want clamp to 20", p.HpfCutoff())
	}

	if p.LpfCutoff() != 12000 {
		t.Errorf("lpf moved to %v, want untouched 12000", p.LpfCutoff())
	}
}

func TestSetHpfCutoff_RespectsMinDistance(t *testing.T) {
	p := New(WithCutoffs(80, 12000))

	p.SetHpfCutoff(19000)

	if got, want := p.HpfCutoff(), 12000-DefaultMinDistance; got != want {
		t.Errorf("hpf = %v, want %v (lpf - min distance)", got, want)
	}

	checkInvariant(t, p)
}

func TestSetLpfCutoff_RespectsMinDistance(t *testing.T) {
	p := New(WithCutoffs(500, 12000))

	p.SetLpfCutoff(100)

	if got, want := p.LpfCutoff(), 500+DefaultMinDistance; got != want {
		t.Errorf("lpf = %v, want %v (hpf + min distance)", got, want)
	}

	p.SetLpfCutoff(90000)

	if p.LpfCutoff() != MaxFreq {
		t.Errorf("lpf = %v, want ceiling %v", p.LpfCutoff(), MaxFreq)
	}
}

func TestImplicitCoupling(t *testing.T) {
	// Moving the LPF down tightens the HPF's usable range.
	p := New(WithCutoffs(20, 20000))

	p.SetLpfCutoff(1000)
	p.SetHpfCutoff(5000)

	if got, want := p.HpfCutoff(), 1000-DefaultMinDistance; got != want {
		t.Errorf("hpf = %v, want %v", got, want)
	}
}

func TestFixedDistance_CapturesCurrentGap(t *testing.T) {
	p := New(WithCutoffs(80, 12000))

	p.ToggleFixedDistance()

	if !p.FixedDistanceEnabled() {
		t.Fatal("toggle did not enable fixed mode")
	}

	if p.FixedDistance() != 11920 {
		t.Errorf("fixed distance = %v, want 11920", p.FixedDistance())
	}

	// Toggling must not move either cutoff.
	if p.HpfCutoff() != 80 || p.LpfCutoff() != 12000 {
		t.Errorf("toggle moved cutoffs: %v/%v", p.HpfCutoff(), p.LpfCutoff())
	}
}

func TestFixedDistance_MovesPairTogether(t *testing.T) {
	p := New(WithCutoffs(80, 12000))
	p.ToggleFixedDistance()

	p.SetHpfCutoff(15000)

	if p.HpfCutoff() != 8080 {
		t.Errorf("hpf = %v, want 8080 (20000 - 11920)", p.HpfCutoff())
	}

	if p.LpfCutoff() != 20000 {
		t.Errorf("lpf = %v, want 20000", p.LpfCutoff())
	}

	p.SetLpfCutoff(12000)

	if p.LpfCutoff() != 12000 || p.HpfCutoff() != 80 {
		t.Errorf("pair = %v/%v, want 80/12000", p.HpfCutoff(), p.LpfCutoff())
	}

	checkInvariant(t, p)
}

func TestFixedDistance_PresetKeepsGap(t *testing.T) {
	p := New(WithCutoffs(100, 600))
	p.ToggleFixedDistance()

	p.ApplyPreset(Preset{Name: "voice", Hpf: 300, Lpf: 3400})

	if p.HpfCutoff() != 300 {
		t.Errorf("hpf = %v, want preset value 300", p.HpfCutoff())
	}

	// The preset's own gap (3100 Hz) is ignored in fixed mode.
	if p.LpfCutoff() != 800 {
		t.Errorf("lpf = %v, want 800 (hpf + captured 500)", p.LpfCutoff())
	}
}

func TestApplyPreset_FreeMode(t *testing.T) {
	p := New()

	p.ApplyPreset(Preset{Name: "voice", Hpf: 300, Lpf: 3400})

	if p.HpfCutoff() != 300 || p.LpfCutoff() != 3400 {
		t.Errorf("pair = %v/%v, want 300/3400", p.HpfCutoff(), p.LpfCutoff())
	}
}

func TestApplyPreset_DegeneratePreset(t *testing.T) {
	p := New()

	// Inverted pair must still satisfy the invariant.
	p.ApplyPreset(Preset{Hpf: 5000, Lpf: 100})
	checkInvariant(t, p)

	p.ApplyPreset(Preset{Hpf: -10, Lpf: 1e9})
	checkInvariant(t, p)
}

func TestSetFixedDistance_ReanchorsPair(t *testing.T) {
	p := New(WithCutoffs(10000, 15000))
	p.ToggleFixedDistance()

	p.SetFixedDistance(12000)

	if p.LpfCutoff() != 20000 {
		t.Errorf("lpf = %v, want 20000", p.LpfCutoff())
	}

	if p.HpfCutoff() != 8000 {
		t.Errorf("hpf = %v, want 8000 (shifted down)", p.HpfCutoff())
	}

	checkInvariant(t, p)
}

func TestChangeFunc_FiresOnlyOnMovement(t *testing.T) {
	calls := 0

	p := New(WithCutoffs(80, 12000), WithChangeFunc(func(_, _ float64) {
		calls++
	}))

	before := calls

	p.SetHpfCutoff(80) // no movement

	if calls != before {
		t.Errorf("no-op setter fired change callback")
	}

	p.SetHpfCutoff(120)

	if calls != before+1 {
		t.Errorf("setter moved cutoff but callback count = %d, want %d", calls, before+1)
	}
}

func TestInvariant_RandomCallSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for seq := 0; seq < 200; seq++ {
		p := New()

		for op := 0; op < 50; op++ {
			// Deliberately wild inputs, including negatives and huge values.
			f := rng.Float64()*50000 - 5000

			switch rng.Intn(5) {
			case 0:
				p.SetHpfCutoff(f)
			case 1:
				p.SetLpfCutoff(f)
			case 2:
				p.ApplyPreset(Preset{Hpf: f, Lpf: rng.Float64() * 40000})
			case 3:
				p.ToggleFixedDistance()
			case 4:
				p.SetFixedDistance(f)
			}

			checkInvariant(t, p)
		}
	}
}
