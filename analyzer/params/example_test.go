package params_test

import (
	"fmt"

	"github.com/cwbudde/algo-analyzer/analyzer/params"
)

func ExampleParams_ApplyPreset() {
	p := params.New()
	p.ApplyPreset(params.Preset{Name: "speech", Hpf: 300, Lpf: 3400})

	fmt.Printf("%.0f %.0f\n", p.HpfCutoff(), p.LpfCutoff())
	// Output: 300 3400
}

func ExampleParams_ToggleFixedDistance() {
	p := params.New(params.WithCutoffs(80, 12000))

	// The current gap becomes the fixed distance; the pair now moves
	// together.
	p.ToggleFixedDistance()
	p.SetHpfCutoff(500)

	fmt.Printf("%.0f %.0f\n", p.HpfCutoff(), p.LpfCutoff())
	// Output: 500 12420
}
