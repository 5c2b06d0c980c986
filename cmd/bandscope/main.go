// Command bandscope is a terminal spectrum analyzer for WAV files: 120
// log-spaced bands, per-channel silence tracking and live-tunable
// high-pass/low-pass filtering.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-analyzer/analyzer"
	"github.com/cwbudde/algo-analyzer/analyzer/params"
	"github.com/cwbudde/algo-analyzer/analyzer/routing"
	"github.com/cwbudde/algo-analyzer/analyzer/source"
	"github.com/cwbudde/algo-analyzer/dsp/aggregate"
	"github.com/cwbudde/algo-analyzer/dsp/filter/cutoff"
)

var version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	Version   bool    `short:"v" help:"Show version information"`
	FFTSize   int     `help:"FFT size, a power of two from 256 to 8192" default:"2048"`
	Window    string  `help:"Analysis window" enum:"hann,hamming,blackman,blackmanharris" default:"hann"`
	Smoothing float64 `help:"Spectrum smoothing factor (0 to 0.95)" default:"0.8"`
	Reducer   string  `help:"Band reducer" enum:"rms,mean,max" default:"rms"`
	Order     int     `help:"Butterworth order of the cutoff filters (even)" default:"4"`
	Mono      bool    `help:"Force mono analysis"`
	PowerSave bool    `help:"Start at 20 fps instead of 60"`
	Input     string  `arg:"" name:"input" type:"existingfile" help:"WAV file to analyze" optional:""`
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("bandscope"),
		kong.Description("Terminal log-frequency spectrum analyzer for WAV files"),
		kong.UsageOnError(),
	)

	if cli.Version {
		fmt.Printf("bandscope %s\n", version)
		os.Exit(0)
	}

	if cli.Input == "" {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	if err := run(cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cli *CLI) error {
	// One block per frame at the base 60 fps rate; the power-save mode
	// reads three blocks per 20 fps frame to keep up with the file.
	const baseFPS = 60

	in, err := openWAVInput(cli.Input, baseFPS)
	if err != nil {
		return err
	}
	defer in.Close()

	channels := in.Channels()
	if cli.Mono {
		channels = 1
	}

	src, err := source.NewFFT(float64(in.SampleRate()),
		source.WithFFTSize(cli.FFTSize),
		source.WithSmoothing(cli.Smoothing),
		source.WithWindow(cli.Window),
		source.WithChannels(channels),
	)
	if err != nil {
		return err
	}

	plans := &planRecorder{}
	eng := analyzer.New(
		analyzer.WithRouter(plans),
		analyzer.WithReducer(parseReducer(cli.Reducer)),
	)

	if cli.Mono {
		eng.SetChannelMode(routing.ModeMono)
	}

	hpf, lpf, err := buildCascades(channels, cli.Order, float64(in.SampleRate()))
	if err != nil {
		return err
	}

	for _, c := range hpf {
		eng.AddHpfNode(c)
	}

	for _, c := range lpf {
		eng.AddLpfNode(c)
	}

	m := newModel(in, src, eng, plans, hpf, lpf, cli.PowerSave)

	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("bandscope: ui: %w", err)
	}

	return nil
}

// buildCascades creates one high-pass and one low-pass cascade per
// channel, tuned to the full spectrum span.
func buildCascades(channels, order int, sampleRate float64) (hpf, lpf []*cutoff.Cascade, err error) {
	for i := 0; i < channels; i++ {
		hp, err := cutoff.NewCascade(cutoff.Highpass, params.MinFreq, sampleRate, cutoff.WithOrder(order))
		if err != nil {
			return nil, nil, err
		}

		lp, err := cutoff.NewCascade(cutoff.Lowpass, params.MaxFreq, sampleRate, cutoff.WithOrder(order))
		if err != nil {
			return nil, nil, err
		}

		hpf = append(hpf, hp)
		lpf = append(lpf, lp)
	}

	return hpf, lpf, nil
}

func parseReducer(name string) aggregate.Reducer {
	switch name {
	case "mean":
		return aggregate.Mean
	case "max":
		return aggregate.Max
	default:
		return aggregate.RMS
	}
}
