package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-analyzer/analyzer"
	"github.com/cwbudde/algo-analyzer/analyzer/activity"
	"github.com/cwbudde/algo-analyzer/analyzer/params"
	"github.com/cwbudde/algo-analyzer/analyzer/routing"
	"github.com/cwbudde/algo-analyzer/analyzer/source"
	"github.com/cwbudde/algo-analyzer/dsp/aggregate"
	"github.com/cwbudde/algo-analyzer/dsp/filter/cutoff"
	"github.com/cwbudde/algo-analyzer/dsp/logfreq"
)

var barChars = []rune(" ▁▂▃▄▅▆▇█")

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"})

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})

	markerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#AA3333", Dark: "#FF6666"})

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
)

// Presets reachable from the number keys.
var presets = []params.Preset{
	{Name: "full", Hpf: 20, Lpf: 20000},
	{Name: "speech", Hpf: 300, Lpf: 3400},
	{Name: "music", Hpf: 40, Lpf: 18000},
	{Name: "bass", Hpf: 20, Lpf: 250},
}

// cutoffStep is one semitone; cutoff drags move in musical steps.
var cutoffStep = math.Pow(2, 1.0/12)

type tickMsg time.Time

// planRecorder is the engine's routing collaborator; the TUI only
// displays the connection state.
type planRecorder struct {
	plan routing.Plan
	set  bool
}

func (r *planRecorder) Apply(plan routing.Plan) {
	r.plan = plan
	r.set = true
}

type model struct {
	input  *wavInput
	src    *source.FFT
	engine *analyzer.Engine
	plans  *planRecorder

	hpf []*cutoff.Cascade
	lpf []*cutoff.Cascade

	meterL progress.Model
	meterR progress.Model

	leftLevel  float64
	rightLevel float64

	filterOn  bool
	powerSave bool
	paused    bool
	inputDone bool

	width  int
	height int
	err    error
}

func newModel(in *wavInput, src *source.FFT, eng *analyzer.Engine, plans *planRecorder, hpf, lpf []*cutoff.Cascade, powerSave bool) model {
	meter := func() progress.Model {
		p := progress.New(progress.WithDefaultGradient())
		p.Width = 30
		p.ShowPercentage = false

		return p
	}

	return model{
		input:          in,
		src:            src,
		engine:         eng,
		plans:          plans,
		hpf:            hpf,
		lpf:            lpf,
		meterL:         meter(),
		meterR:         meter(),
		leftLevel:  activity.LevelDB(nil),
		rightLevel: activity.LevelDB(nil),
		filterOn:   true,
		powerSave:  powerSave,
	}
}

func (m model) tickCmd() tea.Cmd {
	interval := time.Second / 60
	if m.powerSave {
		interval = time.Second / 20
	}

	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), tea.SetWindowTitle("bandscope"))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.step(time.Time(msg))

		return m, m.tickCmd()
	}

	return m, nil
}

func (m *model) step(now time.Time) {
	// Blocks are sized for 60 fps; the throttled rate reads three per
	// frame so analysis keeps pace with the file.
	blocks := 1
	if m.powerSave {
		blocks = 3
	}

	for i := 0; i < blocks && !m.paused && !m.inputDone; i++ {
		left, right, err := m.input.Read()
		if err != nil {
			m.inputDone = true
			m.err = err

			break
		}

		if m.filterOn {
			m.hpf[0].ProcessBlock(left)
			m.lpf[0].ProcessBlock(left)

			if right != nil && len(m.hpf) > 1 {
				m.hpf[1].ProcessBlock(right)
				m.lpf[1].ProcessBlock(right)
			}
		}

		m.src.Push(left, right)
	}

	frame := m.src.Frame()
	m.engine.Tick(now, frame)

	m.leftLevel = activity.LevelDB(frame.Left)
	m.rightLevel = activity.LevelDB(frame.Right)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q", "ctrl+c", "esc":
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case " ":
		m.paused = !m.paused

	case "h":
		m.engine.Params().SetHpfCutoff(m.engine.Params().HpfCutoff() / cutoffStep)
	case "H":
		m.engine.Params().SetHpfCutoff(m.engine.Params().HpfCutoff() * cutoffStep)
	case "l":
		m.engine.Params().SetLpfCutoff(m.engine.Params().LpfCutoff() / cutoffStep)
	case "L":
		m.engine.Params().SetLpfCutoff(m.engine.Params().LpfCutoff() * cutoffStep)

	case "f":
		m.engine.Params().ToggleFixedDistance()

	case "m":
		m.engine.SetChannelMode(nextMode(m.engine.ChannelMode()))

	case "b":
		m.engine.SetBoost(!m.engine.Boost())

	case "r":
		m.engine.SetReducer(nextReducer(m.engine.Reducer()))

	case "s":
		m.powerSave = !m.powerSave

	case "x":
		m.filterOn = !m.filterOn

	case "0":
		for _, c := range append(m.hpf, m.lpf...) {
			c.Reset()
		}

	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if idx := int(key[0] - '1'); idx < len(presets) {
				m.engine.Params().ApplyPreset(presets[idx])
			}
		}
	}

	return m, nil
}

func nextMode(mode routing.ChannelMode) routing.ChannelMode {
	switch mode {
	case routing.ModeAuto:
		return routing.ModeMono
	case routing.ModeMono:
		return routing.ModeStereo
	default:
		return routing.ModeAuto
	}
}

func nextReducer(r aggregate.Reducer) aggregate.Reducer {
	switch r {
	case aggregate.RMS:
		return aggregate.Mean
	case aggregate.Mean:
		return aggregate.Max
	default:
		return aggregate.RMS
	}
}

func (m model) View() string {
	if m.width == 0 {
		return "starting..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("bandscope"))
	b.WriteString("\n\n")

	cols := m.width - 2
	if cols < 24 {
		cols = 24
	}

	rows := m.height - 9
	if rows < 4 {
		rows = 4
	}

	b.WriteString(renderBars(m.engine.Bands(), cols, rows))
	b.WriteString(markerStyle.Render(renderMarkers(m.engine.Params(), cols)))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.statusLine()))
	b.WriteString("\n")
	b.WriteString(m.meterLine())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("h/H l/L cutoffs · 1-4 presets · f fixed gap · m mode · r reducer · b boost · x filter · s power save · space pause · q quit"))

	return b.String()
}

// renderBars draws band levels as a block-character bar field, one band
// per column, subsampled when the terminal is narrower than the band
// count.
func renderBars(bands []float64, cols, rows int) string {
	var b strings.Builder

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if len(bands) == 0 {
				b.WriteRune(' ')
				continue
			}

			band := col * len(bands) / cols

			// Map [-100, 0] dB onto the full bar height.
			level := (bands[band] + 100) / 100 * float64(rows)
			fromBottom := float64(rows - 1 - row)

			idx := 0

			switch {
			case level > fromBottom+1:
				idx = len(barChars) - 1
			case level > fromBottom:
				idx = int((level - fromBottom) * float64(len(barChars)-1))
			}

			b.WriteRune(barChars[idx])
		}

		b.WriteString("\n")
	}

	return b.String()
}

// renderMarkers draws the HPF and LPF positions on the log-frequency
// axis under the bars.
func renderMarkers(p *params.Params, cols int) string {
	line := make([]rune, cols)
	for i := range line {
		line[i] = ' '
	}

	place := func(freq float64) {
		x := int(math.Round(logfreq.FrequencyToX(freq, params.MinFreq, params.MaxFreq, float64(cols-1))))
		if x >= 0 && x < cols {
			line[x] = '▲'
		}
	}

	place(p.HpfCutoff())
	place(p.LpfCutoff())

	return string(line)
}

func (m model) statusLine() string {
	p := m.engine.Params()

	fixed := "free"
	if p.FixedDistanceEnabled() {
		fixed = fmt.Sprintf("gap %.0f Hz", p.FixedDistance())
	}

	filter := "filter on"
	if !m.filterOn {
		filter = "filter off"
	}

	boost := ""
	if m.engine.Boost() {
		boost = " · boost +20 dB"
	}

	state := ""
	switch {
	case m.paused:
		state = " · paused"
	case m.err != nil:
		state = fmt.Sprintf(" · %v", m.err)
	case m.inputDone:
		state = " · input ended"
	}

	return fmt.Sprintf("HPF %.0f Hz · LPF %.0f Hz · %s · %s/%s · %s · %s · %s%s%s",
		p.HpfCutoff(), p.LpfCutoff(), fixed,
		m.engine.ChannelMode(), m.engine.EffectiveMode(),
		m.engine.Reducer(), filter, connectionLabel(m.plans), boost, state)
}

func connectionLabel(r *planRecorder) string {
	if !r.set {
		return "unrouted"
	}

	switch {
	case r.plan.Left && r.plan.Right:
		return "L+R"
	case r.plan.Left:
		return "L"
	case r.plan.Right:
		return "R"
	default:
		return "disconnected"
	}
}

func (m model) meterLine() string {
	pct := func(db float64) float64 {
		return math.Min(1, math.Max(0, (db+100)/100))
	}

	line := "L " + m.meterL.ViewAs(pct(m.leftLevel))
	if m.src.Channels() == 2 {
		line += "  R " + m.meterR.ViewAs(pct(m.rightLevel))
	}

	return line
}
