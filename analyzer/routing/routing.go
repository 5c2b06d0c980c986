// Package routing resolves the effective mono/stereo mode and builds the
// channel-to-output connection plan handed to the audio graph.
package routing

import "github.com/cwbudde/algo-analyzer/analyzer/activity"

// ChannelMode is the user-selected channel handling.
type ChannelMode int

const (
	// ModeAuto resolves to stereo only while both channels carry signal.
	ModeAuto ChannelMode = iota

	// ModeMono forces single-channel display and output.
	ModeMono

	// ModeStereo forces independent left/right handling.
	ModeStereo
)

// String returns the mode name.
func (m ChannelMode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeMono:
		return "mono"
	case ModeStereo:
		return "stereo"
	default:
		return "unknown"
	}
}

// EffectiveMode resolves the mode actually used for display and routing.
//
// Explicit mono/stereo selections always win. Auto resolves to stereo
// only when the input itself is stereo and both channels are active;
// anything else falls back to mono.
func EffectiveMode(mode ChannelMode, active activity.ActiveChannels, inputChannels int) ChannelMode {
	switch mode {
	case ModeMono:
		return ModeMono
	case ModeStereo:
		return ModeStereo
	default:
		if inputChannels >= 2 && active.Left && active.Right {
			return ModeStereo
		}

		return ModeMono
	}
}

// Plan is the connection instruction handed to the audio-graph
// collaborator. It is derived on demand and never cached across ticks.
type Plan struct {
	Left  bool
	Right bool
	Mode  ChannelMode
}

// BuildPlan produces the connection plan for an already-resolved mode.
//
// Mono duplicates one side to both outputs, preferring left when both or
// neither side is nominally active. Stereo connects each active side
// independently and leaves an inactive side's output unconnected rather
// than duplicating into it.
func BuildPlan(effective ChannelMode, active activity.ActiveChannels) Plan {
	if effective == ModeStereo {
		return Plan{Left: active.Left, Right: active.Right, Mode: ModeStereo}
	}

	if active.Right && !active.Left {
		return Plan{Right: true, Mode: ModeMono}
	}

	return Plan{Left: true, Mode: ModeMono}
}
