package engine

// StereoMode selects how the two physical input channels map onto the
// engine's stereo processing graph, per spec §3/§4.G.
type StereoMode int32

const (
	// LeftMono2Stereo runs the left input through one channel chain and
	// mirrors the result to both outputs. This is the persisted default
	// (§13.4).
	LeftMono2Stereo StereoMode = iota
	// RightMono2Stereo is the same, sourced from the right input.
	RightMono2Stereo
	// Stereo2Mono mixes L and R down by independent ratios before running
	// a single channel chain, mirroring the result to both outputs.
	Stereo2Mono
	// Stereo2Stereo runs two independent channel chains; the right
	// channel skips the model stage because bypassModelR defaults to
	// true (spec §9, resolved open question (c) — no special-cased mode
	// check, just the ordinary per-channel bypass-model cell).
	Stereo2Stereo
)

// String renders the mode using the names the control protocol and
// persisted config document use (§13.4, §13.5).
func (m StereoMode) String() string {
	switch m {
	case LeftMono2Stereo:
		return "LeftMono2Stereo"
	case RightMono2Stereo:
		return "RightMono2Stereo"
	case Stereo2Mono:
		return "Stereo2Mono"
	case Stereo2Stereo:
		return "Stereo2Stereo"
	default:
		return "LeftMono2Stereo"
	}
}

// ParseStereoMode parses the control-protocol name back into a
// StereoMode, defaulting to LeftMono2Stereo for anything unrecognized.
func ParseStereoMode(name string) StereoMode {
	switch name {
	case "LeftMono2Stereo":
		return LeftMono2Stereo
	case "RightMono2Stereo":
		return RightMono2Stereo
	case "Stereo2Mono":
		return Stereo2Mono
	case "Stereo2Stereo":
		return Stereo2Stereo
	default:
		return LeftMono2Stereo
	}
}
