// Package smooth implements the one-pole exponential smoother the engine
// uses to ramp gains and EQ gain targets toward their written values
// without zipper noise, grounded on
// pkg/framework/param.Smoother's ExponentialSmoothing mode, specialized to
// this spec's fixed 0.999 coefficient (spec §4.G, §4.A).
package smooth

// Coefficient is the one-pole smoothing coefficient spec §4.G specifies:
// smoothed := Coefficient*smoothed + (1-Coefficient)*target, per sample.
const Coefficient = 0.999

// Gain is an audio-thread-private smoothed shadow of a target value. It is
// never read by control threads (spec §3: "smoothed shadows ... never read
// by controls"); only the RT thread owns it, so it needs no atomics at all.
type Gain struct {
	current float32
}

// NewGain returns a Gain initialized to v with no pending ramp.
func NewGain(v float32) *Gain {
	return &Gain{current: v}
}

// Next advances the smoother one sample toward target and returns the new
// current value.
func (g *Gain) Next(target float32) float32 {
	g.current = Coefficient*g.current + (1-Coefficient)*target
	return g.current
}

// Value returns the current smoothed value without advancing it.
func (g *Gain) Value() float32 {
	return g.current
}

// Reset snaps the smoother directly to v, skipping any ramp. Used when a
// discontinuity is already expected (e.g. engine construction).
func (g *Gain) Reset(v float32) {
	g.current = v
}
