package dsp

import (
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/hoopipi/hoopipi/internal/cell"
	"github.com/hoopipi/hoopipi/pkg/dsp/gain"
)

// Reverb channel/stage counts, grounded 1:1 on
// original_source/HoopiPi/Reverb.{h,cpp}.
const (
	reverbChannels       = 8
	reverbDiffusionSteps = 4
	reverbMinRoomMs      = 20.0
	reverbMaxRoomMs      = 200.0
)

// delayLine is a simple circular buffer of float32 samples.
type delayLine struct {
	buf   []float32
	write int
}

func newDelayLine(lengthSamples int) *delayLine {
	if lengthSamples < 1 {
		lengthSamples = 1
	}
	return &delayLine{buf: make([]float32, lengthSamples)}
}

func (d *delayLine) readWrite(in float32) float32 {
	out := d.buf[d.write]
	d.buf[d.write] = in
	d.write++
	if d.write >= len(d.buf) {
		d.write = 0
	}
	return out
}

func (d *delayLine) clear() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.write = 0
}

// diffusionStep is one cascaded stage of the diffuser: eight delay lines
// drawn from disjoint sub-ranges of [0,stepMs], each with an independent
// polarity, mixed by an 8x8 Hadamard matrix. Grounded on
// original_source/HoopiPi/Reverb.cpp's DiffusionStep::configure.
type diffusionStep struct {
	lines     [8]*delayLine
	polarity  [8]float32
}

func newDiffusionStep(sampleRate, stepMs float64, seed int64) *diffusionStep {
	s := &diffusionStep{}
	rng := rand.New(rand.NewSource(seed))
	subRangeMs := stepMs / 8.0
	for i := 0; i < 8; i++ {
		lowMs := float64(i) * subRangeMs
		lengthMs := lowMs + rng.Float64()*subRangeMs
		lengthSamples := int(lengthMs * sampleRate / 1000.0)
		s.lines[i] = newDelayLine(lengthSamples)
		if rng.Float32() > 0.5 {
			s.polarity[i] = -1
		} else {
			s.polarity[i] = 1
		}
	}
	return s
}

func (s *diffusionStep) process(in [8]float32) [8]float32 {
	var delayed [8]float32
	for i := 0; i < 8; i++ {
		delayed[i] = s.lines[i].readWrite(in[i]) * s.polarity[i]
	}
	return hadamard8(delayed)
}

func (s *diffusionStep) clear() {
	for _, l := range s.lines {
		l.clear()
	}
}

// diffuser cascades reverbDiffusionSteps diffusionSteps, halving the
// sub-range width each stage; the first stage's range equals the
// configured room size in milliseconds.
type diffuser struct {
	steps [reverbDiffusionSteps]*diffusionStep
}

func newDiffuser(sampleRate, roomSizeMs float64) *diffuser {
	d := &diffuser{}
	stepMs := roomSizeMs
	for i := 0; i < reverbDiffusionSteps; i++ {
		seed := int64(12345 + i*6789)
		d.steps[i] = newDiffusionStep(sampleRate, stepMs, seed)
		stepMs /= 2.0
	}
	return d
}

func (d *diffuser) process(in [8]float32) [8]float32 {
	out := in
	for _, step := range d.steps {
		out = step.process(out)
	}
	return out
}

func (d *diffuser) clear() {
	for _, step := range d.steps {
		step.clear()
	}
}

// feedbackNetwork is eight delay lines with lengths 2^(c/8)*baseMs mixed by
// an 8x8 Householder reflection, feeding back input+decayGain*mixed.
// Grounded on original_source/HoopiPi/Reverb.cpp's FeedbackNetwork.
type feedbackNetwork struct {
	lines      [8]*delayLine
	decayGain  float32
}

func newFeedbackNetwork(sampleRate, baseMs float64) *feedbackNetwork {
	f := &feedbackNetwork{}
	for c := 0; c < 8; c++ {
		ms := math.Pow(2, float64(c)/8.0) * baseMs
		lengthSamples := int(ms * sampleRate / 1000.0)
		f.lines[c] = newDelayLine(lengthSamples)
	}
	return f
}

func (f *feedbackNetwork) setDecayGain(roomSizeMs, rt60Seconds float64) {
	typicalLoopMs := roomSizeMs * 1.5
	loopsPerRT60 := rt60Seconds / (typicalLoopMs / 1000.0)
	dbPerCycle := -60.0 / loopsPerRT60
	f.decayGain = gain.DbToLinear32(float32(dbPerCycle))
}

func (f *feedbackNetwork) process(in [8]float32) [8]float32 {
	var read [8]float32
	for c := 0; c < 8; c++ {
		read[c] = f.lines[c].readWrite(0)
	}
	mixed := householder8(read)
	var out [8]float32
	for c := 0; c < 8; c++ {
		out[c] = read[c]
		f.lines[c].readWrite(in[c] + f.decayGain*mixed[c])
	}
	return out
}

func (f *feedbackNetwork) clear() {
	for _, l := range f.lines {
		l.clear()
	}
}

// hadamard8 applies the fixed 8x8 Walsh-Hadamard mixing matrix, scaled to
// be orthonormal (1/sqrt(8)).
func hadamard8(in [8]float32) [8]float32 {
	var out [8]float32
	const scale = float32(1.0 / 2.8284271247461903) // 1/sqrt(8)
	for i := 0; i < 8; i++ {
		var sum float32
		for j := 0; j < 8; j++ {
			if hadamardSign(i, j) {
				sum += in[j]
			} else {
				sum -= in[j]
			}
		}
		out[i] = sum * scale
	}
	return out
}

// hadamardSign reports the sign of entry (i,j) of the order-8 Sylvester
// Hadamard matrix: H[i][j] = (-1)^popcount(i&j).
func hadamardSign(i, j int) bool {
	return bitsSet(i&j)%2 == 0
}

func bitsSet(v int) int {
	n := 0
	for v != 0 {
		n += v & 1
		v >>= 1
	}
	return n
}

// householder8 applies the fixed 8-dimensional Householder reflection
// H = I - (2/N)*ones(N,N), the standard deterministic FDN mixing matrix
// (no free parameters, matching original_source's use of a fixed
// signalsmith::mix::Householder<float,8>).
func householder8(in [8]float32) [8]float32 {
	var sum float32
	for _, v := range in {
		sum += v
	}
	const twoOverN = 2.0 / 8.0
	shared := sum * twoOverN
	var out [8]float32
	for i := range in {
		out[i] = in[i] - shared
	}
	return out
}

// reverbNetwork bundles the diffuser and feedback network that share one
// room-size/decay-time configuration, so a setter can rebuild both and
// publish them to the audio thread with a single atomic swap.
type reverbNetwork struct {
	diff *diffuser
	fbn  *feedbackNetwork
}

// Reverb is the two-stage diffuser + feedback-network algorithmic reverb,
// grounded on original_source/HoopiPi/Reverb.{h,cpp}.
type Reverb struct {
	Enabled    *cell.Bool
	RoomSize   *cell.Float // 0..1
	DecayTime  *cell.Float // seconds (RT60)
	Dry        *cell.Float // 0..1
	Wet        *cell.Float // 0..1

	sampleRate float64

	// network is rebuilt (reallocating its delay lines) only by
	// SetRoomSize/SetDecayTime on the calling control thread, matching
	// Reverb.cpp's reconfigure() — never reallocated from ProcessStereo,
	// which only ever does an atomic load (spec §5, §8 Invariant 1).
	network atomic.Pointer[reverbNetwork]
}

// NewReverb returns a Reverb tuned for sampleRate with the documented
// persisted defaults (disabled, roomSize=0.3, decay=2.0s, dry=1.0, wet=0.3).
func NewReverb(sampleRate float64) *Reverb {
	r := &Reverb{
		Enabled:    cell.NewBool(false),
		RoomSize:   cell.NewFloat(0.3),
		DecayTime:  cell.NewFloat(2.0),
		Dry:        cell.NewFloat(1.0),
		Wet:        cell.NewFloat(0.3),
		sampleRate: sampleRate,
	}
	r.network.Store(r.build(0.3, 2.0))
	return r
}

func (r *Reverb) roomSizeMs(size float64) float64 {
	return reverbMinRoomMs + size*(reverbMaxRoomMs-reverbMinRoomMs)
}

func (r *Reverb) build(roomSize, decaySeconds float64) *reverbNetwork {
	roomMs := r.roomSizeMs(roomSize)
	fbn := newFeedbackNetwork(r.sampleRate, roomMs)
	fbn.setDecayGain(roomMs, decaySeconds)
	return &reverbNetwork{
		diff: newDiffuser(r.sampleRate, roomMs),
		fbn:  fbn,
	}
}

// SetRoomSize updates the room size (0..1), reallocating the diffuser and
// feedback network's delay lines on the calling thread and publishing them
// to the audio thread with one atomic store.
func (r *Reverb) SetRoomSize(size float64) {
	r.RoomSize.Store(float32(size))
	r.network.Store(r.build(size, float64(r.DecayTime.Load())))
}

// SetDecayTime updates RT60 in seconds, reallocating and republishing the
// network the same way SetRoomSize does.
func (r *Reverb) SetDecayTime(seconds float64) {
	r.DecayTime.Store(float32(seconds))
	r.network.Store(r.build(float64(r.RoomSize.Load()), seconds))
}

// ClearBuffers zeroes all delay-line state, per spec §4.A.
func (r *Reverb) ClearBuffers() {
	n := r.network.Load()
	n.diff.clear()
	n.fbn.clear()
}

// ProcessStereo applies the reverb to a stereo pair in place.
func (r *Reverb) ProcessStereo(left, right []float32) {
	if !r.Enabled.Load() {
		return
	}
	net := r.network.Load()

	dry := r.Dry.Load()
	wet := r.Wet.Load()
	n := len(left)
	if len(right) < n {
		n = len(right)
	}

	for i := 0; i < n; i++ {
		var spread [8]float32
		spread[0] = left[i]
		spread[1] = right[i]
		// Remaining channels start silent; the feedback network's own tail
		// populates them on subsequent samples, matching
		// original_source's even=L/odd=R spread across 8 channels.
		diffused := net.diff.process(spread)
		fed := net.fbn.process(diffused)

		var leftSum, rightSum float32
		for c := 0; c < reverbChannels; c += 2 {
			leftSum += fed[c]
		}
		for c := 1; c < reverbChannels; c += 2 {
			rightSum += fed[c]
		}
		const half = reverbChannels / 2
		wetLeft := leftSum / half
		wetRight := rightSum / half

		left[i] = dry*left[i] + wet*wetLeft
		right[i] = dry*right[i] + wet*wetRight
	}
}
