// Package engine composes the DSP blocks, model slots, and backing-track
// player into the stereo processing graph described in spec §4.G,
// grounded on original_source/HoopiPi/AudioEngine.{h,cpp} via the
// teacher's composition idiom (pkg/framework holding the per-block
// pipeline, generalized from a VST3 processor to this graph).
package engine

import (
	"sync/atomic"
	"time"

	"github.com/hoopipi/hoopipi/internal/backing"
	"github.com/hoopipi/hoopipi/internal/cell"
	"github.com/hoopipi/hoopipi/internal/dsp"
	"github.com/hoopipi/hoopipi/internal/model"
	"github.com/hoopipi/hoopipi/internal/recorder"
)

// Engine is the top-level audio graph: two per-channel chains, a shared
// reverb, two model slots with their loaders, and an optional recording
// tap and backing-track reference (both non-owning, per spec §9's
// note on avoiding an engine↔backing-track ownership cycle).
type Engine struct {
	sampleRate int
	maxBlock   int

	Bypass    *cell.Bool
	Normalize *cell.Bool

	StereoModeCell       *cell.Enum
	Stereo2MonoMixL      *cell.Float
	Stereo2MonoMixR      *cell.Float

	L, R *channel

	SlotA, SlotB     *model.Slot
	LoaderA, LoaderB *model.Loader

	Reverb *dsp.Reverb

	dcBlockerEnabled *cell.Bool

	IncludeBackingInRecording *cell.Bool
	backingTrack              *backing.Track
	recorder                  *recorder.Recorder

	xrunCount atomic.Uint64

	// lastProcessNs/lastBlockNs back LoadRatio: how long the last
	// ProcessStereo call took versus how long that block's worth of audio
	// takes to play out, for getStatus's dspLoad field (spec §4.I).
	lastProcessNs atomic.Uint64
	lastBlockNs   atomic.Uint64

	mixScratch []float32
	recScratchL []float32
	recScratchR []float32
}

// New constructs an Engine for sampleRate with maxBlockSize as the
// largest block ProcessStereo will accept, using factory to construct
// models for both slots' loaders. Defaults match §13.4's persisted
// configuration exactly (bypassModelR starts true — the right channel is
// microphone input by default, resolving spec §9 open question (c)).
func New(sampleRate, maxBlockSize int, factory model.Factory) *Engine {
	e := &Engine{
		sampleRate: sampleRate,
		maxBlock:   maxBlockSize,

		Bypass:    cell.NewBool(false),
		Normalize: cell.NewBool(true),

		StereoModeCell:  cell.NewEnum(int32(LeftMono2Stereo)),
		Stereo2MonoMixL: cell.NewFloat(0.5),
		Stereo2MonoMixR: cell.NewFloat(0.5),

		SlotA: model.NewSlot(),
		SlotB: model.NewSlot(),

		Reverb: dsp.NewReverb(float64(sampleRate)),

		dcBlockerEnabled: cell.NewBool(true),

		IncludeBackingInRecording: cell.NewBool(false),

		mixScratch:  make([]float32, maxBlockSize),
		recScratchL: make([]float32, maxBlockSize),
		recScratchR: make([]float32, maxBlockSize),
	}

	e.L = newChannel(float64(sampleRate), false)
	e.R = newChannel(float64(sampleRate), true)
	e.L.DC.Enabled = e.dcBlockerEnabled
	e.R.DC.Enabled = e.dcBlockerEnabled

	e.LoaderA = model.NewLoader(e.SlotA, factory, maxBlockSize)
	e.LoaderB = model.NewLoader(e.SlotB, factory, maxBlockSize)

	return e
}

// AttachBackingTrack wires a non-owning reference to the shared backing
// track, so the recording tap can mix it in per spec §4.G. The driver
// glue holds the same reference to mix it into the audible output.
func (e *Engine) AttachBackingTrack(t *backing.Track) { e.backingTrack = t }

// AttachRecorder wires a non-owning reference to the recorder used by the
// recording tap.
func (e *Engine) AttachRecorder(r *recorder.Recorder) { e.recorder = r }

// StereoMode returns the current stereo routing mode.
func (e *Engine) StereoMode() StereoMode { return StereoMode(e.StereoModeCell.Load()) }

// SetStereoMode updates the stereo routing mode.
func (e *Engine) SetStereoMode(m StereoMode) { e.StereoModeCell.Store(int32(m)) }

// SetDCBlockerEnabled toggles the shared DC-blocker enable flag both
// channels reference (spec §3: DC blocker on/off is a shared cell, but
// filter state is per-channel).
func (e *Engine) SetDCBlockerEnabled(v bool) { e.dcBlockerEnabled.Store(v) }

// DCBlockerEnabled reports the shared DC-blocker enable state.
func (e *Engine) DCBlockerEnabled() bool { return e.dcBlockerEnabled.Load() }

// XrunCount returns the cumulative count of blocks rejected for exceeding
// the configured maximum block size.
func (e *Engine) XrunCount() uint64 { return e.xrunCount.Load() }

// SampleRate returns the engine's configured sample rate.
func (e *Engine) SampleRate() int { return e.sampleRate }

// MaxBlockSize returns the engine's configured maximum block size.
func (e *Engine) MaxBlockSize() int { return e.maxBlock }

// LoadRatio returns the fraction of the last block's available time that
// ProcessStereo actually spent computing, 0 if no block has run yet.
func (e *Engine) LoadRatio() float64 {
	blockNs := e.lastBlockNs.Load()
	if blockNs == 0 {
		return 0
	}
	return float64(e.lastProcessNs.Load()) / float64(blockNs)
}

// LatencyMs returns the nominal output latency for one block at the
// engine's configured sample rate.
func (e *Engine) LatencyMs() float64 {
	if e.sampleRate == 0 {
		return 0
	}
	return 1000 * float64(e.maxBlock) / float64(e.sampleRate)
}

// Close releases the model loaders' worker goroutines.
func (e *Engine) Close() {
	e.LoaderA.Close()
	e.LoaderB.Close()
}

// ProcessStereo runs one block through the engine graph in place on
// outL/outR, reading inL/inR. All four slices must have equal length, at
// most MaxBlockSize; a longer block is an xrun: the block passes through
// unprocessed and the xrun counter increments (spec §4.G "Clock and
// buffer").
func (e *Engine) ProcessStereo(inL, inR, outL, outR []float32) {
	start := time.Now()
	n := len(inL)

	if n > e.maxBlock {
		e.xrunCount.Add(1)
		copy(outL, inL)
		copy(outR, inR)
		e.recordLoad(start, n)
		return
	}

	if e.Bypass.Load() {
		copy(outL, inL)
		copy(outR, inR)
		e.recordLoad(start, n)
		return
	}

	normalize := e.Normalize.Load()
	mode := e.StereoMode()

	if mode == Stereo2Stereo {
		copy(outL, inL[:n])
		copy(outR, inR[:n])
		e.L.process(outL, e.SlotA, e.SlotB, normalize)
		e.R.process(outR, e.SlotA, e.SlotB, normalize)
	} else {
		src := e.selectMonoSource(mode, inL, inR)
		copy(outL, src)
		e.L.process(outL, e.SlotA, e.SlotB, normalize)
		copy(outR, outL)
	}

	e.Reverb.ProcessStereo(outL, outR)

	e.tapRecording(outL, outR)

	e.recordLoad(start, n)
}

// recordLoad stamps how long this block took to process and how long it
// takes to play out, for LoadRatio. Runs on the audio thread but is just
// two atomic stores, no allocation or lock.
func (e *Engine) recordLoad(start time.Time, n int) {
	e.lastProcessNs.Store(uint64(time.Since(start)))
	if e.sampleRate > 0 {
		e.lastBlockNs.Store(uint64(n) * 1e9 / uint64(e.sampleRate))
	}
}

// selectMonoSource builds the single source buffer the non-Stereo2Stereo
// modes run through one channel chain, per spec §4.G's routing table.
func (e *Engine) selectMonoSource(mode StereoMode, inL, inR []float32) []float32 {
	n := len(inL)
	switch mode {
	case RightMono2Stereo:
		return inR[:n]
	case Stereo2Mono:
		mixL := e.Stereo2MonoMixL.Load()
		mixR := e.Stereo2MonoMixR.Load()
		buf := e.mixScratch[:n]
		for i := 0; i < n; i++ {
			buf[i] = inL[i]*mixL + inR[i]*mixR
		}
		return buf
	default: // LeftMono2Stereo
		return inL[:n]
	}
}

// tapRecording pushes the block to the recorder if one is active,
// mixing in the backing track first when configured to include it
// (spec §4.G "Recording tap").
func (e *Engine) tapRecording(outL, outR []float32) {
	if e.recorder == nil || !e.recorder.IsRecording() {
		return
	}

	if e.IncludeBackingInRecording.Load() && e.backingTrack != nil && e.backingTrack.IsPlaying() {
		n := len(outL)
		mixL := e.recScratchL[:n]
		mixR := e.recScratchR[:n]
		e.backingTrack.FillBuffer(mixL, mixR)
		for i := 0; i < n; i++ {
			mixL[i] += outL[i]
			mixR[i] += outR[i]
		}
		e.recorder.Push(mixL, mixR)
		return
	}

	e.recorder.Push(outL, outR)
}
