package model

import (
	"math"
	"sync/atomic"

	gainconv "github.com/hoopipi/hoopipi/pkg/dsp/gain"
)

// installedModel boxes a Model with its path so Slot can swap both at once
// behind a single atomic pointer — Process only ever does an atomic load,
// never a lock, since it runs on the audio thread (spec §5, §9's suggested
// reference-counted/atomic-swap alternative to a mutex).
type installedModel struct {
	model Model
	path  string
}

// Slot owns a single installed Model instance, per spec §3/§4.B. The audio
// thread only invokes the model when ready is true; installation replaces
// the model only while ready is false (enforced by Loader, not by Slot
// itself — Slot just exposes the mechanism).
type Slot struct {
	ready atomic.Bool

	installed atomic.Pointer[installedModel]

	normGainBits atomic.Uint32 // float32 bits, normalization gain, default 1.0

	fade *fader
}

// NewSlot returns an empty, not-ready Slot.
func NewSlot() *Slot {
	s := &Slot{fade: newFader()}
	s.installed.Store(&installedModel{})
	s.normGainBits.Store(math.Float32bits(1.0))
	return s
}

// IsReady reports whether the slot has an installed, usable model.
func (s *Slot) IsReady() bool { return s.ready.Load() }

// Path returns the currently installed model's path, or "" if none.
func (s *Slot) Path() string {
	return s.installed.Load().path
}

// FadeState exposes the current crossfade state, mainly for tests and
// status reporting.
func (s *Slot) FadeState() FadeState { return s.fade.State() }

// Process implements the slot contract from spec §4.B: if not ready, copy
// input to output; otherwise run the model, optionally apply the
// normalization gain, then apply any active fade envelope. Must be called
// only from the audio thread.
func (s *Slot) Process(in, out []float32, normalize bool) {
	if !s.ready.Load() {
		copy(out, in)
		return
	}

	m := s.installed.Load().model
	if m == nil {
		copy(out, in)
		return
	}
	m.Process(in, out)

	if normalize {
		gain := math.Float32frombits(s.normGainBits.Load())
		if gain != 1.0 {
			for i := range out {
				out[i] *= gain
			}
		}
	}

	s.fade.apply(out)
}

// install swaps in a new model, closing any previously-installed one.
// Called only by Loader's worker, only while ready is false.
func (s *Slot) install(path string, m Model, normGain float32) {
	old := s.installed.Swap(&installedModel{model: m, path: path})

	s.normGainBits.Store(math.Float32bits(normGain))

	if old != nil && old.model != nil {
		old.model.Close()
	}
}

// clear removes the installed model (if any) and resets the path. Called
// only by Loader, only while ready is false.
func (s *Slot) clear() {
	old := s.installed.Swap(&installedModel{})

	if old != nil && old.model != nil {
		old.model.Close()
	}
}

// normalizationGainFromDB computes 10^((-6+loudness)/20), spec §4.B's
// formula, matching original_source/HoopiPi/ModelLoader.cpp exactly (based
// on NeuralRack's normalization convention).
func normalizationGainFromDB(loudnessDB float32) float32 {
	return gainconv.DbToLinear32(-6 + loudnessDB)
}
