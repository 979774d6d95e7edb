package model

import "sync/atomic"

// FadeSamples is the fixed crossfade length spec §4.C names (~5ms @48kHz),
// taken directly from original_source/HoopiPi/ModelLoader.h's
// FADE_SAMPLES constant.
const FadeSamples = 256

// FadeState is one of {Idle, FadingOut, FadingIn}. Driven exclusively by
// the RT thread from within the slot's Process call; the worker only
// requests transitions via requestFadeOut/requestFadeIn (spec §4.C, §9
// "Crossfade as a state machine, not coroutines").
type FadeState int32

const (
	FadeIdle FadeState = iota
	FadeOut
	FadeIn
)

const (
	fadeRequestNone int32 = iota
	fadeRequestOut
	fadeRequestIn
)

// fader holds the crossfade state machine for a single slot.
type fader struct {
	state     atomic.Int32 // FadeState, RT-thread-owned, read by the worker
	request   atomic.Int32 // fadeRequest*, worker-owned, consumed by RT thread

	// RT-thread-private; never read by any other goroutine.
	remaining int
	gain      float32
}

func newFader() *fader {
	f := &fader{}
	f.state.Store(int32(FadeIdle))
	f.gain = 0.0 // not-ready default per spec §4.C fade table
	return f
}

// State reports the current fade state. Safe to call from the worker.
func (f *fader) State() FadeState { return FadeState(f.state.Load()) }

// requestFadeOut is called by the worker to begin a fade-out.
func (f *fader) requestFadeOut() { f.request.Store(fadeRequestOut) }

// requestFadeIn is called by the worker to begin a fade-in.
func (f *fader) requestFadeIn() { f.request.Store(fadeRequestIn) }

// consumeRequest is called once per block from the RT thread to pick up any
// pending transition request and start it.
func (f *fader) consumeRequest() {
	switch f.request.Swap(fadeRequestNone) {
	case fadeRequestOut:
		f.state.Store(int32(FadeOut))
		f.remaining = FadeSamples
		f.gain = 1.0
	case fadeRequestIn:
		f.state.Store(int32(FadeIn))
		f.remaining = FadeSamples
		f.gain = 0.0
	}
}

// apply multiplies buf in place by the current fade envelope, advancing the
// state machine sample-by-sample. Must only be called from the RT thread.
func (f *fader) apply(buf []float32) {
	f.consumeRequest()

	state := FadeState(f.state.Load())
	if state == FadeIdle {
		return
	}

	for i := range buf {
		if f.remaining <= 0 {
			break
		}
		switch state {
		case FadeOut:
			f.gain = float32(f.remaining) / float32(FadeSamples)
		case FadeIn:
			f.gain = 1.0 - float32(f.remaining)/float32(FadeSamples)
		}
		buf[i] *= f.gain
		f.remaining--

		if f.remaining == 0 {
			if state == FadeOut {
				f.gain = 0.0
			} else {
				f.gain = 1.0
			}
			f.state.Store(int32(FadeIdle))
			break
		}
	}
}
