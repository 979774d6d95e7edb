package model

import (
	"errors"
	"testing"
	"time"
)

// passthroughModel is the test double spec §1 licenses in place of a real
// neural-inference backend.
type passthroughModel struct {
	recommendedDB float32
	closed        bool
}

func (p *passthroughModel) Process(in, out []float32)     { copy(out, in) }
func (p *passthroughModel) RecommendedOutputDB() float32  { return p.recommendedDB }
func (p *passthroughModel) SampleRate() int               { return 48000 }
func (p *passthroughModel) SetMaxBlockSize(n int)          {}
func (p *passthroughModel) Close()                         { p.closed = true }

func passthroughFactory(path string) (Model, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}
	return &passthroughModel{}, nil
}

func TestSlotNotReadyPassesThrough(t *testing.T) {
	s := NewSlot()
	in := []float32{1, 2, 3}
	out := make([]float32, 3)
	s.Process(in, out, true)
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("not-ready slot altered sample %d: got %v want %v", i, out[i], in[i])
		}
	}
}

func TestLoaderLoadsAndReady(t *testing.T) {
	s := NewSlot()
	l := NewLoader(s, passthroughFactory, 512)
	defer l.Close()

	l.LoadAsync("amp.model")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && !s.IsReady() {
		time.Sleep(time.Millisecond)
	}

	if !s.IsReady() {
		t.Fatal("slot never became ready")
	}
	if s.Path() != "amp.model" {
		t.Fatalf("Path() = %q, want amp.model", s.Path())
	}
}

func TestLoaderFailureLeavesNotReady(t *testing.T) {
	s := NewSlot()
	l := NewLoader(s, passthroughFactory, 512)
	defer l.Close()

	l.LoadAsync("")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && l.LastError() == "" {
		time.Sleep(time.Millisecond)
	}

	if s.IsReady() {
		t.Fatal("slot became ready despite load failure")
	}
	if s.Path() != "" {
		t.Fatalf("Path() = %q, want empty", s.Path())
	}
	if l.LastError() == "" {
		t.Fatal("expected LastError to be set")
	}
}

func TestUnloadClearsReady(t *testing.T) {
	s := NewSlot()
	l := NewLoader(s, passthroughFactory, 512)
	defer l.Close()

	l.LoadAsync("amp.model")
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && !s.IsReady() {
		time.Sleep(time.Millisecond)
	}

	l.Unload()

	if s.IsReady() {
		t.Fatal("expected not-ready after Unload")
	}
	if s.Path() != "" {
		t.Fatalf("Path() = %q, want empty after Unload", s.Path())
	}
}

func TestFadeOutThenInOnSwap(t *testing.T) {
	s := NewSlot()
	l := NewLoader(s, passthroughFactory, 512)
	defer l.Close()

	l.LoadAsync("one.model")
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && !s.IsReady() {
		time.Sleep(time.Millisecond)
	}

	// Drive the RT-thread fade machinery to idle from the initial fade-in.
	buf := make([]float32, FadeSamples+16)
	out := make([]float32, len(buf))
	for i := range buf {
		buf[i] = 1.0
	}
	s.Process(buf, out, false)
	if s.FadeState() != FadeIdle {
		t.Fatalf("expected fade idle after %d samples, got %v", len(buf), s.FadeState())
	}

	l.LoadAsync("two.model")
	// Give the worker a moment to request the fade-out.
	time.Sleep(5 * time.Millisecond)

	buf2 := make([]float32, FadeSamples)
	out2 := make([]float32, len(buf2))
	for i := range buf2 {
		buf2[i] = 1.0
	}
	s.Process(buf2, out2, false)

	maxStep := float32(1.0) / float32(FadeSamples)
	for i := 1; i < len(out2); i++ {
		delta := out2[i-1] - out2[i]
		if delta < 0 {
			delta = -delta
		}
		if delta > maxStep+1e-3 {
			t.Fatalf("discontinuity at sample %d: delta=%v exceeds max step %v", i, delta, maxStep)
		}
	}
}
