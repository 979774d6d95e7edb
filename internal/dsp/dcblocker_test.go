package dsp

import (
	"math"
	"testing"
)

func TestDCBlockerRemovesDC(t *testing.T) {
	d := NewDCBlocker(48000)
	// With R = 1 - 2π·10/48000 the step response decays as 0.5·R^n, which
	// drops below 1e-3 after roughly 4750 samples.
	buf := make([]float32, 10000)
	for i := range buf {
		buf[i] = 0.5
	}
	d.Process(buf)

	if got := math.Abs(float64(buf[len(buf)-1])); got > 1e-3 {
		t.Fatalf("DC not removed: |output| = %v, want < 1e-3", got)
	}
}

func TestDCBlockerPassesAC(t *testing.T) {
	d := NewDCBlocker(48000)
	// A fast-varying AC signal should survive roughly intact after settling.
	buf := []float32{0, 1, 0, -1, 0, 1, 0, -1}
	d.Process(buf)
	if buf[1] == 0 {
		t.Fatal("expected AC signal to pass through non-zero")
	}
}

func TestDCBlockerDisabled(t *testing.T) {
	d := NewDCBlocker(48000)
	d.Enabled.Store(false)
	buf := []float32{0.5, 0.5, 0.5}
	want := append([]float32{}, buf...)
	d.Process(buf)
	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("disabled DCBlocker modified sample %d", i)
		}
	}
}

func TestDCBlockerReset(t *testing.T) {
	d := NewDCBlocker(48000)
	d.Process([]float32{1, 1, 1})
	d.Reset()
	if d.x1 != 0 || d.y1 != 0 {
		t.Fatalf("Reset did not clear state: x1=%v y1=%v", d.x1, d.y1)
	}
}
