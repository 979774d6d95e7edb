package dsp

import "testing"

func TestThreeBandEQFlatIsUnity(t *testing.T) {
	eq := NewThreeBandEQ(48000)
	buf := make([]float32, 512)
	for i := range buf {
		buf[i] = 0.3
	}
	want := append([]float32{}, buf...)
	eq.Process(buf)
	for i := range buf {
		if diff := abs32(buf[i] - want[i]); diff > 1e-4 {
			t.Fatalf("flat EQ altered sample %d: got %v want %v", i, buf[i], want[i])
		}
	}
}

func TestThreeBandEQClampsGain(t *testing.T) {
	eq := NewThreeBandEQ(48000)
	eq.SetBassDB(100)
	if got := eq.BassDB(); got != eqGainMaxDB {
		t.Fatalf("BassDB() = %v, want clamp to %v", got, eqGainMaxDB)
	}
	eq.SetBassDB(-100)
	if got := eq.BassDB(); got != eqGainMinDB {
		t.Fatalf("BassDB() = %v, want clamp to %v", got, eqGainMinDB)
	}
}

func TestThreeBandEQConvergesToTarget(t *testing.T) {
	eq := NewThreeBandEQ(48000)
	eq.SetMidDB(6)
	buf := make([]float32, 20000)
	buf[0] = 1
	for i := range buf {
		if i > 0 {
			buf[i] = 0.2
		}
	}
	eq.Process(buf)
	if eq.mid.recomputing {
		t.Fatal("expected mid band to converge within 20000 samples")
	}
}

func TestThreeBandEQDisabled(t *testing.T) {
	eq := NewThreeBandEQ(48000)
	eq.Enabled.Store(false)
	eq.SetBassDB(12)
	buf := []float32{0.1, 0.2, 0.3}
	want := append([]float32{}, buf...)
	eq.Process(buf)
	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("disabled EQ modified sample %d", i)
		}
	}
}
