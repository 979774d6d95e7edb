package dsp

import "testing"

func TestNoiseGateClosesOnQuietSignal(t *testing.T) {
	g := NewNoiseGate(48000)
	g.ThreshDB.Store(-20) // roughly -40dB input should close the gate

	buf := make([]float32, 48000) // 1 second, long enough for attack/release to settle
	for i := range buf {
		buf[i] = 0.01 // approx -40dB
	}
	g.Process(buf)

	for i := len(buf) - 100; i < len(buf); i++ {
		if buf[i] != 0 {
			t.Fatalf("expected gate closed by end of buffer, got %v at %d", buf[i], i)
		}
	}
}

func TestNoiseGateOpensOnLoudSignal(t *testing.T) {
	g := NewNoiseGate(48000)
	g.ThreshDB.Store(-40)

	buf := make([]float32, 4800)
	for i := range buf {
		buf[i] = 0.5 // about -6dB, above threshold
	}
	g.Process(buf)

	if buf[len(buf)-1] == 0 {
		t.Fatal("expected gate open on loud signal")
	}
}

func TestNoiseGateDisabledPassesThrough(t *testing.T) {
	g := NewNoiseGate(48000)
	g.Enabled.Store(false)
	g.ThreshDB.Store(0) // would otherwise close everything

	buf := []float32{0.1, 0.1, 0.1}
	want := append([]float32{}, buf...)
	g.Process(buf)

	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("disabled gate modified sample %d: got %v want %v", i, buf[i], want[i])
		}
	}
}

func TestNoiseGateReset(t *testing.T) {
	g := NewNoiseGate(48000)
	g.Process([]float32{1, 1, 1, 1})
	g.Reset()
	if g.envelope != 0 || g.gain != 1.0 {
		t.Fatalf("Reset did not clear state: envelope=%v gain=%v", g.envelope, g.gain)
	}
}
