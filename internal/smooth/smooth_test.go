package smooth

import "testing"

func TestGainConverges(t *testing.T) {
	g := NewGain(0)
	var last float32
	for i := 0; i < 20000; i++ {
		last = g.Next(1.0)
	}
	if diff := 1.0 - last; diff > 1e-3 {
		t.Fatalf("gain did not converge: got %v, want ~1.0", last)
	}
}

func TestGainNoDiscontinuityBeyondCoefficient(t *testing.T) {
	g := NewGain(1.0)
	first := g.Next(0.0)
	// After one sample the smoother can move at most (1-Coefficient) of the
	// full jump: see spec §4.G "smoothed := 0.999*smoothed + 0.001*target".
	maxStep := float32(1 - Coefficient)
	if delta := 1.0 - first; delta > maxStep+1e-6 {
		t.Fatalf("first-sample delta %v exceeds max step %v", delta, maxStep)
	}
}

func TestGainReset(t *testing.T) {
	g := NewGain(0)
	g.Reset(5)
	if g.Value() != 5 {
		t.Fatalf("Value() = %v, want 5", g.Value())
	}
}
