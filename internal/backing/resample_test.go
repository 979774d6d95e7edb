package backing

import "testing"

func TestResampleLinearSameRateCopies(t *testing.T) {
	in := []float32{1, 2, 3, 4}
	out := resampleLinear(in, 48000, 48000)
	if len(out) != len(in) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("sample %d: got %v want %v", i, out[i], in[i])
		}
	}
}

func TestResampleLinearUpsampleDoublesLength(t *testing.T) {
	in := make([]float32, 100)
	for i := range in {
		in[i] = float32(i)
	}
	out := resampleLinear(in, 24000, 48000)
	if len(out) != 200 {
		t.Fatalf("len(out) = %d, want 200", len(out))
	}
}

func TestResampleLinearEmptyInput(t *testing.T) {
	if out := resampleLinear(nil, 44100, 48000); out != nil {
		t.Fatalf("expected nil for empty input, got %v", out)
	}
}

func TestResampleLinearInterpolatesBetweenSamples(t *testing.T) {
	in := []float32{0, 10}
	out := resampleLinear(in, 1, 2)
	if len(out) != 4 {
		t.Fatalf("len(out) = %d, want 4", len(out))
	}
	if out[0] != 0 {
		t.Fatalf("out[0] = %v, want 0", out[0])
	}
	if out[1] != 5 {
		t.Fatalf("out[1] = %v, want 5 (halfway between 0 and 10)", out[1])
	}
}
