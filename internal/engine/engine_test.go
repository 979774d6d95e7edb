package engine

import (
	"errors"
	"testing"

	"github.com/hoopipi/hoopipi/internal/model"
)

type passthroughModel struct{}

func (passthroughModel) Process(in, out []float32)    { copy(out, in) }
func (passthroughModel) RecommendedOutputDB() float32 { return 0 }
func (passthroughModel) SampleRate() int              { return 48000 }
func (passthroughModel) SetMaxBlockSize(n int)         {}
func (passthroughModel) Close()                        {}

func passthroughFactory(path string) (model.Model, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}
	return passthroughModel{}, nil
}

func newTestEngine(t *testing.T) *Engine {
	e := New(48000, 512, passthroughFactory)
	t.Cleanup(e.Close)
	return e
}

func TestBypassCopiesInputToOutput(t *testing.T) {
	e := newTestEngine(t)
	e.Bypass.Store(true)

	inL := []float32{0.1, 0.2, 0.3}
	inR := []float32{-0.1, -0.2, -0.3}
	outL := make([]float32, 3)
	outR := make([]float32, 3)

	e.ProcessStereo(inL, inR, outL, outR)
	for i := range inL {
		if outL[i] != inL[i] || outR[i] != inR[i] {
			t.Fatalf("bypass altered sample %d", i)
		}
	}
}

func TestXrunOnOversizedBlockPassesThrough(t *testing.T) {
	e := newTestEngine(t)

	n := e.MaxBlockSize() + 1
	inL := make([]float32, n)
	inR := make([]float32, n)
	for i := range inL {
		inL[i] = float32(i)
	}
	outL := make([]float32, n)
	outR := make([]float32, n)

	e.ProcessStereo(inL, inR, outL, outR)

	if e.XrunCount() != 1 {
		t.Fatalf("XrunCount() = %d, want 1", e.XrunCount())
	}
	for i := range inL {
		if outL[i] != inL[i] {
			t.Fatalf("xrun passthrough altered sample %d", i)
		}
	}
}

func TestLeftMono2StereoMirrorsLeftChannel(t *testing.T) {
	e := newTestEngine(t)
	e.SetStereoMode(LeftMono2Stereo)

	inL := make([]float32, 64)
	inR := make([]float32, 64)
	for i := range inL {
		inL[i] = 0.5
		inR[i] = -0.9 // should be ignored entirely
	}
	outL := make([]float32, 64)
	outR := make([]float32, 64)

	e.ProcessStereo(inL, inR, outL, outR)

	for i := range outL {
		if outL[i] != outR[i] {
			t.Fatalf("sample %d: L=%v R=%v, expected mirrored output", i, outL[i], outR[i])
		}
	}
}

func TestStereo2StereoRightChannelSkipsModelByDefault(t *testing.T) {
	e := newTestEngine(t)
	e.SetStereoMode(Stereo2Stereo)

	if e.R.BypassModel.Load() != true {
		t.Fatal("expected right channel bypassModel to default true (spec open question c)")
	}
	if e.L.BypassModel.Load() != false {
		t.Fatal("expected left channel bypassModel to default false")
	}
}

func TestStereo2MonoMixesBothInputs(t *testing.T) {
	e := newTestEngine(t)
	e.SetStereoMode(Stereo2Mono)
	e.Stereo2MonoMixL.Store(1.0)
	e.Stereo2MonoMixR.Store(0.0)

	inL := make([]float32, 32)
	inR := make([]float32, 32)
	for i := range inL {
		inL[i] = 0.4
		inR[i] = 0.9
	}
	outL := make([]float32, 32)
	outR := make([]float32, 32)

	e.ProcessStereo(inL, inR, outL, outR)

	// With mixL=1, mixR=0, the source should equal inL, not inR — checked
	// indirectly via zero gain/gate/eq/dc settings leaving amplitude
	// close to the 0.4 input rather than the 0.9 one.
	if outL[len(outL)-1] > 0.6 {
		t.Fatalf("expected mono mix dominated by left input, got %v", outL[len(outL)-1])
	}
}

func TestDCBlockerEnabledIsSharedAcrossChannels(t *testing.T) {
	e := newTestEngine(t)
	e.SetDCBlockerEnabled(false)
	if e.L.DC.Enabled.Load() || e.R.DC.Enabled.Load() {
		t.Fatal("expected both channels to observe the shared DC-blocker enable flag")
	}
	e.SetDCBlockerEnabled(true)
	if !e.L.DC.Enabled.Load() || !e.R.DC.Enabled.Load() {
		t.Fatal("expected both channels to observe the shared DC-blocker enable flag")
	}
}
