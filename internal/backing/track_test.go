package backing

import "testing"

// loadSynthetic installs decoded audio directly, bypassing decodeFile, so
// playback-state-machine behavior can be tested without real media files.
func loadSynthetic(t *Track, left, right []float32, sampleRate int) {
	t.mu.Lock()
	t.left = left
	t.right = right
	t.totalFrames = len(left)
	t.channels = 2
	t.sampleRate = sampleRate
	t.filename = "synthetic"
	t.mu.Unlock()
	t.position.Store(0)
	t.start.Store(0)
	t.stop.Store(0)
}

func rampTrack(n int) (*Track, []float32) {
	tr := New()
	left := make([]float32, n)
	right := make([]float32, n)
	for i := range left {
		left[i] = float32(i + 1)
		right[i] = -float32(i + 1)
	}
	loadSynthetic(tr, left, right, 1000)
	return tr, left
}

func TestFillBufferSilentWhenNotLoaded(t *testing.T) {
	tr := New()
	outL := make([]float32, 8)
	outR := make([]float32, 8)
	tr.Play()
	tr.FillBuffer(outL, outR)
	for i := range outL {
		if outL[i] != 0 || outR[i] != 0 {
			t.Fatalf("expected silence at %d, got L=%v R=%v", i, outL[i], outR[i])
		}
	}
}

func TestPlayAdvancesPosition(t *testing.T) {
	tr, left := rampTrack(10)
	tr.Play()

	out := make([]float32, 5)
	outR := make([]float32, 5)
	tr.FillBuffer(out, outR)

	for i := 0; i < 5; i++ {
		want := left[i] * tr.Volume()
		if out[i] != want {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want)
		}
	}
	if tr.CurrentFrame() != 5 {
		t.Fatalf("CurrentFrame() = %d, want 5", tr.CurrentFrame())
	}
}

func TestLoopRestartsAtStart(t *testing.T) {
	tr, _ := rampTrack(4)
	tr.SetLoop(true)
	tr.Play()

	out := make([]float32, 6)
	outR := make([]float32, 6)
	tr.FillBuffer(out, outR)

	if !tr.IsPlaying() {
		t.Fatal("expected playback to continue through loop boundary")
	}
	if tr.CurrentFrame() != 2 {
		t.Fatalf("CurrentFrame() = %d, want 2 after looping", tr.CurrentFrame())
	}
}

func TestNoLoopStopsAtEnd(t *testing.T) {
	tr, _ := rampTrack(4)
	tr.SetLoop(false)
	tr.Play()

	out := make([]float32, 6)
	outR := make([]float32, 6)
	tr.FillBuffer(out, outR)

	if tr.IsPlaying() {
		t.Fatal("expected playback to stop at end of file")
	}
	for i := 4; i < 6; i++ {
		if out[i] != 0 || outR[i] != 0 {
			t.Fatalf("expected silence past end at %d", i)
		}
	}
}

func TestSetStartStopPositionsClamp(t *testing.T) {
	tr, _ := rampTrack(1000) // sampleRate=1000, so 1 frame == 1ms
	tr.SetStartPosition(0.5)
	if tr.StartPosition() != 0.5 {
		t.Fatalf("StartPosition() = %v, want 0.5", tr.StartPosition())
	}

	tr.SetStartPosition(10.0) // beyond end, should clamp
	if tr.StartPosition() >= 1.0 {
		t.Fatalf("StartPosition() = %v, expected clamp below 1.0", tr.StartPosition())
	}
}

func TestVolumeClamps(t *testing.T) {
	tr := New()
	tr.SetVolume(2.0)
	if tr.Volume() != 1.0 {
		t.Fatalf("Volume() = %v, want 1.0", tr.Volume())
	}
	tr.SetVolume(-1.0)
	if tr.Volume() != 0.0 {
		t.Fatalf("Volume() = %v, want 0.0", tr.Volume())
	}
}

func TestUnloadClearsState(t *testing.T) {
	tr, _ := rampTrack(10)
	tr.Play()
	tr.Unload()

	if tr.IsLoaded() {
		t.Fatal("expected IsLoaded false after Unload")
	}
	if tr.IsPlaying() {
		t.Fatal("expected IsPlaying false after Unload")
	}
}
