package recorder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(t *testing.T) (*Recorder, string) {
	dir := t.TempDir()
	r, err := New(dir, zerolog.Nop(), 512)
	require.NoError(t, err)
	return r, dir
}

func TestStartStopProducesWavFile(t *testing.T) {
	r, _ := newTestRecorder(t)

	path, err := r.Start("", 48000)
	require.NoError(t, err)
	require.True(t, r.IsRecording())

	left := make([]float32, 256)
	right := make([]float32, 256)
	for i := range left {
		left[i] = 0.1
		right[i] = -0.1
	}
	for i := 0; i < 10; i++ {
		r.Push(left, right)
	}

	r.Stop()
	require.False(t, r.IsRecording())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(44))
}

func TestStartTwiceFails(t *testing.T) {
	r, _ := newTestRecorder(t)
	_, err := r.Start("", 48000)
	require.NoError(t, err)
	defer r.Stop()

	_, err = r.Start("", 48000)
	require.Error(t, err)
}

func TestStopWithoutStartIsNoOp(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.Stop() // must not block or panic
}

func TestFilenameGetsWavExtension(t *testing.T) {
	r, dir := newTestRecorder(t)
	path, err := r.Start("take1", 48000)
	require.NoError(t, err)
	r.Stop()

	require.Equal(t, filepath.Join(dir, "take1.wav"), path)
}

func TestPushWhileNotRecordingIsIgnored(t *testing.T) {
	r, _ := newTestRecorder(t)
	// Should not panic even though no recording session exists.
	r.Push([]float32{0.1}, []float32{0.1})
}

func TestDurationAdvances(t *testing.T) {
	r, _ := newTestRecorder(t)
	_, err := r.Start("", 48000)
	require.NoError(t, err)
	defer r.Stop()

	time.Sleep(5 * time.Millisecond)
	require.Greater(t, r.Duration(), time.Duration(0))
}

func TestPushGrowsScratchForLargerBlocks(t *testing.T) {
	r, _ := newTestRecorder(t)
	_, err := r.Start("", 48000)
	require.NoError(t, err)
	defer r.Stop()

	big := make([]float32, 4096)
	r.Push(big, big) // larger than the 512-frame scratch sized at construction
}
