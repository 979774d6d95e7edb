// Package recorder implements the lock-free tap that lets the audio
// thread push processed output to a background WAV writer goroutine,
// grounded on original_source/HoopiPi/AudioRecorder.h.
package recorder

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoopipi/hoopipi/internal/ring"
	"github.com/hoopipi/hoopipi/internal/wav"
)

// batchSize matches original_source's BATCH_SIZE: 32768 interleaved
// stereo samples, 16384 frames, roughly 341ms @ 48kHz per flush.
const batchSize = 32768

// ringCapacity holds 10 seconds of stereo audio @ 48kHz, per
// original_source's RING_BUFFER_SIZE.
const ringCapacity = 960000

// Recorder owns the ring buffer and background writer goroutine for one
// recording session at a time.
type Recorder struct {
	dir string
	log zerolog.Logger

	// recBuf is swapped atomically so Push (called from the audio thread)
	// never contends with Start/Stop's mutex-guarded bookkeeping (spec §5).
	recBuf atomic.Pointer[ring.SPSC]

	mu       sync.Mutex
	path     string
	sampleRt int
	startAt  time.Time
	stop     chan struct{}
	done     chan struct{}

	// interleaveScratch is written only by Push, which the engine calls
	// only from the audio thread — no lock needed here, matching the
	// "allocate once, never on the hot path" rule the engine's own
	// scratch buffers follow.
	interleaveScratch []float32

	recording atomic.Bool
}

// New returns a Recorder that writes files under dir, creating it if
// necessary. maxBlockSize sizes the interleave scratch buffer Push writes
// into, so the audio thread never allocates while pushing samples.
func New(dir string, log zerolog.Logger, maxBlockSize int) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("recorder: create recordings dir: %w", err)
	}
	return &Recorder{
		dir:               dir,
		log:               log,
		interleaveScratch: make([]float32, 2*maxBlockSize),
	}, nil
}

// IsRecording reports whether a recording session is active.
func (r *Recorder) IsRecording() bool { return r.recording.Load() }

// CurrentPath returns the active recording's path, or "" if idle.
func (r *Recorder) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Duration reports how long the current recording has been running.
func (r *Recorder) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording.Load() {
		return 0
	}
	return time.Since(r.startAt)
}

// Start begins a new recording. filename may be empty, in which case a
// timestamped name is generated.
func (r *Recorder) Start(filename string, sampleRate int) (string, error) {
	if r.recording.Load() {
		return "", fmt.Errorf("recorder: already recording")
	}

	if filename == "" {
		filename = fmt.Sprintf("recording-%s.wav", time.Now().Format("2006-01-02-150405"))
	} else if filepath.Ext(filename) != ".wav" {
		filename += ".wav"
	}
	path := filepath.Join(r.dir, filename)

	buf := ring.New(ringCapacity)
	r.recBuf.Store(buf)

	r.mu.Lock()
	r.path = path
	r.sampleRt = sampleRate
	r.startAt = time.Now()
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	stop, done := r.stop, r.done
	r.mu.Unlock()

	r.recording.Store(true)
	go r.writerLoop(path, sampleRate, buf, stop, done)

	return path, nil
}

// Stop ends the active recording, flushing and finalizing the WAV file.
// Blocks until the writer goroutine has closed the file.
func (r *Recorder) Stop() {
	if !r.recording.Load() {
		return
	}
	r.recording.Store(false)

	r.mu.Lock()
	stop, done := r.stop, r.done
	r.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	if done != nil {
		<-done
	}

	r.recBuf.Store(nil)

	r.mu.Lock()
	r.path = ""
	r.mu.Unlock()
}

// Push feeds interleaved stereo samples into the ring buffer. Lock-free
// and safe to call from the audio thread; a no-op while not recording.
func (r *Recorder) Push(left, right []float32) {
	if !r.recording.Load() {
		return
	}
	buf := r.recBuf.Load()
	if buf == nil {
		return
	}

	n := len(left)
	if 2*n > len(r.interleaveScratch) {
		r.interleaveScratch = make([]float32, 2*n)
	}
	interleaved := r.interleaveScratch[:2*n]
	for i := 0; i < n; i++ {
		interleaved[2*i] = left[i]
		interleaved[2*i+1] = right[i]
	}
	buf.Write(interleaved)
}

func (r *Recorder) writerLoop(path string, sampleRate int, buf *ring.SPSC, stop, done chan struct{}) {
	defer close(done)

	w, err := wav.Create(path, sampleRate, 2)
	if err != nil {
		r.log.Error().Err(err).Str("path", path).Msg("failed to open recording file")
		r.recording.Store(false)
		return
	}

	r.log.Info().Str("path", path).Msg("recording started")

	batch := make([]float32, batchSize)
	for {
		select {
		case <-stop:
			r.flush(w, buf, batch)
			r.finish(w, buf.Dropped())
			return
		default:
		}

		n := buf.Read(batch)
		if n == 0 {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if err := w.Write(batch[:n]); err != nil {
			r.log.Error().Err(err).Msg("recording write failed")
		}
	}
}

func (r *Recorder) flush(w *wav.Writer, buf *ring.SPSC, batch []float32) {
	for {
		n := buf.Read(batch)
		if n == 0 {
			return
		}
		if err := w.Write(batch[:n]); err != nil {
			r.log.Error().Err(err).Msg("recording flush write failed")
		}
	}
}

func (r *Recorder) finish(w *wav.Writer, dropped uint64) {
	duration := w.Duration()
	size := w.DataSize()
	if err := w.Close(); err != nil {
		r.log.Error().Err(err).Msg("failed to finalize recording")
		return
	}

	if dropped > 0 {
		r.log.Warn().Float64("duration_sec", duration).Uint32("bytes", size).Uint64("dropped_samples", dropped).Msg("recording stopped")
		return
	}
	r.log.Info().Float64("duration_sec", duration).Uint32("bytes", size).Msg("recording stopped")
}
