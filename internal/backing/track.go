package backing

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Track holds a decoded, pre-resampled backing track and its RT-safe
// playback state, grounded on
// original_source/standalone/BackingTrack.{h,cpp}.
type Track struct {
	mu         sync.Mutex
	left       []float32
	right      []float32
	totalFrames int
	channels    int
	sampleRate  int
	filename    string

	position atomic.Uint64
	playing  atomic.Bool
	looping  atomic.Bool
	volume   atomic.Uint32 // float32 bits
	start    atomic.Uint64
	stop     atomic.Uint64 // 0 == end of file
}

// New returns an empty, unloaded Track. Loop is enabled and volume is
// 0.7 by default, matching BackingTrack's constructor.
func New() *Track {
	t := &Track{}
	t.looping.Store(true)
	t.volume.Store(floatBits(0.7))
	return t
}

// Load decodes path, deinterleaves it, and resamples to targetSampleRate
// if needed. Replaces any previously loaded track. Stops playback first,
// matching BackingTrack::unload/stop, since FillBuffer reads left/right/
// totalFrames from the audio thread without a lock.
func (t *Track) Load(path string, targetSampleRate int) error {
	t.Stop()

	d, err := decodeFile(path)
	if err != nil {
		return err
	}
	if d.channels < 1 || d.channels > 2 {
		return fmt.Errorf("backing: unsupported channel count %d in %q", d.channels, path)
	}

	left, right := deinterleave(d.interleaved, d.channels)

	sampleRate := d.sampleRate
	if d.sampleRate != targetSampleRate {
		left = resampleLinear(left, d.sampleRate, targetSampleRate)
		right = resampleLinear(right, d.sampleRate, targetSampleRate)
		sampleRate = targetSampleRate
	}

	t.mu.Lock()
	t.left = left
	t.right = right
	t.totalFrames = len(left)
	t.channels = d.channels
	t.sampleRate = sampleRate
	t.filename = path
	t.mu.Unlock()

	t.position.Store(0)
	t.start.Store(0)
	t.stop.Store(0)
	return nil
}

// Unload stops playback and discards the decoded audio.
func (t *Track) Unload() {
	t.Stop()
	t.mu.Lock()
	t.left = nil
	t.right = nil
	t.totalFrames = 0
	t.channels = 0
	t.sampleRate = 0
	t.filename = ""
	t.mu.Unlock()
	t.position.Store(0)
	t.start.Store(0)
	t.stop.Store(0)
}

// IsLoaded reports whether a track is currently loaded.
func (t *Track) IsLoaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalFrames > 0
}

// Play starts playback from the configured start position.
func (t *Track) Play() {
	if !t.IsLoaded() {
		return
	}
	t.position.Store(t.start.Load())
	t.playing.Store(true)
}

// Stop halts playback and rewinds to the start position.
func (t *Track) Stop() {
	t.playing.Store(false)
	t.position.Store(t.start.Load())
}

// Pause halts playback, leaving the position where it is.
func (t *Track) Pause() { t.playing.Store(false) }

// IsPlaying reports whether playback is active.
func (t *Track) IsPlaying() bool { return t.playing.Load() }

// SetLoop enables or disables looping back to the start position at the
// end of playback.
func (t *Track) SetLoop(enabled bool) { t.looping.Store(enabled) }

// IsLooping reports whether looping is enabled.
func (t *Track) IsLooping() bool { return t.looping.Load() }

// SetVolume clamps volume to [0, 1] and stores it.
func (t *Track) SetVolume(v float32) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	t.volume.Store(floatBits(v))
}

// Volume returns the current playback volume.
func (t *Track) Volume() float32 { return floatFromBits(t.volume.Load()) }

// SetStartPosition sets the loop/play start point in seconds.
func (t *Track) SetStartPosition(seconds float32) {
	t.mu.Lock()
	sr, total := t.sampleRate, t.totalFrames
	t.mu.Unlock()
	if sr <= 0 {
		return
	}
	frame := uint64(seconds * float32(sr))
	if total > 0 && frame >= uint64(total) {
		frame = uint64(total - 1)
	}
	t.start.Store(frame)
}

// SetStopPosition sets the stop point in seconds; 0 means end of file.
func (t *Track) SetStopPosition(seconds float32) {
	t.mu.Lock()
	sr, total := t.sampleRate, t.totalFrames
	t.mu.Unlock()
	if sr <= 0 {
		return
	}
	var frame uint64
	if seconds > 0 {
		frame = uint64(seconds * float32(sr))
		if frame > uint64(total) {
			frame = uint64(total)
		}
	}
	t.stop.Store(frame)
}

// StartPosition returns the configured start position in seconds.
func (t *Track) StartPosition() float32 {
	t.mu.Lock()
	sr := t.sampleRate
	t.mu.Unlock()
	if sr <= 0 {
		return 0
	}
	return float32(t.start.Load()) / float32(sr)
}

// StopPosition returns the configured stop position in seconds, or the
// track's duration if stop is unset (end of file).
func (t *Track) StopPosition() float32 {
	stop := t.stop.Load()
	if stop == 0 {
		return t.Duration()
	}
	t.mu.Lock()
	sr := t.sampleRate
	t.mu.Unlock()
	if sr <= 0 {
		return 0
	}
	return float32(stop) / float32(sr)
}

// Filename returns the path of the currently loaded track, or "".
func (t *Track) Filename() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filename
}

// TotalFrames returns the decoded frame count.
func (t *Track) TotalFrames() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalFrames
}

// CurrentFrame returns the current playback position in frames.
func (t *Track) CurrentFrame() uint64 { return t.position.Load() }

// Duration returns the track's length in seconds.
func (t *Track) Duration() float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sampleRate == 0 {
		return 0
	}
	return float32(t.totalFrames) / float32(t.sampleRate)
}

// Channels returns the source file's channel count (1 or 2).
func (t *Track) Channels() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.channels
}

// SampleRate returns the track's (possibly resampled) sample rate.
func (t *Track) SampleRate() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sampleRate
}

// FillBuffer writes len(outL) frames of non-interleaved left/right samples
// into outL and outR.
// RT-safe: no allocation, no I/O, no locking over the decoded buffers.
// Load and Unload both call Stop first, so by the time either replaces
// left/right/totalFrames, playing is false and this loop has already
// taken its early zero-fill exit instead of touching those fields.
// Matches BackingTrack::fillBuffer exactly, including the "play through
// to stopFrame or loop" behavior.
func (t *Track) FillBuffer(outL, outR []float32) {
	n := len(outL)
	total := t.totalFrames

	if !t.playing.Load() || total == 0 {
		for i := 0; i < n; i++ {
			outL[i] = 0
			outR[i] = 0
		}
		return
	}

	vol := t.Volume()
	loop := t.looping.Load()
	start := t.start.Load()
	stopFrame := t.stop.Load()
	endFrame := uint64(total)
	if stopFrame > 0 && stopFrame < uint64(total) {
		endFrame = stopFrame
	}
	pos := t.position.Load()

	for i := 0; i < n; i++ {
		if pos >= endFrame {
			if loop {
				pos = start
			} else {
				t.playing.Store(false)
				for j := i; j < n; j++ {
					outL[j] = 0
					outR[j] = 0
				}
				t.position.Store(start)
				return
			}
		}
		outL[i] = t.left[pos] * vol
		outR[i] = t.right[pos] * vol
		pos++
	}

	t.position.Store(pos)
}
