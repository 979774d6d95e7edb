// Package ring implements the lock-free single-producer/single-consumer
// float ring buffer used to hand samples from the audio callback to the
// recorder goroutine (spec §4.D), grounded on
// pkg/dsp/buffer/writeahead.go's atomic power-of-2 circular buffer and
// original_source/HoopiPi/AudioRecorder.h's "leave one slot empty"
// capacity convention.
package ring

import "sync/atomic"

// SPSC is a fixed-capacity ring buffer safe for exactly one writer
// goroutine (the audio callback) and one reader goroutine (the recorder's
// flush loop) calling concurrently. One slot is always left empty so that
// writePos == readPos unambiguously means "empty", per spec §4.D.
type SPSC struct {
	data     []float32
	mask     uint32
	readPos  atomic.Uint64
	writePos atomic.Uint64

	dropped atomic.Uint64
}

// New returns an SPSC ring sized to the next power of two at least
// capacity+1 samples, so it can hold capacity samples without ambiguity.
// The ring accepts up to size-1 samples, which may exceed capacity.
func New(capacity int) *SPSC {
	size := nextPowerOf2(uint32(capacity + 1))
	return &SPSC{
		data: make([]float32, size),
		mask: size - 1,
	}
}

// Write appends samples to the ring. If there isn't enough free space for
// all of them, it writes as many as fit and counts the rest as dropped
// (the audio thread must never block on a full ring).
func (r *SPSC) Write(samples []float32) {
	if len(samples) == 0 {
		return
	}

	readPos := r.readPos.Load()
	writePos := r.writePos.Load()

	free := r.size() - uint32(writePos-readPos) - 1
	n := len(samples)
	if uint32(n) > free {
		r.dropped.Add(uint64(n) - uint64(free))
		n = int(free)
	}
	if n <= 0 {
		return
	}

	remaining := n
	srcOffset := 0
	for remaining > 0 {
		dstIdx := uint32(writePos) & r.mask
		chunk := remaining
		if dstIdx+uint32(chunk) > r.size() {
			chunk = int(r.size() - dstIdx)
		}
		copy(r.data[dstIdx:dstIdx+uint32(chunk)], samples[srcOffset:srcOffset+chunk])
		srcOffset += chunk
		remaining -= chunk
		writePos += uint64(chunk)
	}

	r.writePos.Store(writePos)
}

// Read drains up to len(out) samples into out, returning how many were
// read.
func (r *SPSC) Read(out []float32) int {
	if len(out) == 0 {
		return 0
	}

	readPos := r.readPos.Load()
	writePos := r.writePos.Load()

	available := uint32(writePos - readPos)
	n := len(out)
	if uint32(n) > available {
		n = int(available)
	}
	if n <= 0 {
		return 0
	}

	remaining := n
	dstOffset := 0
	for remaining > 0 {
		srcIdx := uint32(readPos) & r.mask
		chunk := remaining
		if srcIdx+uint32(chunk) > r.size() {
			chunk = int(r.size() - srcIdx)
		}
		copy(out[dstOffset:dstOffset+chunk], r.data[srcIdx:srcIdx+uint32(chunk)])
		dstOffset += chunk
		remaining -= chunk
		readPos += uint64(chunk)
	}

	r.readPos.Store(readPos)
	return n
}

// Dropped returns the cumulative count of samples discarded because the
// ring was full at write time.
func (r *SPSC) Dropped() uint64 { return r.dropped.Load() }

// Len reports how many samples are currently buffered.
func (r *SPSC) Len() int {
	return int(uint32(r.writePos.Load() - r.readPos.Load()))
}

func (r *SPSC) size() uint32 { return uint32(len(r.data)) }

func nextPowerOf2(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}
