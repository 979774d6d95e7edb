// Package wav writes PCM-16 RIFF/WAVE files, grounded 1:1 on
// original_source/HoopiPi/WAVWriter.h: a placeholder header is written on
// open, then rewritten with the true sizes on Close.
package wav

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Writer writes interleaved float32 samples to disk as 16-bit PCM. It is
// not safe for concurrent use and is meant to be driven from a single
// background goroutine, never the audio thread.
type Writer struct {
	file       *os.File
	sampleRate uint32
	channels   uint16
	dataSize   uint32
}

// Create opens path and writes a placeholder WAV header, ready for
// repeated calls to Write.
func Create(path string, sampleRate int, channels int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wav: create %q: %w", path, err)
	}

	w := &Writer{
		file:       f,
		sampleRate: uint32(sampleRate),
		channels:   uint16(channels),
	}
	if err := w.writeHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

// Write appends interleaved float samples in [-1, 1], clamping and
// converting each to int16 PCM.
func (w *Writer) Write(samples []float32) error {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		pcm := int16(s * 32767.0)
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(pcm))
	}

	if _, err := w.file.Write(buf); err != nil {
		return fmt.Errorf("wav: write samples: %w", err)
	}
	w.dataSize += uint32(len(buf))
	return nil
}

// DataSize returns the number of PCM bytes written so far.
func (w *Writer) DataSize() uint32 { return w.dataSize }

// Duration returns the recorded duration in seconds, given the bytes
// written so far.
func (w *Writer) Duration() float64 {
	if w.sampleRate == 0 || w.channels == 0 {
		return 0
	}
	frames := w.dataSize / (uint32(w.channels) * 2)
	return float64(frames) / float64(w.sampleRate)
}

// Close rewrites the header with the final sizes and closes the file.
func (w *Writer) Close() error {
	if _, err := w.file.Seek(0, 0); err != nil {
		return fmt.Errorf("wav: seek to header: %w", err)
	}
	if err := w.writeHeader(); err != nil {
		return err
	}
	return w.file.Close()
}

func (w *Writer) writeHeader() error {
	const bitsPerSample = 16
	blockAlign := w.channels * (bitsPerSample / 8)
	byteRate := w.sampleRate * uint32(blockAlign)
	chunkSize := 36 + w.dataSize

	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], chunkSize)
	copy(hdr[8:12], "WAVE")

	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:24], w.channels)
	binary.LittleEndian.PutUint32(hdr[24:28], w.sampleRate)
	binary.LittleEndian.PutUint32(hdr[28:32], byteRate)
	binary.LittleEndian.PutUint16(hdr[32:34], blockAlign)
	binary.LittleEndian.PutUint16(hdr[34:36], bitsPerSample)

	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], w.dataSize)

	if _, err := w.file.Write(hdr[:]); err != nil {
		return fmt.Errorf("wav: write header: %w", err)
	}
	return nil
}
