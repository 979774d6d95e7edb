// Package backing implements backing-track loading and RT-safe playback
// (spec §4.F), grounded on
// original_source/standalone/BackingTrack.{h,cpp}.
package backing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// decoded holds one fully-decoded file's interleaved samples before
// deinterleaving and resampling.
type decoded struct {
	interleaved []float32
	channels    int
	sampleRate  int
}

// decodeFile dispatches on file extension per spec §11.3: .wav via
// go-audio/wav, .mp3 via go-mp3, .flac via mewkiz/flac, .ogg via
// jfreymuth/oggvorbis. Anything else is an error (original_source falls
// back to libsndfile for arbitrary formats; this module has no such
// catch-all, so unknown extensions are rejected explicitly).
func decodeFile(path string) (decoded, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeWav(path)
	case ".mp3":
		return decodeMp3(path)
	case ".flac":
		return decodeFlac(path)
	case ".ogg":
		return decodeOgg(path)
	default:
		return decoded{}, fmt.Errorf("backing: unsupported file extension %q", filepath.Ext(path))
	}
}

func decodeWav(path string) (decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return decoded{}, fmt.Errorf("backing: open %q: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return decoded{}, fmt.Errorf("backing: decode wav %q: %w", path, err)
	}

	floatBuf := buf.AsFloatBuffer()
	samples := make([]float32, len(floatBuf.Data))
	for i, v := range floatBuf.Data {
		samples[i] = float32(v)
	}

	return decoded{
		interleaved: samples,
		channels:    buf.Format.NumChannels,
		sampleRate:  buf.Format.SampleRate,
	}, nil
}

func decodeMp3(path string) (decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return decoded{}, fmt.Errorf("backing: open %q: %w", path, err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return decoded{}, fmt.Errorf("backing: decode mp3 %q: %w", path, err)
	}

	// go-mp3 always produces signed-16 stereo PCM.
	raw := make([]byte, 0, 1<<20)
	chunk := make([]byte, 32768)
	for {
		n, err := dec.Read(chunk)
		if n > 0 {
			raw = append(raw, chunk[:n]...)
		}
		if err != nil {
			break
		}
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		samples[i] = float32(v) / 32768.0
	}

	return decoded{
		interleaved: samples,
		channels:    2,
		sampleRate:  dec.SampleRate(),
	}, nil
}

func decodeFlac(path string) (decoded, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return decoded{}, fmt.Errorf("backing: decode flac %q: %w", path, err)
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	sampleRate := int(stream.Info.SampleRate)
	bitsPerSample := stream.Info.BitsPerSample
	scale := float32(int64(1) << (bitsPerSample - 1))

	var samples []float32
	for {
		frame, err := stream.ParseNext()
		if err != nil {
			break
		}
		numSamples := len(frame.Subframes[0].Samples)
		for i := 0; i < numSamples; i++ {
			for c := 0; c < channels; c++ {
				samples = append(samples, float32(frame.Subframes[c].Samples[i])/scale)
			}
		}
	}

	return decoded{interleaved: samples, channels: channels, sampleRate: sampleRate}, nil
}

func decodeOgg(path string) (decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return decoded{}, fmt.Errorf("backing: open %q: %w", path, err)
	}
	defer f.Close()

	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return decoded{}, fmt.Errorf("backing: decode ogg %q: %w", path, err)
	}

	var samples []float32
	chunk := make([]float32, 4096)
	for {
		n, err := reader.Read(chunk)
		if n > 0 {
			samples = append(samples, chunk[:n]...)
		}
		if err != nil {
			break
		}
	}

	return decoded{
		interleaved: samples,
		channels:    reader.Channels(),
		sampleRate:  reader.SampleRate(),
	}, nil
}

// deinterleave splits an interleaved buffer into separate left/right
// channels. Mono input is duplicated to both, matching
// BackingTrack.cpp's loadWavFile/loadMp3File.
func deinterleave(interleaved []float32, channels int) (left, right []float32) {
	if channels <= 1 {
		left = make([]float32, len(interleaved))
		right = make([]float32, len(interleaved))
		copy(left, interleaved)
		copy(right, interleaved)
		return
	}

	frames := len(interleaved) / channels
	left = make([]float32, frames)
	right = make([]float32, frames)
	for i := 0; i < frames; i++ {
		left[i] = interleaved[i*channels]
		right[i] = interleaved[i*channels+1]
	}
	return
}
