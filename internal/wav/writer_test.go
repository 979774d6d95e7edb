package wav

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestWriterProducesValidHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	w, err := Create(path, 48000, 2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	samples := make([]float32, 2000)
	for i := range samples {
		samples[i] = 0.5
	}
	if err := w.Write(samples); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != 44+len(samples)*2 {
		t.Fatalf("file size = %d, want %d", len(data), 44+len(samples)*2)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE markers")
	}
	if string(data[36:40]) != "data" {
		t.Fatalf("missing data marker")
	}

	dataSize := binary.LittleEndian.Uint32(data[40:44])
	if dataSize != uint32(len(samples)*2) {
		t.Fatalf("data chunk size = %d, want %d", dataSize, len(samples)*2)
	}

	numChannels := binary.LittleEndian.Uint16(data[22:24])
	if numChannels != 2 {
		t.Fatalf("numChannels = %d, want 2", numChannels)
	}
	sampleRate := binary.LittleEndian.Uint32(data[24:28])
	if sampleRate != 48000 {
		t.Fatalf("sampleRate = %d, want 48000", sampleRate)
	}
}

func TestWriterClampsOutOfRangeSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clamp.wav")
	w, err := Create(path, 44100, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.Write([]float32{2.0, -2.0}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	pcm0 := int16(binary.LittleEndian.Uint16(data[44:46]))
	pcm1 := int16(binary.LittleEndian.Uint16(data[46:48]))
	if pcm0 != 32767 {
		t.Fatalf("pcm0 = %d, want 32767", pcm0)
	}
	if pcm1 != -32767 {
		t.Fatalf("pcm1 = %d, want -32767", pcm1)
	}
}

func TestWriterDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dur.wav")
	w, err := Create(path, 1000, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	samples := make([]float32, 500)
	if err := w.Write(samples); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if d := w.Duration(); d != 0.5 {
		t.Fatalf("Duration() = %v, want 0.5", d)
	}
	w.Close()
}
