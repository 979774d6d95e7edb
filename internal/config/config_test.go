package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	doc := Load(path)
	require.Equal(t, Defaults(), doc)
}

func TestLoadCorruptFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	doc := Load(path)
	require.Equal(t, Defaults(), doc)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "runtime.json")

	doc := Defaults()
	doc.Slot0Model = "/models/amp.nam"
	doc.ActiveSlot = 1
	doc.InputGainL = 3.5
	doc.ReverbEnabled = true
	doc.StereoMode = "Stereo2Stereo"

	require.NoError(t, Save(path, doc))

	got := Load(path)
	require.Equal(t, doc, got)
}

func TestSaveOverwritesExistingFileAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.json")

	require.NoError(t, Save(path, Defaults()))

	second := Defaults()
	second.OutputGainR = -6
	require.NoError(t, Save(path, second))

	got := Load(path)
	require.Equal(t, second, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no leftover temp files after Save")
}
