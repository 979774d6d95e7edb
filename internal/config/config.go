// Package config persists the engine's runtime parameter document,
// grounded 1:1 on original_source/HoopiPi/ConfigPersistence.h's
// load-whole-document/save-whole-document pattern (spec §6, §13.4).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoSavedState is returned by nothing in this package — Load treats a
// missing or corrupt file as "use defaults" per spec §7 and returns no
// error, so a caller cannot tell "file absent" from "file unreadable".
// The name is kept for other packages that want to alias it.
var ErrNoSavedState = errors.New("config: no saved runtime state")

// Document is the full persisted parameter set, matching the key table in
// spec §6. JSON tags match original_source's exact key spellings so a
// document written by the original program round-trips.
type Document struct {
	Slot0Model string `json:"slot0Model"`
	Slot1Model string `json:"slot1Model"`
	ActiveSlot int    `json:"activeSlot"`

	InputGain  float64 `json:"inputGain"`
	OutputGain float64 `json:"outputGain"`

	InputGainL  float64 `json:"inputGainL"`
	InputGainR  float64 `json:"inputGainR"`
	OutputGainL float64 `json:"outputGainL"`
	OutputGainR float64 `json:"outputGainR"`

	BypassModelL bool `json:"bypassModelL"`
	BypassModelR bool `json:"bypassModelR"`

	EQEnabled bool    `json:"eqEnabled"`
	EQBass    float64 `json:"eqBass"`
	EQMid     float64 `json:"eqMid"`
	EQTreble  float64 `json:"eqTreble"`

	EQEnabledL bool    `json:"eqEnabledL"`
	EQBassL    float64 `json:"eqBassL"`
	EQMidL     float64 `json:"eqMidL"`
	EQTrebleL  float64 `json:"eqTrebleL"`

	EQEnabledR bool    `json:"eqEnabledR"`
	EQBassR    float64 `json:"eqBassR"`
	EQMidR     float64 `json:"eqMidR"`
	EQTrebleR  float64 `json:"eqTrebleR"`

	NoiseGateEnabled   bool    `json:"noiseGateEnabled"`
	NoiseGateThreshold float64 `json:"noiseGateThreshold"`

	NoiseGateEnabledL   bool    `json:"noiseGateEnabledL"`
	NoiseGateThresholdL float64 `json:"noiseGateThresholdL"`
	NoiseGateEnabledR   bool    `json:"noiseGateEnabledR"`
	NoiseGateThresholdR float64 `json:"noiseGateThresholdR"`

	ReverbEnabled   bool    `json:"reverbEnabled"`
	ReverbRoomSize  float64 `json:"reverbRoomSize"`
	ReverbDecayTime float64 `json:"reverbDecayTime"`
	ReverbDry       float64 `json:"reverbDry"`
	ReverbWet       float64 `json:"reverbWet"`

	StereoMode      string  `json:"stereoMode"`
	Stereo2MonoMixL float64 `json:"stereo2MonoMixL"`
	Stereo2MonoMixR float64 `json:"stereo2MonoMixR"`
}

// Defaults returns the document's persisted defaults, taken directly from
// ConfigPersistence.h's own default-value literals (spec §13.4).
func Defaults() Document {
	return Document{
		ActiveSlot: 0,

		BypassModelL: false,
		BypassModelR: true,

		EQEnabled: true, EQEnabledL: true, EQEnabledR: true,

		NoiseGateEnabled: true, NoiseGateEnabledL: true, NoiseGateEnabledR: true,
		NoiseGateThreshold: -40, NoiseGateThresholdL: -40, NoiseGateThresholdR: -40,

		ReverbEnabled:   false,
		ReverbRoomSize:  0.3,
		ReverbDecayTime: 2.0,
		ReverbDry:       1.0,
		ReverbWet:       0.3,

		StereoMode:      "LeftMono2Stereo",
		Stereo2MonoMixL: 0.5,
		Stereo2MonoMixR: 0.5,
	}
}

// DefaultPath returns $HOME/.config/hoopi-pi/runtime.json, falling back to
// a /tmp path if HOME is unset, matching
// ConfigPersistence::getDefaultConfigPath.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "/tmp/hoopi-pi-runtime.json"
	}
	return filepath.Join(home, ".config", "hoopi-pi", "runtime.json")
}

// Load reads the document at path, returning Defaults() if the file is
// missing or unreadable — a read failure is never surfaced as an error
// (spec §7 "File-I/O failure on persistence ... silently treated as 'no
// saved state' on read").
func Load(path string) Document {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults()
	}
	doc := Defaults()
	if err := json.Unmarshal(data, &doc); err != nil {
		return Defaults()
	}
	return doc
}

// Save writes doc to path atomically: marshal, write to a temp file in
// the same directory, fsync, then rename over the target — the portable
// atomic-replace idiom spec §6 calls for in place of the original's
// plain ofstream write.
func Save(path string, doc Document) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: create config dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal document: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".runtime-*.json.tmp")
	if err != nil {
		return fmt.Errorf("config: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("config: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("config: fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("config: rename temp file into place: %w", err)
	}
	return nil
}
