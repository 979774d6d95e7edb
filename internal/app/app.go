// Package app wires a persisted runtime document, an engine, its model
// loaders, the backing-track player, the recorder, and the control
// server into the single composed unit both cmd/hoopipid and
// cmd/hoopipi-supervisor start, so the two entry points share one
// construction path and differ only in how they own the audio driver.
package app

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/hoopipi/hoopipi/internal/backing"
	"github.com/hoopipi/hoopipi/internal/cliopts"
	"github.com/hoopipi/hoopipi/internal/config"
	"github.com/hoopipi/hoopipi/internal/control"
	"github.com/hoopipi/hoopipi/internal/engine"
	"github.com/hoopipi/hoopipi/internal/model"
	"github.com/hoopipi/hoopipi/internal/recorder"
)

// DefaultSampleRate and DefaultBlockSize are used when no device-reported
// values are available yet — the engine is constructed before the audio
// stream opens, so these seed its buffers; driver.Open reuses the
// engine's own SampleRate() if its Options don't override it.
const (
	DefaultSampleRate = 48000
	DefaultBlockSize  = 256
)

// App is every subsystem cmd/hoopipid and cmd/hoopipi-supervisor need,
// constructed and parameterized but not yet started (the audio driver
// and control socket still need Start calls from the caller).
type App struct {
	Engine     *engine.Engine
	Backing    *backing.Track
	Recorder   *recorder.Recorder
	Control    *control.Server
	ConfigPath string
	Log        zerolog.Logger
}

// Build constructs an App from cli and the persisted runtime document,
// applying the document first and cli's explicit flags on top — cli's
// own defaults mirror the document's defaults, so an unset flag never
// clobbers a persisted value with something different.
func Build(cli cliopts.CLI, log zerolog.Logger) (*App, error) {
	configPath := config.DefaultPath()
	doc := config.Load(configPath)

	eng := engine.New(DefaultSampleRate, DefaultBlockSize, model.NewPassthroughFactory(DefaultSampleRate))
	applyDocument(eng, doc)
	applyCLI(eng, cli)

	track := backing.New()

	rec, err := recorder.New(recordingsDir(), log, DefaultBlockSize)
	if err != nil {
		return nil, err
	}
	eng.AttachRecorder(rec)
	eng.AttachBackingTrack(track)

	ctl := control.New(eng, track, rec, log)
	ctl.OnStatusChanged = func(control.Status) {
		persist(eng, configPath, log)
	}

	if doc.Slot0Model != "" {
		eng.LoaderA.LoadAsync(doc.Slot0Model)
	}
	if doc.Slot1Model != "" {
		eng.LoaderB.LoadAsync(doc.Slot1Model)
	}
	if cli.ModelPath != "" {
		eng.LoaderA.LoadAsync(cli.ModelPath)
	}

	return &App{
		Engine:     eng,
		Backing:    track,
		Recorder:   rec,
		Control:    ctl,
		ConfigPath: configPath,
		Log:        log,
	}, nil
}

func applyDocument(e *engine.Engine, doc config.Document) {
	e.L.ActiveSlot.Store(int32(doc.ActiveSlot))
	e.R.ActiveSlot.Store(int32(doc.ActiveSlot))

	e.L.InputGainDB.Store(float32(doc.InputGainL))
	e.R.InputGainDB.Store(float32(doc.InputGainR))
	e.L.OutputGainDB.Store(float32(doc.OutputGainL))
	e.R.OutputGainDB.Store(float32(doc.OutputGainR))

	e.L.BypassModel.Store(doc.BypassModelL)
	e.R.BypassModel.Store(doc.BypassModelR)

	e.L.EQ.Enabled.Store(doc.EQEnabledL)
	e.L.EQ.SetBassDB(doc.EQBassL)
	e.L.EQ.SetMidDB(doc.EQMidL)
	e.L.EQ.SetTrebleDB(doc.EQTrebleL)
	e.R.EQ.Enabled.Store(doc.EQEnabledR)
	e.R.EQ.SetBassDB(doc.EQBassR)
	e.R.EQ.SetMidDB(doc.EQMidR)
	e.R.EQ.SetTrebleDB(doc.EQTrebleR)

	e.L.Gate.Enabled.Store(doc.NoiseGateEnabledL)
	e.L.Gate.ThreshDB.Store(float32(doc.NoiseGateThresholdL))
	e.R.Gate.Enabled.Store(doc.NoiseGateEnabledR)
	e.R.Gate.ThreshDB.Store(float32(doc.NoiseGateThresholdR))

	e.Reverb.Enabled.Store(doc.ReverbEnabled)
	e.Reverb.SetRoomSize(doc.ReverbRoomSize)
	e.Reverb.SetDecayTime(doc.ReverbDecayTime)
	e.Reverb.Dry.Store(float32(doc.ReverbDry))
	e.Reverb.Wet.Store(float32(doc.ReverbWet))

	e.SetStereoMode(engine.ParseStereoMode(doc.StereoMode))
	e.Stereo2MonoMixL.Store(float32(doc.Stereo2MonoMixL))
	e.Stereo2MonoMixR.Store(float32(doc.Stereo2MonoMixR))
}

func applyCLI(e *engine.Engine, cli cliopts.CLI) {
	if cli.InputGainDB != 0 {
		e.L.InputGainDB.Store(float32(cli.InputGainDB))
		e.R.InputGainDB.Store(float32(cli.InputGainDB))
	}
	if cli.OutputGainDB != 0 {
		e.L.OutputGainDB.Store(float32(cli.OutputGainDB))
		e.R.OutputGainDB.Store(float32(cli.OutputGainDB))
	}
	if cli.Bypass {
		e.Bypass.Store(true)
	}
	if cli.NormalizeOff {
		e.Normalize.Store(false)
	}

	if !cli.NoiseGateEnabled {
		e.L.Gate.Enabled.Store(false)
		e.R.Gate.Enabled.Store(false)
	}
	if cli.NoiseGateThresholdDB != -40 {
		e.L.Gate.ThreshDB.Store(float32(cli.NoiseGateThresholdDB))
		e.R.Gate.ThreshDB.Store(float32(cli.NoiseGateThresholdDB))
	}

	e.SetDCBlockerEnabled(cli.DCBlockerEnabled)
}

// persist snapshots the live engine state back into the runtime document
// and writes it, logging (but not surfacing) a write failure per spec §7.
func persist(e *engine.Engine, path string, log zerolog.Logger) {
	doc := config.Document{
		Slot0Model: e.SlotA.Path(),
		Slot1Model: e.SlotB.Path(),
		ActiveSlot: int(e.L.ActiveSlot.Load()),

		InputGainL:  float64(e.L.InputGainDB.Load()),
		InputGainR:  float64(e.R.InputGainDB.Load()),
		OutputGainL: float64(e.L.OutputGainDB.Load()),
		OutputGainR: float64(e.R.OutputGainDB.Load()),

		BypassModelL: e.L.BypassModel.Load(),
		BypassModelR: e.R.BypassModel.Load(),

		EQEnabledL: e.L.EQ.Enabled.Load(),
		EQBassL:    e.L.EQ.BassDB(),
		EQMidL:     e.L.EQ.MidDB(),
		EQTrebleL:  e.L.EQ.TrebleDB(),
		EQEnabledR: e.R.EQ.Enabled.Load(),
		EQBassR:    e.R.EQ.BassDB(),
		EQMidR:     e.R.EQ.MidDB(),
		EQTrebleR:  e.R.EQ.TrebleDB(),

		NoiseGateEnabledL:   e.L.Gate.Enabled.Load(),
		NoiseGateThresholdL: float64(e.L.Gate.ThreshDB.Load()),
		NoiseGateEnabledR:   e.R.Gate.Enabled.Load(),
		NoiseGateThresholdR: float64(e.R.Gate.ThreshDB.Load()),

		ReverbEnabled:   e.Reverb.Enabled.Load(),
		ReverbRoomSize:  float64(e.Reverb.RoomSize.Load()),
		ReverbDecayTime: float64(e.Reverb.DecayTime.Load()),
		ReverbDry:       float64(e.Reverb.Dry.Load()),
		ReverbWet:       float64(e.Reverb.Wet.Load()),

		StereoMode:      e.StereoMode().String(),
		Stereo2MonoMixL: float64(e.Stereo2MonoMixL.Load()),
		Stereo2MonoMixR: float64(e.Stereo2MonoMixR.Load()),
	}

	if err := config.Save(path, doc); err != nil {
		log.Warn().Err(err).Msg("failed to persist runtime document")
	}
}

func recordingsDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "/tmp/hoopi-pi-recordings"
	}
	return filepath.Join(home, ".local", "share", "hoopi-pi", "recordings")
}
