package control

import "path/filepath"

// Status is a snapshot of every parameter cell plus derived metrics, the
// shape getStatus returns (spec §4.I). Field names mirror
// original_source/HoopiPi/IPCServer.cpp's response keys so existing
// clients (the web frontend) need no translation layer.
type Status struct {
	ActiveModelL int      `json:"activeModelL"`
	ActiveModelR int      `json:"activeModelR"`
	ActiveModel  int      `json:"activeModel"`
	ModelReady   [2]bool  `json:"modelReady"`
	ModelNames   [2]string `json:"modelNames"`
	ModelErrors  [2]string `json:"modelErrors"`

	StereoMode      string  `json:"stereoMode"`
	Stereo2MonoMixL float64 `json:"stereo2MonoMixL"`
	Stereo2MonoMixR float64 `json:"stereo2MonoMixR"`

	Bypass    bool `json:"bypass"`
	Normalize bool `json:"normalize"`

	BypassModelL bool `json:"bypassModelL"`
	BypassModelR bool `json:"bypassModelR"`

	InputGainL  float64 `json:"inputGainL"`
	InputGainR  float64 `json:"inputGainR"`
	OutputGainL float64 `json:"outputGainL"`
	OutputGainR float64 `json:"outputGainR"`

	EQEnabledL bool    `json:"eqEnabledL"`
	EQBassL    float64 `json:"eqBassL"`
	EQMidL     float64 `json:"eqMidL"`
	EQTrebleL  float64 `json:"eqTrebleL"`
	EQEnabledR bool    `json:"eqEnabledR"`
	EQBassR    float64 `json:"eqBassR"`
	EQMidR     float64 `json:"eqMidR"`
	EQTrebleR  float64 `json:"eqTrebleR"`

	NoiseGateEnabledL   bool    `json:"noiseGateEnabledL"`
	NoiseGateThresholdL float64 `json:"noiseGateThresholdL"`
	NoiseGateEnabledR   bool    `json:"noiseGateEnabledR"`
	NoiseGateThresholdR float64 `json:"noiseGateThresholdR"`

	DCBlockerEnabled bool `json:"dcBlockerEnabled"`

	ReverbEnabled   bool    `json:"reverbEnabled"`
	ReverbRoomSize  float64 `json:"reverbRoomSize"`
	ReverbDecayTime float64 `json:"reverbDecayTime"`
	ReverbDry       float64 `json:"reverbDry"`
	ReverbWet       float64 `json:"reverbWet"`

	XrunCount uint64 `json:"xrunCount"`

	BlockSize  int     `json:"blockSize"`
	LatencyMs  float64 `json:"latencyMs"`
	DSPLoad    float64 `json:"dspLoad"`
	CPUTempC   float64 `json:"cpuTempC"`
	RSSBytes   int64   `json:"rssBytes"`

	Recording     bool    `json:"recording"`
	RecordingPath string  `json:"recordingPath"`
	RecordingSecs float64 `json:"recordingSeconds"`
}

// buildStatus reads the engine and recorder into a Status snapshot.
// Called from the control connection goroutine, never the audio thread.
func (s *Server) buildStatus() Status {
	e := s.eng
	st := Status{
		ActiveModelL: int(e.L.ActiveSlot.Load()),
		ActiveModelR: int(e.R.ActiveSlot.Load()),
		ActiveModel:  int(e.L.ActiveSlot.Load()),
		ModelReady:   [2]bool{e.SlotA.IsReady(), e.SlotB.IsReady()},
		ModelNames:   [2]string{modelFilename(e.SlotA.Path()), modelFilename(e.SlotB.Path())},
		ModelErrors:  [2]string{e.LoaderA.LastError(), e.LoaderB.LastError()},

		StereoMode:      e.StereoMode().String(),
		Stereo2MonoMixL: float64(e.Stereo2MonoMixL.Load()),
		Stereo2MonoMixR: float64(e.Stereo2MonoMixR.Load()),

		Bypass:    e.Bypass.Load(),
		Normalize: e.Normalize.Load(),

		BypassModelL: e.L.BypassModel.Load(),
		BypassModelR: e.R.BypassModel.Load(),

		InputGainL:  float64(e.L.InputGainDB.Load()),
		InputGainR:  float64(e.R.InputGainDB.Load()),
		OutputGainL: float64(e.L.OutputGainDB.Load()),
		OutputGainR: float64(e.R.OutputGainDB.Load()),

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

		DCBlockerEnabled: e.DCBlockerEnabled(),

		ReverbEnabled:   e.Reverb.Enabled.Load(),
		ReverbRoomSize:  float64(e.Reverb.RoomSize.Load()),
		ReverbDecayTime: float64(e.Reverb.DecayTime.Load()),
		ReverbDry:       float64(e.Reverb.Dry.Load()),
		ReverbWet:       float64(e.Reverb.Wet.Load()),

		XrunCount: e.XrunCount(),

		BlockSize: e.MaxBlockSize(),
		LatencyMs: e.LatencyMs(),
		DSPLoad:   e.LoadRatio(),
		CPUTempC:  cpuTemperatureC(),
		RSSBytes:  processRSSBytes(),
	}

	if s.rec != nil {
		st.Recording = s.rec.IsRecording()
		st.RecordingPath = s.rec.CurrentPath()
		st.RecordingSecs = s.rec.Duration().Seconds()
	}

	return st
}

func modelFilename(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
