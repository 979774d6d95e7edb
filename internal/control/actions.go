package control

import (
	"fmt"

	"github.com/hoopipi/hoopipi/internal/engine"
	"github.com/hoopipi/hoopipi/internal/model"
)

// actionTable is the table-driven dispatcher spec §9 calls for. Each
// L/R-suffixed family shares one handler factory parameterized by
// channelSelector, mirroring how original_source/HoopiPi/Engine.cpp's
// legacy (non-suffixed) setters write both channels while the L/R
// setters write one.
var actionTable = map[string]handlerFunc{
	"loadModel":   handleLoadModel,
	"unloadModel": handleUnloadModel,

	"setActiveModel":  handleSetActiveModel(bothChannels),
	"setActiveModelL": handleSetActiveModel(leftChannel),
	"setActiveModelR": handleSetActiveModel(rightChannel),

	"setBypassModel":  handleSetBypassModel(bothChannels),
	"setBypassModelL": handleSetBypassModel(leftChannel),
	"setBypassModelR": handleSetBypassModel(rightChannel),

	"setBypass": handleSetBypass,

	"getStatus": handleGetStatus,

	"setInputGain":  handleSetInputGain(bothChannels),
	"setInputGainL": handleSetInputGain(leftChannel),
	"setInputGainR": handleSetInputGain(rightChannel),

	"setOutputGain":  handleSetOutputGain(bothChannels),
	"setOutputGainL": handleSetOutputGain(leftChannel),
	"setOutputGainR": handleSetOutputGain(rightChannel),

	"setEQEnabled":  handleSetEQEnabled(bothChannels),
	"setEQEnabledL": handleSetEQEnabled(leftChannel),
	"setEQEnabledR": handleSetEQEnabled(rightChannel),

	"setEQBass":  handleSetEQBand(bothChannels, eqBass),
	"setEQBassL": handleSetEQBand(leftChannel, eqBass),
	"setEQBassR": handleSetEQBand(rightChannel, eqBass),

	"setEQMid":  handleSetEQBand(bothChannels, eqMid),
	"setEQMidL": handleSetEQBand(leftChannel, eqMid),
	"setEQMidR": handleSetEQBand(rightChannel, eqMid),

	"setEQTreble":  handleSetEQBand(bothChannels, eqTreble),
	"setEQTrebleL": handleSetEQBand(leftChannel, eqTreble),
	"setEQTrebleR": handleSetEQBand(rightChannel, eqTreble),

	"setNoiseGateEnabled":  handleSetGateEnabled(bothChannels),
	"setNoiseGateEnabledL": handleSetGateEnabled(leftChannel),
	"setNoiseGateEnabledR": handleSetGateEnabled(rightChannel),

	"setNoiseGateThreshold":  handleSetGateThreshold(bothChannels),
	"setNoiseGateThresholdL": handleSetGateThreshold(leftChannel),
	"setNoiseGateThresholdR": handleSetGateThreshold(rightChannel),

	"setNoiseGate":  handleSetGateCombined(bothChannels),
	"setNoiseGateL": handleSetGateCombined(leftChannel),
	"setNoiseGateR": handleSetGateCombined(rightChannel),

	"setDCBlockerEnabled": handleSetDCBlockerEnabled,

	"setStereoMode":      handleSetStereoMode,
	"setStereo2MonoMix":  handleSetStereo2MonoMix(bothChannels),
	"setStereo2MonoMixL": handleSetStereo2MonoMix(leftChannel),
	"setStereo2MonoMixR": handleSetStereo2MonoMix(rightChannel),

	"setReverbEnabled":   handleSetReverbEnabled,
	"setReverbRoomSize":  handleSetReverbRoomSize,
	"setReverbDecayTime": handleSetReverbDecayTime,
	"setReverbMix":       handleSetReverbMix,

	"startRecording": handleStartRecording,
	"stopRecording":  handleStopRecording,

	"loadBackingTrack":  handleLoadBackingTrack,
	"playBackingTrack":  handlePlayBackingTrack,
	"stopBackingTrack":  handleStopBackingTrack,
	"pauseBackingTrack": handlePauseBackingTrack,

	"setBackingTrackLoop":   handleSetBackingTrackLoop,
	"setBackingTrackVolume": handleSetBackingTrackVolume,

	"setIncludeBackingTrackInRecording": handleSetIncludeBackingTrackInRecording,
	"getIncludeBackingTrackInRecording": handleGetIncludeBackingTrackInRecording,

	"setBackingTrackStartPosition": handleSetBackingTrackStartPosition,
	"setBackingTrackStopPosition":  handleSetBackingTrackStopPosition,

	"getBackingTrackStatus": handleGetBackingTrackStatus,
}

// channelSelector names which of the engine's two channels an L/R-
// suffixed action family targets. bothChannels mirrors the legacy
// (non-suffixed) setters in original_source, which wrote both channels
// at once.
type channelSelector int

const (
	bothChannels channelSelector = iota
	leftChannel
	rightChannel
)

// eqBandKind selects which of the three EQ bands an action targets.
type eqBandKind int

const (
	eqBass eqBandKind = iota
	eqMid
	eqTreble
)

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func handleLoadModel(s *Server, req Request) (map[string]any, error) {
	if req.ModelPath == "" {
		return nil, fmt.Errorf("missing modelPath")
	}
	loader := s.loaderForSlot(req.Slot)
	if loader == nil {
		return nil, fmt.Errorf("invalid slot (must be 0 or 1)")
	}
	loader.LoadAsync(req.ModelPath)
	s.eng.Bypass.Store(false)
	return map[string]any{"slot": req.Slot, "modelPath": req.ModelPath}, nil
}

func handleUnloadModel(s *Server, req Request) (map[string]any, error) {
	loader := s.loaderForSlot(req.Slot)
	if loader == nil {
		return nil, fmt.Errorf("invalid slot (must be 0 or 1)")
	}
	loader.Unload()
	s.eng.Bypass.Store(true)
	return map[string]any{"slot": req.Slot}, nil
}

func (s *Server) loaderForSlot(slot int) *model.Loader {
	switch slot {
	case 0:
		return s.eng.LoaderA
	case 1:
		return s.eng.LoaderB
	default:
		return nil
	}
}

func handleSetActiveModel(sel channelSelector) handlerFunc {
	return func(s *Server, req Request) (map[string]any, error) {
		if req.Slot < 0 || req.Slot > 1 {
			return nil, fmt.Errorf("invalid slot (must be 0 or 1)")
		}
		e := s.eng
		if sel != rightChannel {
			e.L.ActiveSlot.Store(int32(req.Slot))
		}
		if sel != leftChannel {
			e.R.ActiveSlot.Store(int32(req.Slot))
		}
		return map[string]any{"slot": req.Slot}, nil
	}
}

// handleSetBypassModel maps the original's legacy single setBypassModel
// flag onto both channels' BypassModel cells, since this engine has no
// separate legacy-only bypass field to mirror it with.
func handleSetBypassModel(sel channelSelector) handlerFunc {
	return func(s *Server, req Request) (map[string]any, error) {
		bypass := false
		if req.Bypass != nil {
			bypass = *req.Bypass
		}
		e := s.eng
		if sel != rightChannel {
			e.L.BypassModel.Store(bypass)
		}
		if sel != leftChannel {
			e.R.BypassModel.Store(bypass)
		}
		return map[string]any{"bypass": bypass}, nil
	}
}

func handleSetBypass(s *Server, req Request) (map[string]any, error) {
	bypass := false
	if req.Bypass != nil {
		bypass = *req.Bypass
	}
	s.eng.Bypass.Store(bypass)
	return map[string]any{"bypass": bypass}, nil
}

func handleGetStatus(s *Server, req Request) (map[string]any, error) {
	return map[string]any{"status": s.buildStatus()}, nil
}

func handleSetInputGain(sel channelSelector) handlerFunc {
	return func(s *Server, req Request) (map[string]any, error) {
		gain := valueOr(req.Gain, 0)
		e := s.eng
		if sel != rightChannel {
			e.L.InputGainDB.Store(float32(gain))
		}
		if sel != leftChannel {
			e.R.InputGainDB.Store(float32(gain))
		}
		return map[string]any{"gain": gain}, nil
	}
}

func handleSetOutputGain(sel channelSelector) handlerFunc {
	return func(s *Server, req Request) (map[string]any, error) {
		gain := valueOr(req.Gain, 0)
		e := s.eng
		if sel != rightChannel {
			e.L.OutputGainDB.Store(float32(gain))
		}
		if sel != leftChannel {
			e.R.OutputGainDB.Store(float32(gain))
		}
		return map[string]any{"gain": gain}, nil
	}
}

func handleSetEQEnabled(sel channelSelector) handlerFunc {
	return func(s *Server, req Request) (map[string]any, error) {
		enabled := true
		if req.Enabled != nil {
			enabled = *req.Enabled
		}
		e := s.eng
		if sel != rightChannel {
			e.L.EQ.Enabled.Store(enabled)
		}
		if sel != leftChannel {
			e.R.EQ.Enabled.Store(enabled)
		}
		return map[string]any{"enabled": enabled}, nil
	}
}

func handleSetEQBand(sel channelSelector, band eqBandKind) handlerFunc {
	return func(s *Server, req Request) (map[string]any, error) {
		db := valueOr(req.DB, 0)
		e := s.eng
		if sel != rightChannel {
			setEQBand(e.L.EQ, band, db)
		}
		if sel != leftChannel {
			setEQBand(e.R.EQ, band, db)
		}
		return map[string]any{"db": db}, nil
	}
}

type eqBandSetter interface {
	SetBassDB(float64)
	SetMidDB(float64)
	SetTrebleDB(float64)
}

func setEQBand(eq eqBandSetter, band eqBandKind, db float64) {
	switch band {
	case eqBass:
		eq.SetBassDB(db)
	case eqMid:
		eq.SetMidDB(db)
	case eqTreble:
		eq.SetTrebleDB(db)
	}
}

func handleSetGateEnabled(sel channelSelector) handlerFunc {
	return func(s *Server, req Request) (map[string]any, error) {
		enabled := true
		if req.Enabled != nil {
			enabled = *req.Enabled
		}
		e := s.eng
		if sel != rightChannel {
			e.L.Gate.Enabled.Store(enabled)
		}
		if sel != leftChannel {
			e.R.Gate.Enabled.Store(enabled)
		}
		return map[string]any{"enabled": enabled}, nil
	}
}

func handleSetGateThreshold(sel channelSelector) handlerFunc {
	return func(s *Server, req Request) (map[string]any, error) {
		threshold := valueOr(req.Threshold, -40)
		e := s.eng
		if sel != rightChannel {
			e.L.Gate.ThreshDB.Store(float32(threshold))
		}
		if sel != leftChannel {
			e.R.Gate.ThreshDB.Store(float32(threshold))
		}
		return map[string]any{"threshold": threshold}, nil
	}
}

func handleSetGateCombined(sel channelSelector) handlerFunc {
	return func(s *Server, req Request) (map[string]any, error) {
		enabled := true
		if req.Enabled != nil {
			enabled = *req.Enabled
		}
		threshold := valueOr(req.Threshold, -40)
		e := s.eng
		if sel != rightChannel {
			e.L.Gate.Enabled.Store(enabled)
			e.L.Gate.ThreshDB.Store(float32(threshold))
		}
		if sel != leftChannel {
			e.R.Gate.Enabled.Store(enabled)
			e.R.Gate.ThreshDB.Store(float32(threshold))
		}
		return map[string]any{"enabled": enabled, "threshold": threshold}, nil
	}
}

func handleSetDCBlockerEnabled(s *Server, req Request) (map[string]any, error) {
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	s.eng.SetDCBlockerEnabled(enabled)
	return map[string]any{"enabled": enabled}, nil
}

func handleSetStereoMode(s *Server, req Request) (map[string]any, error) {
	mode := engine.ParseStereoMode(req.Mode)
	s.eng.SetStereoMode(mode)
	return map[string]any{"mode": mode.String()}, nil
}

func handleSetStereo2MonoMix(sel channelSelector) handlerFunc {
	return func(s *Server, req Request) (map[string]any, error) {
		level := valueOr(req.Level, 0.5)
		e := s.eng
		if sel != rightChannel {
			e.Stereo2MonoMixL.Store(float32(level))
		}
		if sel != leftChannel {
			e.Stereo2MonoMixR.Store(float32(level))
		}
		return map[string]any{"level": level}, nil
	}
}

func handleSetReverbEnabled(s *Server, req Request) (map[string]any, error) {
	enabled := false
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	s.eng.Reverb.Enabled.Store(enabled)
	return map[string]any{"enabled": enabled}, nil
}

func handleSetReverbRoomSize(s *Server, req Request) (map[string]any, error) {
	size := valueOr(req.Size, 0.3)
	s.eng.Reverb.SetRoomSize(size)
	return map[string]any{"size": size}, nil
}

func handleSetReverbDecayTime(s *Server, req Request) (map[string]any, error) {
	seconds := valueOr(req.Seconds, 2.0)
	s.eng.Reverb.SetDecayTime(seconds)
	return map[string]any{"seconds": seconds}, nil
}

func handleSetReverbMix(s *Server, req Request) (map[string]any, error) {
	dry := valueOr(req.Dry, 1.0)
	wet := valueOr(req.Wet, 0.3)
	s.eng.Reverb.Dry.Store(float32(dry))
	s.eng.Reverb.Wet.Store(float32(wet))
	return map[string]any{"dry": dry, "wet": wet}, nil
}
