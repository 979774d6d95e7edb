package control

import "fmt"

func handleStartRecording(s *Server, req Request) (map[string]any, error) {
	if s.rec == nil {
		return nil, fmt.Errorf("recorder not available")
	}
	path, err := s.rec.Start(req.Filename, s.eng.SampleRate())
	if err != nil {
		return nil, err
	}
	return map[string]any{"filepath": path}, nil
}

func handleStopRecording(s *Server, req Request) (map[string]any, error) {
	if s.rec == nil {
		return nil, fmt.Errorf("recorder not available")
	}
	s.rec.Stop()
	return map[string]any{}, nil
}

func handleLoadBackingTrack(s *Server, req Request) (map[string]any, error) {
	if s.backing == nil {
		return nil, fmt.Errorf("backing track not available")
	}
	if req.Filepath == "" {
		return nil, fmt.Errorf("missing filepath")
	}
	if err := s.backing.Load(req.Filepath, s.eng.SampleRate()); err != nil {
		return nil, err
	}
	return map[string]any{
		"filename":   s.backing.Filename(),
		"duration":   s.backing.Duration(),
		"channels":   s.backing.Channels(),
		"sampleRate": s.backing.SampleRate(),
	}, nil
}

func handlePlayBackingTrack(s *Server, req Request) (map[string]any, error) {
	if s.backing == nil {
		return nil, fmt.Errorf("backing track not available")
	}
	s.backing.Play()
	return map[string]any{}, nil
}

func handleStopBackingTrack(s *Server, req Request) (map[string]any, error) {
	if s.backing == nil {
		return nil, fmt.Errorf("backing track not available")
	}
	s.backing.Stop()
	return map[string]any{}, nil
}

func handlePauseBackingTrack(s *Server, req Request) (map[string]any, error) {
	if s.backing == nil {
		return nil, fmt.Errorf("backing track not available")
	}
	s.backing.Pause()
	return map[string]any{}, nil
}

func handleSetBackingTrackLoop(s *Server, req Request) (map[string]any, error) {
	if s.backing == nil {
		return nil, fmt.Errorf("backing track not available")
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	s.backing.SetLoop(enabled)
	return map[string]any{"enabled": enabled}, nil
}

func handleSetBackingTrackVolume(s *Server, req Request) (map[string]any, error) {
	if s.backing == nil {
		return nil, fmt.Errorf("backing track not available")
	}
	volume := valueOr(req.Volume, 1.0)
	s.backing.SetVolume(float32(volume))
	return map[string]any{"volume": volume}, nil
}

func handleSetIncludeBackingTrackInRecording(s *Server, req Request) (map[string]any, error) {
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	s.eng.IncludeBackingInRecording.Store(enabled)
	return map[string]any{"enabled": enabled}, nil
}

func handleGetIncludeBackingTrackInRecording(s *Server, req Request) (map[string]any, error) {
	return map[string]any{"enabled": s.eng.IncludeBackingInRecording.Load()}, nil
}

func handleSetBackingTrackStartPosition(s *Server, req Request) (map[string]any, error) {
	if s.backing == nil {
		return nil, fmt.Errorf("backing track not available")
	}
	seconds := valueOr(req.Seconds, 0)
	s.backing.SetStartPosition(float32(seconds))
	return map[string]any{"position": seconds}, nil
}

func handleSetBackingTrackStopPosition(s *Server, req Request) (map[string]any, error) {
	if s.backing == nil {
		return nil, fmt.Errorf("backing track not available")
	}
	seconds := valueOr(req.Seconds, 0)
	s.backing.SetStopPosition(float32(seconds))
	return map[string]any{"position": seconds}, nil
}

func handleGetBackingTrackStatus(s *Server, req Request) (map[string]any, error) {
	if s.backing == nil {
		return map[string]any{"loaded": false}, nil
	}
	t := s.backing
	status := map[string]any{
		"loaded":        t.IsLoaded(),
		"playing":       t.IsPlaying(),
		"looping":       t.IsLooping(),
		"volume":        t.Volume(),
		"filename":      t.Filename(),
		"duration":      t.Duration(),
		"channels":      t.Channels(),
		"sampleRate":    t.SampleRate(),
		"startPosition": t.StartPosition(),
		"stopPosition":  t.StopPosition(),
	}
	if sr := t.SampleRate(); sr > 0 {
		status["position"] = float32(t.CurrentFrame()) / float32(sr)
	} else {
		status["position"] = float32(0)
	}
	return status, nil
}
