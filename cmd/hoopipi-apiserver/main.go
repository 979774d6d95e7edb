// Command hoopipi-apiserver is the HTTP frontend spec §11.4/§13.5
// describes: a thin chi router that translates REST calls into
// control-socket JSON requests, one HTTP request per control-socket
// round trip, matching original_source/api-server/main.cpp's shape.
package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hoopipi/hoopipi/internal/applog"
	"github.com/hoopipi/hoopipi/internal/control"
)

// cli is this binary's own small flag set — it doesn't embed
// cliopts.CLI since it never touches the engine or audio driver
// directly, only the control socket and an HTTP listen address.
type cli struct {
	SocketPath string `default:"/tmp/hoopi-pi.sock" help:"Control-server Unix socket path."`
	ListenAddr string `default:":8080" help:"HTTP listen address."`
}

func main() {
	var c cli
	kong.Parse(&c,
		kong.Name("hoopipi-apiserver"),
		kong.Description("HTTP frontend over the control socket."),
		kong.UsageOnError(),
	)

	log := applog.Default()
	client := control.NewClient(c.SocketPath)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handlers{client: client}

	r.Get("/status", h.getStatus)
	r.Post("/models/{slot}/load", h.loadModel)
	r.Post("/models/{slot}/unload", h.unloadModel)
	r.Post("/models/active", h.setActiveModel)
	r.Post("/gain/input", h.setInputGain)
	r.Post("/gain/output", h.setOutputGain)
	r.Post("/eq", h.setEQ)
	r.Post("/noise-gate", h.setNoiseGate)
	r.Post("/stereo-mode", h.setStereoMode)
	r.Post("/reverb", h.setReverb)
	r.Post("/recording/start", h.startRecording)
	r.Post("/recording/stop", h.stopRecording)
	r.Post("/backing-track/load", h.loadBackingTrack)
	r.Post("/backing-track/play", h.playBackingTrack)
	r.Post("/backing-track/stop", h.stopBackingTrack)
	r.Post("/backing-track/pause", h.pauseBackingTrack)
	r.Get("/backing-track/status", h.backingTrackStatus)

	log.Info().Str("addr", c.ListenAddr).Str("socket", c.SocketPath).Msg("hoopipi-apiserver listening")
	if err := http.ListenAndServe(c.ListenAddr, r); err != nil {
		log.Error().Err(err).Msg("http server exited")
	}
}

type handlers struct {
	client *control.Client
}

// relay performs req against the control socket and writes its response
// as the HTTP body: 200 on success=true, 400 otherwise.
func (h *handlers) relay(w http.ResponseWriter, req control.Request) {
	resp, err := h.client.Do(req)
	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": err.Error()})
		return
	}

	status := http.StatusOK
	if ok, _ := resp["success"].(bool); !ok {
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if r.ContentLength == 0 {
		return nil
	}
	return dec.Decode(dst)
}

// channelSuffix picks "", "L", or "R" for an L/R-qualified route body,
// mirroring control's bothChannels/leftChannel/rightChannel selector.
func channelSuffix(l, r bool) string {
	switch {
	case l:
		return "L"
	case r:
		return "R"
	default:
		return ""
	}
}

func (h *handlers) getStatus(w http.ResponseWriter, r *http.Request) {
	h.relay(w, control.Request{Action: "getStatus"})
}

func (h *handlers) loadModel(w http.ResponseWriter, r *http.Request) {
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		http.Error(w, "invalid slot", http.StatusBadRequest)
		return
	}
	var body struct {
		Path string `json:"path"`
	}
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.relay(w, control.Request{Action: "loadModel", Slot: slot, ModelPath: body.Path})
}

func (h *handlers) unloadModel(w http.ResponseWriter, r *http.Request) {
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		http.Error(w, "invalid slot", http.StatusBadRequest)
		return
	}
	h.relay(w, control.Request{Action: "unloadModel", Slot: slot})
}

func (h *handlers) setActiveModel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Slot int `json:"slot"`
	}
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.relay(w, control.Request{Action: "setActiveModel", Slot: body.Slot})
}

func (h *handlers) setInputGain(w http.ResponseWriter, r *http.Request) {
	var body struct {
		L  bool     `json:"L"`
		R  bool     `json:"R"`
		DB *float64 `json:"db"`
	}
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.relay(w, control.Request{Action: "setInputGain" + channelSuffix(body.L, body.R), Gain: body.DB})
}

func (h *handlers) setOutputGain(w http.ResponseWriter, r *http.Request) {
	var body struct {
		L  bool     `json:"L"`
		R  bool     `json:"R"`
		DB *float64 `json:"db"`
	}
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.relay(w, control.Request{Action: "setOutputGain" + channelSuffix(body.L, body.R), Gain: body.DB})
}

func (h *handlers) setEQ(w http.ResponseWriter, r *http.Request) {
	var body struct {
		L       bool     `json:"L"`
		R       bool     `json:"R"`
		Enabled *bool    `json:"enabled"`
		Bass    *float64 `json:"bass"`
		Mid     *float64 `json:"mid"`
		Treble  *float64 `json:"treble"`
	}
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	suffix := channelSuffix(body.L, body.R)

	if body.Enabled != nil {
		if _, err := h.client.Do(control.Request{Action: "setEQEnabled" + suffix, Enabled: body.Enabled}); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
	}
	if body.Bass != nil {
		if _, err := h.client.Do(control.Request{Action: "setEQBass" + suffix, DB: body.Bass}); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
	}
	if body.Mid != nil {
		if _, err := h.client.Do(control.Request{Action: "setEQMid" + suffix, DB: body.Mid}); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
	}
	if body.Treble != nil {
		if _, err := h.client.Do(control.Request{Action: "setEQTreble" + suffix, DB: body.Treble}); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}

func (h *handlers) setNoiseGate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		L          bool     `json:"L"`
		R          bool     `json:"R"`
		Enabled    *bool    `json:"enabled"`
		ThresholdDB *float64 `json:"thresholdDb"`
	}
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.relay(w, control.Request{
		Action:    "setNoiseGate" + channelSuffix(body.L, body.R),
		Enabled:   body.Enabled,
		Threshold: body.ThresholdDB,
	})
}

func (h *handlers) setStereoMode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode string `json:"mode"`
	}
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.relay(w, control.Request{Action: "setStereoMode", Mode: body.Mode})
}

func (h *handlers) setReverb(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled      *bool    `json:"enabled"`
		RoomSize     *float64 `json:"roomSize"`
		DecaySeconds *float64 `json:"decaySeconds"`
		Dry          *float64 `json:"dry"`
		Wet          *float64 `json:"wet"`
	}
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if body.Enabled != nil {
		if _, err := h.client.Do(control.Request{Action: "setReverbEnabled", Enabled: body.Enabled}); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
	}
	if body.RoomSize != nil {
		if _, err := h.client.Do(control.Request{Action: "setReverbRoomSize", Size: body.RoomSize}); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
	}
	if body.DecaySeconds != nil {
		if _, err := h.client.Do(control.Request{Action: "setReverbDecayTime", Seconds: body.DecaySeconds}); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
	}
	if body.Dry != nil || body.Wet != nil {
		if _, err := h.client.Do(control.Request{Action: "setReverbMix", Dry: body.Dry, Wet: body.Wet}); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}

func (h *handlers) startRecording(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Filename string `json:"filename"`
	}
	_ = decodeBody(r, &body)
	h.relay(w, control.Request{Action: "startRecording", Filename: body.Filename})
}

func (h *handlers) stopRecording(w http.ResponseWriter, r *http.Request) {
	h.relay(w, control.Request{Action: "stopRecording"})
}

func (h *handlers) loadBackingTrack(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Path string `json:"path"`
	}
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.relay(w, control.Request{Action: "loadBackingTrack", Filepath: body.Path})
}

func (h *handlers) playBackingTrack(w http.ResponseWriter, r *http.Request) {
	h.relay(w, control.Request{Action: "playBackingTrack"})
}

func (h *handlers) stopBackingTrack(w http.ResponseWriter, r *http.Request) {
	h.relay(w, control.Request{Action: "stopBackingTrack"})
}

func (h *handlers) pauseBackingTrack(w http.ResponseWriter, r *http.Request) {
	h.relay(w, control.Request{Action: "pauseBackingTrack"})
}

func (h *handlers) backingTrackStatus(w http.ResponseWriter, r *http.Request) {
	h.relay(w, control.Request{Action: "getBackingTrackStatus"})
}
