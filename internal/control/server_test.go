package control

import (
	"encoding/json"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hoopipi/hoopipi/internal/backing"
	"github.com/hoopipi/hoopipi/internal/engine"
	"github.com/hoopipi/hoopipi/internal/model"
	"github.com/hoopipi/hoopipi/internal/recorder"
)

type passthroughModel struct{}

func (passthroughModel) Process(in, out []float32)    { copy(out, in) }
func (passthroughModel) RecommendedOutputDB() float32 { return 0 }
func (passthroughModel) SampleRate() int              { return 48000 }
func (passthroughModel) SetMaxBlockSize(n int)         {}
func (passthroughModel) Close()                        {}

func passthroughFactory(path string) (model.Model, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}
	return passthroughModel{}, nil
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	eng := engine.New(48000, 512, passthroughFactory)
	t.Cleanup(eng.Close)

	rec, err := recorder.New(t.TempDir(), zerolog.Nop(), 512)
	require.NoError(t, err)

	track := backing.New()

	s := New(eng, track, rec, zerolog.Nop())
	socketPath := filepath.Join(t.TempDir(), "control.sock")
	require.NoError(t, s.Start(socketPath))
	t.Cleanup(s.Stop)

	return s, socketPath
}

func roundTrip(t *testing.T, socketPath string, req Request) map[string]any {
	t.Helper()

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))

	payload, err := json.Marshal(req)
	require.NoError(t, err)
	_, err = conn.Write(payload)
	require.NoError(t, err)

	buf := make([]byte, maxMessageSize)
	n, err := conn.Read(buf)
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(buf[:n], &resp))
	return resp
}

func TestUnknownActionReturnsFailure(t *testing.T) {
	_, socketPath := newTestServer(t)

	resp := roundTrip(t, socketPath, Request{Action: "doesNotExist"})
	require.Equal(t, false, resp["success"])
	require.Contains(t, resp["error"], "unknown action")
}

func TestSetInputGainBothChannels(t *testing.T) {
	s, socketPath := newTestServer(t)

	gain := 3.5
	resp := roundTrip(t, socketPath, Request{Action: "setInputGain", Gain: &gain})
	require.Equal(t, true, resp["success"])

	require.InDelta(t, 3.5, s.eng.L.InputGainDB.Load(), 1e-6)
	require.InDelta(t, 3.5, s.eng.R.InputGainDB.Load(), 1e-6)
}

func TestSetInputGainLeftOnly(t *testing.T) {
	s, socketPath := newTestServer(t)

	gain := -6.0
	resp := roundTrip(t, socketPath, Request{Action: "setInputGainL", Gain: &gain})
	require.Equal(t, true, resp["success"])

	require.InDelta(t, -6.0, s.eng.L.InputGainDB.Load(), 1e-6)
	require.InDelta(t, 0.0, s.eng.R.InputGainDB.Load(), 1e-6)
}

func TestSetBypassModelLegacyMapsToBothChannels(t *testing.T) {
	s, socketPath := newTestServer(t)

	bypass := true
	resp := roundTrip(t, socketPath, Request{Action: "setBypassModel", Bypass: &bypass})
	require.Equal(t, true, resp["success"])

	require.True(t, s.eng.L.BypassModel.Load())
	require.True(t, s.eng.R.BypassModel.Load())
}

func TestLoadModelMissingPathFails(t *testing.T) {
	_, socketPath := newTestServer(t)

	resp := roundTrip(t, socketPath, Request{Action: "loadModel", Slot: 0})
	require.Equal(t, false, resp["success"])
}

func TestLoadModelInvalidSlotFails(t *testing.T) {
	_, socketPath := newTestServer(t)

	resp := roundTrip(t, socketPath, Request{Action: "loadModel", Slot: 7, ModelPath: "/dev/null"})
	require.Equal(t, false, resp["success"])
}

func TestGetStatusReturnsSnapshot(t *testing.T) {
	_, socketPath := newTestServer(t)

	resp := roundTrip(t, socketPath, Request{Action: "getStatus"})
	require.Equal(t, true, resp["success"])
	require.Contains(t, resp, "status")
}

func TestSetReverbMixUpdatesCells(t *testing.T) {
	s, socketPath := newTestServer(t)

	dry, wet := 0.6, 0.8
	resp := roundTrip(t, socketPath, Request{Action: "setReverbMix", Dry: &dry, Wet: &wet})
	require.Equal(t, true, resp["success"])

	require.InDelta(t, 0.6, s.eng.Reverb.Dry.Load(), 1e-6)
	require.InDelta(t, 0.8, s.eng.Reverb.Wet.Load(), 1e-6)
}

func TestOnStatusChangedFiresOnMutationNotOnGetStatus(t *testing.T) {
	s, socketPath := newTestServer(t)

	calls := 0
	s.OnStatusChanged = func(Status) { calls++ }

	roundTrip(t, socketPath, Request{Action: "getStatus"})
	require.Equal(t, 0, calls)

	enabled := false
	roundTrip(t, socketPath, Request{Action: "setReverbEnabled", Enabled: &enabled})
	require.Equal(t, 1, calls)
}

func TestBackingTrackStatusWhenUnloaded(t *testing.T) {
	_, socketPath := newTestServer(t)

	resp := roundTrip(t, socketPath, Request{Action: "getBackingTrackStatus"})
	require.Equal(t, true, resp["success"])
	require.Equal(t, false, resp["loaded"])
}

func TestSetIncludeBackingTrackInRecordingRoundTrips(t *testing.T) {
	s, socketPath := newTestServer(t)

	enabled := true
	roundTrip(t, socketPath, Request{Action: "setIncludeBackingTrackInRecording", Enabled: &enabled})
	require.True(t, s.eng.IncludeBackingInRecording.Load())

	resp := roundTrip(t, socketPath, Request{Action: "getIncludeBackingTrackInRecording"})
	require.Equal(t, true, resp["enabled"])
}
