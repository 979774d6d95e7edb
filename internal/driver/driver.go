// Package driver wires the engine to a PortAudio duplex stream, playing
// the role of original_source/HoopiPi/JackBackend.{h,cpp}'s four mono
// JACK ports, grounded on
// other_examples/GarrettArm-frequencyplot__stream_processor.go's
// Start/Stop/Close shape (spec §4.H, §11.1).
package driver

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"

	"github.com/hoopipi/hoopipi/internal/backing"
	"github.com/hoopipi/hoopipi/internal/engine"
)

// Options configures which devices and block size the stream opens with.
// Empty InputDevice/OutputDevice select PortAudio's default device, which
// realizes the "auto-connect first physical pair" policy spec §4.H names
// — PortAudio's default device already is the first physical device.
type Options struct {
	InputDevice  string
	OutputDevice string
	SampleRate   float64
	FramesPerBuf int
}

// Driver owns the open duplex stream and the scratch buffers the
// callback deinterleaves into. Never allocates inside the callback.
type Driver struct {
	eng     *engine.Engine
	backing *backing.Track
	log     zerolog.Logger

	stream *portaudio.Stream

	mu        sync.Mutex
	running   bool
	blockSize int

	inL, inR, outL, outR []float32
	trackBufL, trackBufR []float32

	xrunCount    atomic.Uint64
	disconnected atomic.Bool

	OnDisconnect func()
}

// Open opens (but does not start) a duplex stream for eng, using opts.
// backingTrack may be nil if no backing-track mixing is desired.
func Open(eng *engine.Engine, backingTrack *backing.Track, opts Options, log zerolog.Logger) (*Driver, error) {
	blockSize := opts.FramesPerBuf
	if blockSize <= 0 {
		blockSize = 256
	}
	sampleRate := opts.SampleRate
	if sampleRate <= 0 {
		sampleRate = float64(eng.SampleRate())
	}

	d := &Driver{
		eng:       eng,
		backing:   backingTrack,
		log:       log.With().Str("component", "driver").Logger(),
		blockSize: blockSize,
		inL:       make([]float32, blockSize),
		inR:       make([]float32, blockSize),
		outL:      make([]float32, blockSize),
		outR:      make([]float32, blockSize),
		trackBufL: make([]float32, blockSize),
		trackBufR: make([]float32, blockSize),
	}

	stream, err := openStream(opts, sampleRate, blockSize, d.callback)
	if err != nil {
		return nil, fmt.Errorf("driver: open stream: %w", err)
	}
	d.stream = stream
	return d, nil
}

func openStream(opts Options, sampleRate float64, blockSize int, callback func(in, out []float32)) (*portaudio.Stream, error) {
	if opts.InputDevice == "" && opts.OutputDevice == "" {
		return portaudio.OpenDefaultStream(2, 2, sampleRate, blockSize, callback)
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	in, out, err := resolveDevices(devices, opts.InputDevice, opts.OutputDevice)
	if err != nil {
		return nil, err
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   in,
			Channels: 2,
			Latency:  in.DefaultLowInputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Device:   out,
			Channels: 2,
			Latency:  out.DefaultLowOutputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: blockSize,
	}
	return portaudio.OpenStream(params, callback)
}

func resolveDevices(devices []*portaudio.DeviceInfo, inName, outName string) (in, out *portaudio.DeviceInfo, err error) {
	for _, d := range devices {
		if inName != "" && d.Name == inName && d.MaxInputChannels > 0 {
			in = d
		}
		if outName != "" && d.Name == outName && d.MaxOutputChannels > 0 {
			out = d
		}
	}
	if inName != "" && in == nil {
		return nil, nil, fmt.Errorf("driver: input device %q not found", inName)
	}
	if outName != "" && out == nil {
		return nil, nil, fmt.Errorf("driver: output device %q not found", outName)
	}
	defIn, errIn := portaudio.DefaultInputDevice()
	defOut, errOut := portaudio.DefaultOutputDevice()
	if in == nil {
		if errIn != nil {
			return nil, nil, fmt.Errorf("driver: no input device: %w", errIn)
		}
		in = defIn
	}
	if out == nil {
		if errOut != nil {
			return nil, nil, fmt.Errorf("driver: no output device: %w", errOut)
		}
		out = defOut
	}
	return in, out, nil
}

// callback is PortAudio's RT thread entry point. It must never allocate,
// lock for long, or log. in/out are interleaved stereo: [L0,R0,L1,R1,...].
func (d *Driver) callback(in, out []float32) {
	n := len(in) / 2
	if n > len(d.inL) {
		d.xrunCount.Add(1)
		for i := range out {
			out[i] = 0
		}
		return
	}

	inL, inR := d.inL[:n], d.inR[:n]
	for i := 0; i < n; i++ {
		inL[i] = in[2*i]
		inR[i] = in[2*i+1]
	}

	outL, outR := d.outL[:n], d.outR[:n]
	d.eng.ProcessStereo(inL, inR, outL, outR)

	if d.backing != nil && d.backing.IsPlaying() {
		// FillBuffer writes into dedicated per-driver scratch sized once
		// at Open, which mixBacking then sums into the engine output.
		d.mixBacking(outL, outR, n)
	}

	for i := 0; i < n; i++ {
		out[2*i] = outL[i]
		out[2*i+1] = outR[i]
	}
}

func (d *Driver) mixBacking(outL, outR []float32, n int) {
	trackL := d.backingScratchL(n)
	trackR := d.backingScratchR(n)
	d.backing.FillBuffer(trackL, trackR)
	for i := 0; i < n; i++ {
		outL[i] += trackL[i]
		outR[i] += trackR[i]
	}
}

// backingScratchL/R return the first n samples of the backing-mix scratch
// buffers Open sizes to the block size. The callback rejects any n larger
// than that block size first, so the grow branch does not run from it.
func (d *Driver) backingScratchL(n int) []float32 {
	if d.trackBufL == nil || len(d.trackBufL) < n {
		d.trackBufL = make([]float32, n)
	}
	return d.trackBufL[:n]
}

func (d *Driver) backingScratchR(n int) []float32 {
	if d.trackBufR == nil || len(d.trackBufR) < n {
		d.trackBufR = make([]float32, n)
	}
	return d.trackBufR[:n]
}

// Start begins audio processing.
func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return nil
	}
	if err := d.stream.Start(); err != nil {
		return fmt.Errorf("driver: start stream: %w", err)
	}
	d.running = true
	d.disconnected.Store(false)
	return nil
}

// Stop halts audio processing without closing the stream.
func (d *Driver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return nil
	}
	if err := d.stream.Stop(); err != nil {
		return fmt.Errorf("driver: stop stream: %w", err)
	}
	d.running = false
	return nil
}

// Close stops and releases the stream.
func (d *Driver) Close() error {
	_ = d.Stop()
	return d.stream.Close()
}

// XrunCount returns the cumulative count of blocks the callback received
// larger than its scratch buffers (should not happen once FramesPerBuf is
// honored by PortAudio, but mirrors the engine's own defensive counter).
func (d *Driver) XrunCount() uint64 { return d.xrunCount.Load() }

// IsDisconnected reports whether the stream reported a device loss the
// supervisor has not yet recovered from.
func (d *Driver) IsDisconnected() bool { return d.disconnected.Load() }

// MarkDisconnected flags the stream as lost and invokes OnDisconnect, if
// set, so the supervisor's reconnect loop (spec §5 "Cancellation",
// resolved open question (b): both capture and playback streams are
// reopened together) can react.
func (d *Driver) MarkDisconnected() {
	d.disconnected.Store(true)
	if d.OnDisconnect != nil {
		d.OnDisconnect()
	}
}
