// Package cliopts defines the flag struct both entry points parse with
// kong, per spec §11.2.
package cliopts

import "time"

// CLI is the flag set shared by cmd/hoopipid and embedded into
// cmd/hoopipi-supervisor's own CLI struct. Defaults mirror the runtime
// document's persisted defaults (§13.4) so a fresh install with no
// runtime.json still starts in the documented state.
type CLI struct {
	ModelPath  string `help:"Model file to auto-load into slot A at startup."`
	ClientName string `default:"hoopipi" help:"Audio client/app name."`

	AutoConnect bool `default:"true" negatable:"" help:"Connect to the default audio device at startup."`

	InputGainDB  float64 `default:"0" help:"Initial input gain in dB."`
	OutputGainDB float64 `default:"0" help:"Initial output gain in dB."`

	Bypass       bool `help:"Start with the whole engine bypassed."`
	NormalizeOff bool `help:"Disable model output normalization."`

	NoiseGateEnabled     bool    `default:"true" negatable:""`
	NoiseGateThresholdDB float64 `default:"-40"`

	DCBlockerEnabled bool `default:"true" negatable:""`

	SocketPath string `default:"/tmp/hoopi-pi.sock" help:"Control-server Unix socket path."`
	Device     string `help:"PortAudio device name; default device if empty."`
}

// SupervisorCLI embeds CLI and adds the retry interval the supervisor's
// reconnect loop uses (spec §4.H/§9, thread class 5 in §5).
type SupervisorCLI struct {
	CLI

	ReconnectInterval time.Duration `default:"5s" help:"Delay between audio-driver reconnect attempts."`
}
