// Command hoopipid is the standalone entry point: it opens the audio
// driver once and runs in the foreground until signaled, per spec
// §4.H/§11.2. cmd/hoopipi-supervisor wraps the same construction path
// with a reconnect loop; this binary doesn't retry on driver failure.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/gordonklaus/portaudio"

	"github.com/hoopipi/hoopipi/internal/app"
	"github.com/hoopipi/hoopipi/internal/applog"
	"github.com/hoopipi/hoopipi/internal/cliopts"
	"github.com/hoopipi/hoopipi/internal/driver"
)

func main() {
	var cli cliopts.CLI
	kong.Parse(&cli,
		kong.Name("hoopipid"),
		kong.Description("Headless guitar amplifier emulator, standalone mode."),
		kong.UsageOnError(),
	)

	log := applog.Default()

	a, err := app.Build(cli, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to build application")
		os.Exit(1)
	}

	if err := portaudio.Initialize(); err != nil {
		log.Error().Err(err).Msg("failed to initialize portaudio")
		os.Exit(1)
	}
	defer portaudio.Terminate()

	opts := driver.Options{
		InputDevice:  cli.Device,
		OutputDevice: cli.Device,
		SampleRate:   float64(a.Engine.SampleRate()),
		FramesPerBuf: app.DefaultBlockSize,
	}

	drv, err := driver.Open(a.Engine, a.Backing, opts, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open audio driver")
		os.Exit(1)
	}

	if err := a.Control.Start(cli.SocketPath); err != nil {
		log.Error().Err(err).Msg("failed to start control server")
		os.Exit(1)
	}
	defer a.Control.Stop()

	if err := drv.Start(); err != nil {
		log.Error().Err(err).Msg("failed to start audio stream")
		os.Exit(1)
	}
	defer drv.Close()

	log.Info().Str("socket", cli.SocketPath).Msg("hoopipid running")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down")
}
