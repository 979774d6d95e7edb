// Command hoopipi-supervisor wraps the same construction path as
// cmd/hoopipid with a reconnect loop: when the audio driver reports a
// disconnect, it closes the stream and retries opening it every
// ReconnectInterval until it succeeds, logging each attempt at Warn
// (spec §4.H, §5 thread class 5, §9).
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"

	"github.com/hoopipi/hoopipi/internal/app"
	"github.com/hoopipi/hoopipi/internal/applog"
	"github.com/hoopipi/hoopipi/internal/cliopts"
	"github.com/hoopipi/hoopipi/internal/driver"
)

func main() {
	var cli cliopts.SupervisorCLI
	kong.Parse(&cli,
		kong.Name("hoopipi-supervisor"),
		kong.Description("Headless guitar amplifier emulator, supervised mode with automatic reconnect."),
		kong.UsageOnError(),
	)

	log := applog.Default()

	a, err := app.Build(cli.CLI, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to build application")
		os.Exit(1)
	}

	if err := portaudio.Initialize(); err != nil {
		log.Error().Err(err).Msg("failed to initialize portaudio")
		os.Exit(1)
	}
	defer portaudio.Terminate()

	if err := a.Control.Start(cli.SocketPath); err != nil {
		log.Error().Err(err).Msg("failed to start control server")
		os.Exit(1)
	}
	defer a.Control.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	quit := make(chan struct{})
	go supervise(a, cli, log, quit)

	<-sig
	close(quit)
	log.Info().Msg("shutting down")
}

// supervise owns the driver's lifecycle: open, start, wait for
// disconnect or quit, reopen on disconnect after ReconnectInterval.
func supervise(a *app.App, cli cliopts.SupervisorCLI, log zerolog.Logger, quit chan struct{}) {
	opts := driver.Options{
		InputDevice:  cli.Device,
		OutputDevice: cli.Device,
		SampleRate:   float64(a.Engine.SampleRate()),
		FramesPerBuf: app.DefaultBlockSize,
	}

	for {
		select {
		case <-quit:
			return
		default:
		}

		drv, err := driver.Open(a.Engine, a.Backing, opts, log)
		if err != nil {
			log.Warn().Err(err).Dur("retryIn", cli.ReconnectInterval).Msg("driver open failed, retrying")
			if !sleepOrQuit(cli.ReconnectInterval, quit) {
				return
			}
			continue
		}

		disconnected := make(chan struct{}, 1)
		drv.OnDisconnect = func() {
			select {
			case disconnected <- struct{}{}:
			default:
			}
		}

		if err := drv.Start(); err != nil {
			log.Warn().Err(err).Dur("retryIn", cli.ReconnectInterval).Msg("driver start failed, retrying")
			drv.Close()
			if !sleepOrQuit(cli.ReconnectInterval, quit) {
				return
			}
			continue
		}

		log.Info().Msg("audio driver connected")

		select {
		case <-quit:
			drv.Close()
			return
		case <-disconnected:
			log.Warn().Msg("audio driver disconnected, reconnecting")
			drv.Close()
			if !sleepOrQuit(cli.ReconnectInterval, quit) {
				return
			}
		}
	}
}

func sleepOrQuit(d time.Duration, quit chan struct{}) bool {
	select {
	case <-time.After(d):
		return true
	case <-quit:
		return false
	}
}
