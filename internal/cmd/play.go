package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"padlink/controller"
	"padlink/internal/log"
	"padlink/transport"
)

type Play struct {
	Port       string        `arg:"" help:"Serial device of the firmware board" env:"PADLINK_PORT"`
	File       string        `arg:"" help:"Recording of raw 8-byte native frames" type:"existingfile"`
	Baud       int           `help:"Serial baud rate (default depends on firmware)" env:"PADLINK_BAUD"`
	Firmware   string        `help:"Firmware protocol: native, pabotbase or auto" default:"auto" enum:"native,pabotbase,auto" env:"PADLINK_FIRMWARE"`
	Controller string        `help:"Controller personality to emulate (pabotbase only)" default:"wireless-pro" env:"PADLINK_CONTROLLER"`
	Profiles   string        `help:"YAML file overriding the controller identifier table" env:"PADLINK_PROFILES"`
	Tick       time.Duration `help:"Playback cadence per recorded frame" default:"8ms"`
	Loop       bool          `help:"Restart the recording when it ends"`
}

// Run replays a recording of raw native frames through whichever transport
// the firmware speaks, then returns the sticks to neutral.
func (p *Play) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	states, err := loadRecording(p.File)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("%s holds no frames", p.File)
	}
	logger.Info("loaded recording", "file", p.File, "frames", len(states))

	fw := transport.FirmwareType(p.Firmware)
	link, err := transport.OpenSerial(p.Port, baudFor(fw, p.Baud))
	if err != nil {
		return err
	}
	defer link.Close()

	profile, err := resolveProfile(p.Controller, p.Profiles)
	if err != nil {
		return err
	}

	opts := transport.Options{Logger: logger, Raw: rawLogger}
	t, err := transport.Connect(ctx, link, fw, profile, opts)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer t.Close()

	runner := transport.NewRunner(t, opts)
	runErr := make(chan error, 1)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { runErr <- runner.Run(runCtx) }()

	ticker := time.NewTicker(p.Tick)
	defer ticker.Stop()
	for i := 0; ; i++ {
		if i == len(states) {
			if !p.Loop {
				break
			}
			i = 0
		}
		runner.SetState(states[i])
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	runner.SetState(controller.Neutral())
	// One more tick so the neutral state actually goes out.
	select {
	case <-ctx.Done():
	case <-time.After(2 * p.Tick):
	}
	cancel()
	return <-runErr
}

// loadRecording reads a file of back-to-back 8-byte native frames.
func loadRecording(path string) ([]controller.State, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw)%controller.NativeFrameSize != 0 {
		return nil, fmt.Errorf("%s: size %d is not a multiple of %d: %w",
			path, len(raw), controller.NativeFrameSize, io.ErrUnexpectedEOF)
	}
	states := make([]controller.State, 0, len(raw)/controller.NativeFrameSize)
	for off := 0; off < len(raw); off += controller.NativeFrameSize {
		st, err := controller.StateFromNativeFrame(raw[off : off+controller.NativeFrameSize])
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	return states, nil
}
