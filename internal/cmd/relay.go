// Package cmd holds the kong command implementations.
package cmd

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"padlink/controller"
	"padlink/internal/log"
	"padlink/protocol"
	"padlink/transport"
)

type Relay struct {
	Port       string `arg:"" help:"Serial device of the firmware board" env:"PADLINK_PORT"`
	Baud       int    `help:"Serial baud rate (default depends on firmware: 1000000 native, 115200 pabotbase)" env:"PADLINK_BAUD"`
	Firmware   string `help:"Firmware protocol: native, pabotbase or auto" default:"auto" enum:"native,pabotbase,auto" env:"PADLINK_FIRMWARE"`
	Controller string `help:"Controller personality to emulate (pabotbase only)" default:"wireless-pro" env:"PADLINK_CONTROLLER"`
	Profiles   string `help:"YAML file overriding the controller identifier table" env:"PADLINK_PROFILES"`
}

// Run is called by Kong when the relay command is executed.
func (r *Relay) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profile, err := resolveProfile(r.Controller, r.Profiles)
	if err != nil {
		return err
	}

	fw := transport.FirmwareType(r.Firmware)
	link, err := transport.OpenSerial(r.Port, baudFor(fw, r.Baud))
	if err != nil {
		return err
	}
	defer link.Close()

	status := make(chan string, 64)
	go func() {
		for line := range status {
			logger.Info(line)
		}
	}()
	defer close(status)

	opts := transport.Options{Logger: logger, Raw: rawLogger, Status: status}
	logger.Info("connecting", "port", r.Port, "firmware", r.Firmware, "controller", r.Controller)
	t, err := transport.Connect(ctx, link, fw, profile, opts)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer t.Close()

	runner := transport.NewRunner(t, opts)

	// With a terminal on stdin there is no frame source; hold the neutral
	// state so an external producer can attach later. Otherwise stdin feeds
	// hex-encoded 8-byte native frames, one per line.
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		go feedFrames(ctx, os.Stdin, runner, logger)
	} else {
		logger.Info("stdin is a terminal, holding neutral state")
	}

	return runner.Run(ctx)
}

// baudFor picks the firmware build's standard baud rate unless the user set
// one explicitly.
func baudFor(fw transport.FirmwareType, explicit int) int {
	if explicit != 0 {
		return explicit
	}
	if fw == transport.FirmwareNative {
		return transport.BaudNative
	}
	return transport.BaudPABotBase
}

// resolveProfile looks the controller name up in the built-in identifier
// table, or in a user-supplied override file.
func resolveProfile(name, profilesPath string) (protocol.Profile, error) {
	table := protocol.DefaultProfiles()
	if profilesPath != "" {
		var err error
		table, err = protocol.LoadProfilesFile(profilesPath)
		if err != nil {
			return protocol.Profile{}, fmt.Errorf("load profiles %s: %w", profilesPath, err)
		}
	}
	p, err := table.Lookup(name)
	if err != nil {
		return protocol.Profile{}, fmt.Errorf("%w (known: %s)", err, strings.Join(table.Names(), ", "))
	}
	return p, nil
}

// feedFrames reads hex-encoded native frames line by line and pushes the
// decoded states into the runner.
func feedFrames(ctx context.Context, f *os.File, runner *transport.Runner, logger *slog.Logger) {
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raw, err := hex.DecodeString(line)
		if err != nil {
			logger.Warn("bad frame line", "line", line, "error", err)
			continue
		}
		st, err := controller.StateFromNativeFrame(raw)
		if err != nil {
			logger.Warn("short frame line", "line", line)
			continue
		}
		runner.SetState(st)
	}
}
