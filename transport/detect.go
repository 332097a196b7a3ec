package transport

import (
	"context"
	"fmt"
	"time"

	"padlink/protocol"
)

// FirmwareType names which protocol the firmware on the far end speaks.
type FirmwareType string

const (
	FirmwareNative    FirmwareType = "native"
	FirmwarePABotBase FirmwareType = "pabotbase"
	FirmwareAuto      FirmwareType = "auto"
)

// connectBackoff is the fixed delay between connection attempts.
const connectBackoff = time.Second

// Connect establishes a transport over link. A named firmware type is tried
// in a loop until it connects or ctx is cancelled. FirmwareAuto alternates a
// fresh Native attempt and a fresh PABotBase attempt each round: the same
// serial link may be attached to either firmware build, and the host cannot
// know which without probing.
func Connect(ctx context.Context, link Link, fw FirmwareType, profile protocol.Profile, opts Options) (Transport, error) {
	opts.fill()
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch fw {
		case FirmwareNative:
			if t, ok := tryConnect(ctx, NewNative(link, opts), opts); ok {
				return t, nil
			}
		case FirmwarePABotBase:
			if t, ok := tryConnect(ctx, NewPABotBase(link, profile, opts), opts); ok {
				return t, nil
			}
		case FirmwareAuto:
			if t, ok := tryConnect(ctx, NewNative(link, opts), opts); ok {
				return t, nil
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if t, ok := tryConnect(ctx, NewPABotBase(link, profile, opts), opts); ok {
				return t, nil
			}
		default:
			return nil, fmt.Errorf("unknown firmware type %q", fw)
		}
		opts.notify("connect attempt %d failed, retrying", attempt)
		if !sleepCtx(ctx, connectBackoff) {
			return nil, ctx.Err()
		}
	}
}

// tryConnect runs one handshake attempt and disposes the transport on
// failure.
func tryConnect(ctx context.Context, t Transport, opts Options) (Transport, bool) {
	err := t.Connect(ctx)
	if err == nil {
		return t, true
	}
	opts.Logger.Debug("handshake attempt failed", "error", err)
	_ = t.Close()
	return nil, false
}

// sleepCtx sleeps for d unless ctx is done first. It reports whether the full
// delay elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
