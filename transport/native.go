package transport

import (
	"context"
	"fmt"
	"time"

	"padlink/controller"
	"padlink/protocol"
)

// Native handshake: the host sends each probe byte and waits for the
// firmware's fixed echo.
var nativeHandshake = [...]struct {
	send byte
	want byte
}{
	{0xFF, 0xFF},
	{0x33, 0xCC},
	{0xCC, 0x33},
}

const (
	nativeEchoTimeout = time.Second
	nativeEchoPoll    = 2 * time.Millisecond
)

// Native implements the original streaming protocol: a 3-step byte-echo
// handshake, then 8-byte state frames with a trailing CRC8 and no
// acknowledgment wait on the send path. The firmware answers every frame with
// a single ACK/NACK byte which Update drains opportunistically.
type Native struct {
	link      Link
	opts      Options
	connected bool
}

// NewNative builds a native-protocol transport over link.
func NewNative(link Link, opts Options) *Native {
	opts.fill()
	return &Native{link: link, opts: opts}
}

// Connect runs the 3-step synchronization handshake. Any wrong echo byte or
// timeout fails the attempt; the transport is left ready for a fresh retry.
func (t *Native) Connect(ctx context.Context) error {
	t.connected = false
	if err := t.link.ResetInput(); err != nil {
		return fmt.Errorf("native: reset input: %w", err)
	}
	for i, step := range nativeHandshake {
		t.opts.Raw.Bytes("tx", []byte{step.send})
		if _, err := t.link.Write([]byte{step.send}); err != nil {
			return fmt.Errorf("native: handshake write: %w", err)
		}
		got, err := t.awaitEcho(ctx)
		if err != nil {
			return fmt.Errorf("native: handshake step %d: %w", i+1, err)
		}
		if got != step.want {
			return fmt.Errorf("native: handshake step %d: got 0x%02X, want 0x%02X", i+1, got, step.want)
		}
	}
	t.connected = true
	t.opts.notify("native protocol synchronized")
	t.opts.Logger.Info("native protocol synchronized")
	return nil
}

// awaitEcho polls for the next single byte from the firmware.
func (t *Native) awaitEcho(ctx context.Context) (byte, error) {
	deadline := t.opts.Now().Add(nativeEchoTimeout)
	var buf [1]byte
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, err := t.link.Read(buf[:])
		if err != nil {
			return 0, fmt.Errorf("read: %w", err)
		}
		if n > 0 {
			t.opts.Raw.Bytes("rx", buf[:1])
			return buf[0], nil
		}
		if t.opts.Now().After(deadline) {
			return 0, fmt.Errorf("timed out waiting for echo")
		}
		time.Sleep(nativeEchoPoll)
	}
}

// SendState encodes the state as an 8-byte frame plus CRC8 and writes it.
// Fire and forget: the firmware's per-frame ACK byte is not awaited.
func (t *Native) SendState(st controller.State) error {
	if !t.connected {
		return ErrNotConnected
	}
	frame := st.NativeFrame()
	out := append(frame[:], protocol.CRC8(frame[:]))
	t.opts.Raw.Bytes("tx", out)
	if _, err := t.link.Write(out); err != nil {
		t.opts.notify("native send failed: %v", err)
		return fmt.Errorf("native: send state: %w", err)
	}
	return nil
}

// Update drains at most one buffered ACK/NACK byte. The value carries no
// actionable information on the host side and is discarded.
func (t *Native) Update() error {
	var buf [1]byte
	n, err := t.link.Read(buf[:])
	if err != nil {
		return fmt.Errorf("native: drain ack: %w", err)
	}
	if n > 0 {
		t.opts.Raw.Bytes("rx", buf[:1])
	}
	return nil
}

// Close marks the transport disconnected. The link stays open for reuse by a
// subsequent probe attempt.
func (t *Native) Close() error {
	t.connected = false
	return nil
}
