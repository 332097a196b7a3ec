// Package transport implements the two serial delivery protocols spoken by
// the controller-emulation firmware builds, and the probe that picks between
// them.
//
// Both transports share the same contract: Connect performs the protocol's
// handshake, SendState delivers one controller state snapshot, and Update
// drains inbound bytes and advances whatever per-protocol bookkeeping is
// pending (acknowledgments, retransmissions). A transport instance owns its
// serial link exclusively; all methods must be called from a single goroutine,
// normally the Runner's tick loop.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"padlink/controller"
	"padlink/internal/log"
)

// Transport is the abstract contract over the protocol variants.
type Transport interface {
	// Connect performs the protocol handshake. It blocks, polling at short
	// intervals, until the handshake completes, fails, or ctx is done.
	Connect(ctx context.Context) error

	// SendState delivers one controller state snapshot. It never blocks:
	// under rate-limiting or backpressure the send is skipped, not queued.
	SendState(st controller.State) error

	// Update drains inbound bytes and advances the protocol state machine.
	// It processes only bytes already buffered by the link and never waits
	// for more.
	Update() error

	// Close releases the transport. It does not close the underlying link.
	Close() error
}

// ErrNotConnected is returned by SendState before a successful Connect.
var ErrNotConnected = errors.New("transport: not connected")

// Options carries the shared collaborator set for a transport instance.
type Options struct {
	// Logger receives structured progress and error records. Nil disables
	// logging.
	Logger *slog.Logger

	// Raw receives every chunk of wire traffic. Nil disables raw capture.
	Raw log.RawLogger

	// Status receives human-readable progress lines. Sends never block; a
	// full channel drops the line. Nil disables status reporting.
	Status chan<- string

	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

func (o *Options) fill() {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Raw == nil {
		o.Raw = log.NewRaw(nil)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// notify emits a status line without ever blocking the tick loop.
func (o *Options) notify(format string, args ...any) {
	if o.Status == nil {
		return
	}
	select {
	case o.Status <- fmt.Sprintf(format, args...):
	default:
	}
}
