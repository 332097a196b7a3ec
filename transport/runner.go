package transport

import (
	"context"
	"sync/atomic"
	"time"

	"padlink/controller"
)

// tickInterval is the cadence of the send/update loop. The transports do
// their own rate limiting, so the loop only needs to be at least as fast as
// the fastest send interval.
const tickInterval = time.Millisecond

// Runner drives a connected transport from a single goroutine at a fixed
// cadence: SendState with the latest snapshot, then Update, once per tick.
// The current snapshot is replaced atomically by any other goroutine via
// SetState; the transport itself is only ever touched by the Run loop, so the
// transports need no internal locking.
type Runner struct {
	transport Transport
	opts      Options
	state     atomic.Pointer[controller.State]
}

// NewRunner wraps a connected transport, starting from the neutral state.
func NewRunner(t Transport, opts Options) *Runner {
	opts.fill()
	r := &Runner{transport: t, opts: opts}
	neutral := controller.Neutral()
	r.state.Store(&neutral)
	return r
}

// SetState replaces the snapshot delivered on subsequent ticks. Safe to call
// from any goroutine.
func (r *Runner) SetState(st controller.State) {
	r.state.Store(&st)
}

// Run loops until ctx is done. Send and update errors are reported and the
// loop continues; nothing in the steady state is fatal.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if err := r.transport.SendState(*r.state.Load()); err != nil {
			r.opts.notify("send failed: %v", err)
			r.opts.Logger.Warn("send failed", "error", err)
		}
		if err := r.transport.Update(); err != nil {
			r.opts.notify("update failed: %v", err)
			r.opts.Logger.Warn("update failed", "error", err)
		}
	}
}
