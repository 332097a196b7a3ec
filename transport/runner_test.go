package transport

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padlink/controller"
)

// countingTransport records every SendState call.
type countingTransport struct {
	mu      sync.Mutex
	sends   int
	updates int
	last    controller.State
}

func (c *countingTransport) Connect(context.Context) error { return nil }

func (c *countingTransport) SendState(st controller.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends++
	c.last = st
	return nil
}

func (c *countingTransport) Update() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates++
	return nil
}

func (c *countingTransport) Close() error { return nil }

func (c *countingTransport) snapshot() (int, int, controller.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sends, c.updates, c.last
}

func TestRunnerTicksSendThenUpdate(t *testing.T) {
	ct := &countingTransport{}
	r := NewRunner(ct, Options{})

	pressed := controller.Neutral()
	pressed.Buttons = controller.ButtonB
	r.SetState(pressed)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, r.Run(ctx))

	sends, updates, last := ct.snapshot()
	assert.Greater(t, sends, 0)
	assert.Greater(t, updates, 0)
	assert.Equal(t, pressed, last)
}

func TestRunnerStartsNeutral(t *testing.T) {
	ct := &countingTransport{}
	r := NewRunner(ct, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, r.Run(ctx))

	sends, _, last := ct.snapshot()
	require.Greater(t, sends, 0)
	assert.Equal(t, controller.Neutral(), last)
}
