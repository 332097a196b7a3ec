package transport

import (
	"sync"
	"time"
)

// fakeLink is an in-memory Link. Reads return whatever has been pushed, with
// the same "0, nil when idle" contract as a serial port with a short read
// timeout. An optional onWrite hook lets tests script the firmware side.
type fakeLink struct {
	mu       sync.Mutex
	in       []byte
	out      []byte
	writeErr error
	onWrite  func(p []byte)
}

func (l *fakeLink) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := copy(p, l.in)
	l.in = l.in[n:]
	return n, nil
}

func (l *fakeLink) Write(p []byte) (int, error) {
	l.mu.Lock()
	if l.writeErr != nil {
		err := l.writeErr
		l.mu.Unlock()
		return 0, err
	}
	l.out = append(l.out, p...)
	hook := l.onWrite
	chunk := append([]byte(nil), p...)
	l.mu.Unlock()
	if hook != nil {
		hook(chunk)
	}
	return len(p), nil
}

func (l *fakeLink) Close() error { return nil }

func (l *fakeLink) ResetInput() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.in = nil
	return nil
}

// push queues bytes for the transport to read.
func (l *fakeLink) push(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.in = append(l.in, b...)
}

// pending returns how many pushed bytes the transport has not read yet.
func (l *fakeLink) pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.in)
}

// takeOut returns everything written so far and clears the capture.
func (l *fakeLink) takeOut() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.out
	l.out = nil
	return out
}

// fakeClock is a manually advanced clock for rate-limit and retransmit tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
