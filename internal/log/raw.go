package log

import (
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger records raw serial byte traffic. Transports call it on every read
// and write so a capture of a misbehaving session can be replayed against the
// frame parser.
type RawLogger interface {
	// Bytes logs one chunk of traffic. Direction is "tx" or "rx".
	Bytes(direction string, data []byte)
}

// NewRaw returns a RawLogger writing hex dumps to w. A nil writer yields a
// no-op logger.
func NewRaw(w io.Writer) RawLogger {
	if w == nil {
		return nopRaw{}
	}
	return &rawLogger{w: w}
}

type nopRaw struct{}

func (nopRaw) Bytes(string, []byte) {}

type rawLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (r *rawLogger) Bytes(direction string, data []byte) {
	if len(data) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "%s %s %s\n",
		time.Now().Format("15:04:05.000000"),
		direction,
		hex.EncodeToString(data))
}
