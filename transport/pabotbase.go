package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"padlink/controller"
	"padlink/internal/log"
	"padlink/protocol"
)

const (
	// maxInFlight bounds the unacknowledged command queue. The firmware
	// buffers exactly this many commands; sending past it would only get
	// commands dropped, so SendState skips the tick instead.
	maxInFlight = 4

	// retransmitAfter is how long a command may stay unacknowledged before
	// its exact original bytes are sent again.
	retransmitAfter = 100 * time.Millisecond

	handshakeAckTimeout = 2 * time.Second
	handshakePoll       = 2 * time.Millisecond

	// readChunk is the per-Update read buffer size.
	readChunk = 256
)

// inflight is one unacknowledged command: the exact bytes last written for it
// and when they were written.
type inflight struct {
	frame  []byte
	sentAt time.Time
}

// PABotBase implements the CRC32C-framed sequenced protocol: monotonic
// sequence numbers, a bounded in-flight queue with timeout retransmission,
// rate-limited state sends, and a multi-step handshake that verifies the
// firmware's controller mode.
type PABotBase struct {
	link    Link
	opts    Options
	profile protocol.Profile

	parser    protocol.Parser
	seq       uint32
	inFlight  map[uint32]*inflight
	lastSend  time.Time
	connected bool
}

// NewPABotBase builds a PABotBase transport over link, emulating the
// controller described by profile.
func NewPABotBase(link Link, profile protocol.Profile, opts Options) *PABotBase {
	opts.fill()
	return &PABotBase{
		link:     link,
		opts:     opts,
		profile:  profile,
		seq:      1,
		inFlight: make(map[uint32]*inflight),
	}
}

// Connect resynchronizes the byte stream and runs the handshake: sequence
// number reset, controller mode change, mode readback verification, then a
// stop-all to clear commands left over from a previous session. Every step
// must be acknowledged within the handshake timeout.
func (t *PABotBase) Connect(ctx context.Context) error {
	t.connected = false
	t.parser.Reset()
	t.inFlight = make(map[uint32]*inflight)
	t.lastSend = time.Time{}

	if err := t.link.ResetInput(); err != nil {
		return fmt.Errorf("pabotbase: reset input: %w", err)
	}

	// Flood the line with a full frame's worth of zero filler. Whatever the
	// firmware was mid-parsing fails its CRC and the filler is skipped, so
	// both ends are byte-aligned again.
	filler := make([]byte, protocol.FrameMax)
	t.opts.Raw.Bytes("tx", filler)
	if _, err := t.link.Write(filler); err != nil {
		return fmt.Errorf("pabotbase: resync flood: %w", err)
	}

	// Step 1: reset both sides' sequence numbers. Seqnum 0 is the reserved
	// reset sentinel; real sequence numbers start at 1 afterwards.
	t.seq = 0
	if _, err := t.transact(ctx, protocol.MsgSeqnumReset, nil); err != nil {
		return fmt.Errorf("pabotbase: seqnum reset: %w", err)
	}

	// Step 2: select the controller personality.
	var mode [4]byte
	binary.LittleEndian.PutUint32(mode[:], uint32(t.profile.Type))
	if _, err := t.transact(ctx, protocol.MsgChangeControllerMode, mode[:]); err != nil {
		return fmt.Errorf("pabotbase: change controller mode: %w", err)
	}

	// Step 3: read the mode back; the firmware must report exactly what was
	// requested.
	ack, err := t.transact(ctx, protocol.MsgReadControllerMode, nil)
	if err != nil {
		return fmt.Errorf("pabotbase: read controller mode: %w", err)
	}
	if ack.Type != protocol.MsgAckI32 || len(ack.Payload) < 8 {
		return fmt.Errorf("pabotbase: read controller mode: unexpected ack type 0x%02X", ack.Type)
	}
	got := binary.LittleEndian.Uint32(ack.Payload[4:8])
	if got != uint32(t.profile.Type) {
		return fmt.Errorf("pabotbase: controller mode mismatch: firmware reports 0x%02X, want 0x%02X",
			got, uint32(t.profile.Type))
	}

	// Step 4: clear any command still queued from a previous session.
	if _, err := t.transact(ctx, protocol.MsgRequestStop, nil); err != nil {
		return fmt.Errorf("pabotbase: request stop: %w", err)
	}

	t.connected = true
	t.opts.notify("pabotbase protocol ready, controller %s", t.profile.Type)
	t.opts.Logger.Info("pabotbase protocol ready",
		"controller", t.profile.Type.String(),
		"send_interval", t.profile.SendInterval)
	return nil
}

// transact sends one handshake message carrying the current sequence number
// plus extra payload bytes, then waits for its acknowledgment.
func (t *PABotBase) transact(ctx context.Context, typ byte, extra []byte) (protocol.Message, error) {
	seq := t.seq
	payload := make([]byte, 4, 4+len(extra))
	binary.LittleEndian.PutUint32(payload, seq)
	payload = append(payload, extra...)
	frame, err := protocol.EncodeFrame(typ, payload)
	if err != nil {
		return protocol.Message{}, err
	}
	t.opts.Raw.Bytes("tx", frame)
	if _, err := t.link.Write(frame); err != nil {
		return protocol.Message{}, fmt.Errorf("write: %w", err)
	}
	t.seq++
	return t.awaitAck(ctx, seq)
}

// awaitAck polls the link until a message in the ack family (0x10-0x1F)
// arrives for seq. Asynchronous COMMAND_FINISHED messages observed while
// waiting are acknowledged inline and do not satisfy the wait.
func (t *PABotBase) awaitAck(ctx context.Context, seq uint32) (protocol.Message, error) {
	deadline := t.opts.Now().Add(handshakeAckTimeout)
	for {
		if err := ctx.Err(); err != nil {
			return protocol.Message{}, err
		}
		if err := t.fill(); err != nil {
			return protocol.Message{}, err
		}
		for {
			msg, ok := t.parser.Next()
			if !ok {
				break
			}
			switch {
			case protocol.IsAck(msg.Type):
				if got, ok := msg.Seq(); ok && got == seq {
					return msg, nil
				}
				t.opts.Logger.Debug("stale ack during handshake", "type", msg.Type)
			case msg.Type == protocol.MsgCommandFinished:
				t.handleCommandFinished(msg)
			default:
				t.opts.Logger.Debug("unexpected message during handshake", "type", msg.Type)
			}
		}
		if t.opts.Now().After(deadline) {
			return protocol.Message{}, fmt.Errorf("timed out waiting for ack of seqnum %d", seq)
		}
		time.Sleep(handshakePoll)
	}
}

// fill reads whatever the link has buffered into the parser.
func (t *PABotBase) fill() error {
	var buf [readChunk]byte
	n, err := t.link.Read(buf[:])
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if n > 0 {
		t.opts.Raw.Bytes("rx", buf[:n])
		t.parser.Feed(buf[:n])
	}
	return nil
}

// SendState queues one state command. It is a no-op while the send interval
// has not elapsed or while four commands are already in flight; backpressure
// skips the tick rather than queueing.
func (t *PABotBase) SendState(st controller.State) error {
	if !t.connected {
		return ErrNotConnected
	}
	now := t.opts.Now()
	if !t.lastSend.IsZero() && now.Sub(t.lastSend) < t.profile.SendInterval {
		return nil
	}
	if len(t.inFlight) >= maxInFlight {
		return nil
	}

	seq := t.seq
	t.seq++

	var typ byte
	var body []byte
	if t.profile.OEM {
		typ = protocol.MsgOEMState
		report := st.OEMReport()
		body = report[:]
	} else {
		typ = protocol.MsgWiredState
		frame := st.NativeFrame()
		body = frame[:7]
	}

	payload := make([]byte, 6, 6+len(body))
	binary.LittleEndian.PutUint32(payload[0:4], seq)
	binary.LittleEndian.PutUint16(payload[4:6], uint16(t.profile.CommandDuration().Milliseconds()))
	payload = append(payload, body...)

	frame, err := protocol.EncodeFrame(typ, payload)
	if err != nil {
		return fmt.Errorf("pabotbase: encode state: %w", err)
	}
	t.opts.Raw.Bytes("tx", frame)
	if _, err := t.link.Write(frame); err != nil {
		t.opts.notify("pabotbase send failed: %v", err)
		return fmt.Errorf("pabotbase: send state: %w", err)
	}
	t.lastSend = now
	t.inFlight[seq] = &inflight{frame: frame, sentAt: now}
	return nil
}

// Update drains buffered bytes, dispatches every complete frame, then
// retransmits at most one overdue in-flight command.
func (t *PABotBase) Update() error {
	if err := t.fill(); err != nil {
		return fmt.Errorf("pabotbase: %w", err)
	}
	for {
		msg, ok := t.parser.Next()
		if !ok {
			break
		}
		t.dispatch(msg)
	}
	t.retransmitOverdue()
	return nil
}

func (t *PABotBase) dispatch(msg protocol.Message) {
	switch {
	case protocol.IsAck(msg.Type):
		// Informational in steady state.
		t.opts.Logger.Log(context.Background(), log.LevelTrace, "ack", "type", msg.Type)
	case msg.Type == protocol.MsgCommandFinished:
		t.handleCommandFinished(msg)
	case msg.Type == protocol.MsgCommandDropped:
		if seq, ok := msg.Seq(); ok {
			delete(t.inFlight, seq)
			t.opts.Logger.Debug("command dropped by firmware", "seqnum", seq)
		}
	case protocol.IsInfo(msg.Type):
		// Informational range, nothing to do.
	default:
		t.opts.Logger.Warn("unexpected message", "type", fmt.Sprintf("0x%02X", msg.Type))
	}
}

// handleCommandFinished acknowledges a COMMAND_FINISHED message and retires
// the finished command from the in-flight queue when the payload names it.
func (t *PABotBase) handleCommandFinished(msg protocol.Message) {
	if seq, ok := msg.Seq(); ok {
		var payload [4]byte
		binary.LittleEndian.PutUint32(payload[:], seq)
		frame, err := protocol.EncodeFrame(protocol.MsgAckRequest, payload[:])
		if err == nil {
			t.opts.Raw.Bytes("tx", frame)
			if _, err := t.link.Write(frame); err != nil {
				t.opts.notify("pabotbase ack write failed: %v", err)
			}
		}
	}
	if len(msg.Payload) >= 8 {
		finished := binary.LittleEndian.Uint32(msg.Payload[4:8])
		delete(t.inFlight, finished)
	}
}

// retransmitOverdue resends the oldest command past the retransmit threshold.
// At most one per Update call, bounding the work done in a single tick.
func (t *PABotBase) retransmitOverdue() {
	now := t.opts.Now()
	var pickSeq uint32
	var pick *inflight
	for seq, e := range t.inFlight {
		if now.Sub(e.sentAt) <= retransmitAfter {
			continue
		}
		if pick == nil || e.sentAt.Before(pick.sentAt) {
			pickSeq, pick = seq, e
		}
	}
	if pick == nil {
		return
	}
	t.opts.Raw.Bytes("tx", pick.frame)
	if _, err := t.link.Write(pick.frame); err != nil {
		t.opts.notify("pabotbase retransmit failed: %v", err)
		return
	}
	pick.sentAt = now
	t.opts.Logger.Debug("retransmitted command", "seqnum", pickSeq)
}

// Close marks the transport disconnected and drops all in-flight tracking.
func (t *PABotBase) Close() error {
	t.connected = false
	t.inFlight = make(map[uint32]*inflight)
	t.parser.Reset()
	return nil
}
