package protocol

import (
	"encoding/binary"
	"fmt"
)

// Frame layout: [^length][type][payload...][CRC32C, little-endian]. The length
// byte is the bitwise complement of the total frame length so that it can
// never be confused with the 0x00 resync filler.
const (
	// FrameOverhead is length byte + type byte + 4 CRC bytes.
	FrameOverhead = 6

	// FrameMin and FrameMax bound the total length of a valid frame.
	FrameMin = FrameOverhead
	FrameMax = 64

	// MaxPayload is the largest payload that fits in one frame.
	MaxPayload = FrameMax - FrameOverhead
)

// Message types understood by this layer.
const (
	MsgCommandDropped       = 0x06
	MsgAck                  = 0x10
	MsgAckRequest           = 0x11
	MsgAckI32               = 0x14
	MsgSeqnumReset          = 0x40
	MsgRequestStop          = 0x41
	MsgChangeControllerMode = 0x48
	MsgReadControllerMode   = 0x49
	MsgCommandFinished      = 0x4A
	MsgWiredState           = 0x90
	MsgOEMState             = 0xA0
)

// IsAck reports whether typ belongs to the acknowledgment family (0x10-0x1F).
func IsAck(typ byte) bool { return typ&0xF0 == 0x10 }

// IsInfo reports whether typ is in the informational range (0x20-0x3F), which
// this layer ignores.
func IsInfo(typ byte) bool { return typ >= 0x20 && typ < 0x40 }

// EncodeFrame builds a complete wire frame for the given message type and
// payload.
func EncodeFrame(typ byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("payload too large: %d > %d", len(payload), MaxPayload)
	}
	total := len(payload) + FrameOverhead
	frame := make([]byte, 0, total)
	frame = append(frame, ^byte(total), typ)
	frame = append(frame, payload...)
	crc := CRC32C(frame)
	frame = binary.LittleEndian.AppendUint32(frame, crc)
	return frame, nil
}

// Message is one parsed frame, CRC already verified and stripped.
type Message struct {
	Type    byte
	Payload []byte
}

// Seq returns the sequence number embedded as the first four payload bytes,
// if present.
func (m Message) Seq() (uint32, bool) {
	if len(m.Payload) < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(m.Payload[:4]), true
}

// Parser is an incremental frame parser over an unreliable byte stream. Feed
// it raw bytes as they arrive and call Next until it reports no complete
// frame. Garbage recovery is single-byte: on a bad length or CRC mismatch the
// parser discards one byte and tries again, so valid frames interleaved with
// noise are still found.
type Parser struct {
	buf []byte
}

// Feed appends newly received bytes to the parse buffer.
func (p *Parser) Feed(data []byte) {
	p.buf = append(p.buf, data...)
}

// Buffered returns the number of bytes waiting to be parsed.
func (p *Parser) Buffered() int { return len(p.buf) }

// Reset drops all buffered bytes.
func (p *Parser) Reset() { p.buf = p.buf[:0] }

// Next attempts to extract one frame from the buffer. It returns false when
// more bytes are needed.
func (p *Parser) Next() (Message, bool) {
	for {
		// Zero bytes are resync filler.
		for len(p.buf) > 0 && p.buf[0] == 0x00 {
			p.buf = p.buf[1:]
		}
		if len(p.buf) == 0 {
			return Message{}, false
		}

		total := int(^p.buf[0])
		if total < FrameMin || total > FrameMax {
			// The length byte itself is noise.
			p.buf = p.buf[1:]
			continue
		}
		if len(p.buf) < total {
			return Message{}, false
		}

		want := binary.LittleEndian.Uint32(p.buf[total-4 : total])
		if CRC32C(p.buf[:total-4]) != want {
			p.buf = p.buf[1:]
			continue
		}

		payload := make([]byte, total-FrameOverhead)
		copy(payload, p.buf[2:total-4])
		msg := Message{Type: p.buf[1], Payload: payload}
		p.buf = p.buf[total:]
		return msg, true
	}
}
