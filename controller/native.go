package controller

import "io"

// NativeFrameSize is the size of the native-protocol data frame, excluding the
// trailing CRC8 byte added by the transport.
const NativeFrameSize = 8

// NativeFrame encodes the state into the native firmware's 8-byte frame
// layout: button high group, button low group, D-pad, then the four axes. The
// last byte is reserved and always zero.
func (s State) NativeFrame() [NativeFrameSize]byte {
	return [NativeFrameSize]byte{
		byte(s.Buttons >> 8),
		byte(s.Buttons),
		byte(s.DPad),
		s.LX,
		s.LY,
		s.RX,
		s.RY,
		0x00,
	}
}

// StateFromNativeFrame decodes an 8-byte native frame back into a State. This
// is the inverse of NativeFrame and is used to replay recorded frames.
func StateFromNativeFrame(b []byte) (State, error) {
	if len(b) < NativeFrameSize {
		return State{}, io.ErrUnexpectedEOF
	}
	return State{
		Buttons: (Button(b[0])<<8 | Button(b[1])) & ButtonMask,
		DPad:    DPad(b[2]),
		LX:      b[3],
		LY:      b[4],
		RX:      b[5],
		RY:      b[6],
	}, nil
}
