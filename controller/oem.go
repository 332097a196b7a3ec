package controller

// OEMReportSize is the size of the OEM controller-state payload used for
// wireless-class controller identifiers.
const OEMReportSize = 10

// OEM button bitfields. The right group and left group follow the console's
// own report layout; the shared group holds the system buttons.
const (
	oemRightY  = 1 << 0
	oemRightX  = 1 << 1
	oemRightB  = 1 << 2
	oemRightA  = 1 << 3
	oemRightR  = 1 << 6
	oemRightZR = 1 << 7

	oemSharedMinus   = 1 << 0
	oemSharedPlus    = 1 << 1
	oemSharedRClick  = 1 << 2
	oemSharedLClick  = 1 << 3
	oemSharedHome    = 1 << 4
	oemSharedCapture = 1 << 5

	oemLeftDown  = 1 << 0
	oemLeftUp    = 1 << 1
	oemLeftRight = 1 << 2
	oemLeftLeft  = 1 << 3
	oemLeftL     = 1 << 6
	oemLeftZL    = 1 << 7
)

// oemDPadBits maps each of the nine D-pad values onto the left group's four
// direction bits.
var oemDPadBits = [9]byte{
	DPadUp:        oemLeftUp,
	DPadUpRight:   oemLeftUp | oemLeftRight,
	DPadRight:     oemLeftRight,
	DPadDownRight: oemLeftDown | oemLeftRight,
	DPadDown:      oemLeftDown,
	DPadDownLeft:  oemLeftDown | oemLeftLeft,
	DPadLeft:      oemLeftLeft,
	DPadUpLeft:    oemLeftUp | oemLeftLeft,
	DPadCenter:    0,
}

// OEMReport encodes the state into the 10-byte OEM payload: three button
// bitfields, two 12-bit-packed analog sticks and a trailing vibration byte
// (always zero). The OEM convention inverts the Y axes relative to State, so
// both stick Y values are flipped before packing. This encoding is write-only;
// there is no inverse.
func (s State) OEMReport() [OEMReportSize]byte {
	var right, shared, left byte

	set := func(dst *byte, b Button, bit byte) {
		if s.Buttons&b != 0 {
			*dst |= bit
		}
	}
	set(&right, ButtonY, oemRightY)
	set(&right, ButtonX, oemRightX)
	set(&right, ButtonB, oemRightB)
	set(&right, ButtonA, oemRightA)
	set(&right, ButtonR, oemRightR)
	set(&right, ButtonZR, oemRightZR)

	set(&shared, ButtonMinus, oemSharedMinus)
	set(&shared, ButtonPlus, oemSharedPlus)
	set(&shared, ButtonRClick, oemSharedRClick)
	set(&shared, ButtonLClick, oemSharedLClick)
	set(&shared, ButtonHome, oemSharedHome)
	set(&shared, ButtonCapture, oemSharedCapture)

	set(&left, ButtonL, oemLeftL)
	set(&left, ButtonZL, oemLeftZL)
	if int(s.DPad) < len(oemDPadBits) {
		left |= oemDPadBits[s.DPad]
	}

	l := packStick(s.LX, s.LY)
	r := packStick(s.RX, s.RY)

	return [OEMReportSize]byte{
		right, shared, left,
		l[0], l[1], l[2],
		r[0], r[1], r[2],
		0x00, // vibration
	}
}

// packStick widens both 8-bit axes to 12 bits by nibble duplication, flips the
// Y polarity, and packs the pair into 3 bytes.
func packStick(x, y uint8) [3]byte {
	y = 0xFF - y
	x12 := uint16(x)<<4 | uint16(x)>>4
	y12 := uint16(y)<<4 | uint16(y)>>4
	return [3]byte{
		byte(x12),
		byte(x12>>8) | byte(y12&0x0F)<<4,
		byte(y12 >> 4),
	}
}
