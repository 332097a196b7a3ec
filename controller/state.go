// Package controller defines the protocol-neutral controller state record and
// its wire encodings.
//
// A State is a snapshot of one input tick: 16 button flags, a D-pad direction
// and four 8-bit analog axes. It carries no protocol framing; the transport
// layer picks one of the encodings in this package depending on which firmware
// protocol is active.
package controller

import "strings"

// Button is a bitmask of the 16 button flags. Bits 14 and 15 are reserved and
// always zero.
type Button uint16

const (
	ButtonY Button = 1 << iota
	ButtonB
	ButtonA
	ButtonX
	ButtonL
	ButtonR
	ButtonZL
	ButtonZR
	ButtonMinus
	ButtonPlus
	ButtonLClick
	ButtonRClick
	ButtonHome
	ButtonCapture
)

// ButtonMask covers every defined button bit.
const ButtonMask Button = 0x3FFF

var buttonNames = []struct {
	b    Button
	name string
}{
	{ButtonY, "Y"},
	{ButtonB, "B"},
	{ButtonA, "A"},
	{ButtonX, "X"},
	{ButtonL, "L"},
	{ButtonR, "R"},
	{ButtonZL, "ZL"},
	{ButtonZR, "ZR"},
	{ButtonMinus, "-"},
	{ButtonPlus, "+"},
	{ButtonLClick, "LStick"},
	{ButtonRClick, "RStick"},
	{ButtonHome, "Home"},
	{ButtonCapture, "Capture"},
}

func (b Button) String() string {
	if b == 0 {
		return "none"
	}
	var parts []string
	for _, bn := range buttonNames {
		if b&bn.b != 0 {
			parts = append(parts, bn.name)
		}
	}
	return strings.Join(parts, "+")
}

// DPad is the hat-switch direction: eight compass directions plus Center.
type DPad uint8

const (
	DPadUp DPad = iota
	DPadUpRight
	DPadRight
	DPadDownRight
	DPadDown
	DPadDownLeft
	DPadLeft
	DPadUpLeft
	DPadCenter
)

var dpadNames = [...]string{
	"up", "up-right", "right", "down-right",
	"down", "down-left", "left", "up-left",
	"center",
}

func (d DPad) String() string {
	if int(d) < len(dpadNames) {
		return dpadNames[d]
	}
	return "invalid"
}

// AxisCenter is the resting value of every analog axis.
const AxisCenter uint8 = 0x80

// State is one tick of controller input.
type State struct {
	Buttons Button
	DPad    DPad

	LX uint8
	LY uint8
	RX uint8
	RY uint8
}

// Neutral returns the all-idle state: no buttons, D-pad centered, sticks at
// rest.
func Neutral() State {
	return State{
		DPad: DPadCenter,
		LX:   AxisCenter,
		LY:   AxisCenter,
		RX:   AxisCenter,
		RY:   AxisCenter,
	}
}

func (s State) String() string {
	var b strings.Builder
	b.WriteString("buttons=")
	b.WriteString(s.Buttons.String())
	b.WriteString(" dpad=")
	b.WriteString(s.DPad.String())
	b.WriteString(" sticks=")
	for i, v := range [...]uint8{s.LX, s.LY, s.RX, s.RY} {
		if i > 0 {
			b.WriteByte(',')
		}
		const hexdigits = "0123456789abcdef"
		b.WriteByte(hexdigits[v>>4])
		b.WriteByte(hexdigits[v&0xF])
	}
	return b.String()
}
