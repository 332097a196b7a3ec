package controller_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padlink/controller"
)

func TestNativeFrameLayout(t *testing.T) {
	cases := []struct {
		name  string
		state controller.State
		want  [8]byte
	}{
		{
			name:  "neutral",
			state: controller.Neutral(),
			want:  [8]byte{0x00, 0x00, 0x08, 0x80, 0x80, 0x80, 0x80, 0x00},
		},
		{
			name: "a button",
			state: controller.State{
				Buttons: controller.ButtonA,
				DPad:    controller.DPadCenter,
				LX:      0x80, LY: 0x80, RX: 0x80, RY: 0x80,
			},
			want: [8]byte{0x00, 0x04, 0x08, 0x80, 0x80, 0x80, 0x80, 0x00},
		},
		{
			name: "high group buttons",
			state: controller.State{
				Buttons: controller.ButtonHome | controller.ButtonPlus,
				DPad:    controller.DPadUp,
				LX:      0x00, LY: 0xFF, RX: 0x12, RY: 0x34,
			},
			want: [8]byte{0x12, 0x00, 0x00, 0x00, 0xFF, 0x12, 0x34, 0x00},
		},
		{
			name: "all buttons",
			state: controller.State{
				Buttons: controller.ButtonMask,
				DPad:    controller.DPadDownLeft,
				LX:      0x01, LY: 0x02, RX: 0x03, RY: 0x04,
			},
			want: [8]byte{0x3F, 0xFF, 0x05, 0x01, 0x02, 0x03, 0x04, 0x00},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.state.NativeFrame())
		})
	}
}

func TestNativeFrameRoundTrip(t *testing.T) {
	buttonSets := []controller.Button{
		0,
		controller.ButtonA,
		controller.ButtonY | controller.ButtonZL,
		controller.ButtonHome | controller.ButtonCapture,
		controller.ButtonMask,
	}
	axes := []uint8{0x00, 0x01, 0x7F, 0x80, 0xFE, 0xFF}

	for _, buttons := range buttonSets {
		for dpad := controller.DPadUp; dpad <= controller.DPadCenter; dpad++ {
			for _, ax := range axes {
				st := controller.State{
					Buttons: buttons,
					DPad:    dpad,
					LX:      ax,
					LY:      255 - ax,
					RX:      ax ^ 0x55,
					RY:      ax,
				}
				frame := st.NativeFrame()
				got, err := controller.StateFromNativeFrame(frame[:])
				require.NoError(t, err)
				assert.Equal(t, st, got)
			}
		}
	}
}

func TestNativeFrameRoundTripAllButtons(t *testing.T) {
	// Every single-button frame survives the trip.
	for bit := 0; bit < 14; bit++ {
		st := controller.Neutral()
		st.Buttons = 1 << bit
		frame := st.NativeFrame()
		got, err := controller.StateFromNativeFrame(frame[:])
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}
}

func TestNativeFrameReservedBitsDropped(t *testing.T) {
	// Bits 14 and 15 of the button group are reserved; decoding masks them.
	frame := []byte{0xFF, 0xFF, 0x08, 0x80, 0x80, 0x80, 0x80, 0x00}
	st, err := controller.StateFromNativeFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, controller.ButtonMask, st.Buttons)
}

func TestStateFromNativeFrameShort(t *testing.T) {
	_, err := controller.StateFromNativeFrame([]byte{0x00, 0x01, 0x02})
	assert.Error(t, err)
}
