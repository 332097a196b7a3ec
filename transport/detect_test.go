package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectNamedNative(t *testing.T) {
	link := &fakeLink{}
	nativeEchoResponder(link, goodEchoes)

	tr, err := Connect(context.Background(), link, FirmwareNative, wirelessProfile(), Options{})
	require.NoError(t, err)
	assert.IsType(t, &Native{}, tr)
}

func TestConnectAutoDetectsPABotBase(t *testing.T) {
	link := &fakeLink{}
	sim := &fwSim{link: link}
	link.onWrite = func(p []byte) {
		// Native probe bytes get a wrong echo so that attempt fails fast;
		// everything else is PABotBase framing.
		if len(p) == 1 {
			link.push([]byte{0x00})
			return
		}
		sim.handle(p)
	}

	tr, err := Connect(context.Background(), link, FirmwareAuto, wirelessProfile(), Options{})
	require.NoError(t, err)
	assert.IsType(t, &PABotBase{}, tr)
}

func TestConnectAutoDetectsNative(t *testing.T) {
	link := &fakeLink{}
	nativeEchoResponder(link, goodEchoes)

	tr, err := Connect(context.Background(), link, FirmwareAuto, wirelessProfile(), Options{})
	require.NoError(t, err)
	assert.IsType(t, &Native{}, tr)
}

func TestConnectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Connect(ctx, &fakeLink{}, FirmwareNative, wirelessProfile(), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConnectUnknownFirmware(t *testing.T) {
	_, err := Connect(context.Background(), &fakeLink{}, FirmwareType("quantum"), wirelessProfile(), Options{})
	assert.Error(t, err)
}
