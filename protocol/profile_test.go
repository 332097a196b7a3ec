package protocol_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padlink/protocol"
)

func TestControllerTypeClassification(t *testing.T) {
	assert.False(t, protocol.WiredProController.Wireless())
	assert.True(t, protocol.WirelessProController.Wireless())
	assert.True(t, protocol.LeftJoyCon.Wireless())
	assert.True(t, protocol.RightJoyCon.Wireless())
}

func TestProfileForCadence(t *testing.T) {
	wired := protocol.ProfileFor(protocol.WiredProController)
	assert.False(t, wired.OEM)
	assert.Equal(t, 8*time.Millisecond, wired.SendInterval)
	assert.Equal(t, 24*time.Millisecond, wired.CommandDuration())

	wireless := protocol.ProfileFor(protocol.WirelessProController)
	assert.True(t, wireless.OEM)
	assert.Equal(t, 15*time.Millisecond, wireless.SendInterval)
	assert.Equal(t, 45*time.Millisecond, wireless.CommandDuration())
}

func TestDefaultProfilesLookup(t *testing.T) {
	table := protocol.DefaultProfiles()
	p, err := table.Lookup("wireless-pro")
	require.NoError(t, err)
	assert.Equal(t, protocol.WirelessProController, p.Type)

	_, err = table.Lookup("gamecube")
	assert.Error(t, err)
}

func TestLoadProfilesOverride(t *testing.T) {
	src := `
- name: custom
  id: 49
  send_interval_ms: 10
- name: wireless-pro
  id: 17
  oem: false
`
	table, err := protocol.LoadProfiles(strings.NewReader(src))
	require.NoError(t, err)

	custom, err := table.Lookup("custom")
	require.NoError(t, err)
	assert.Equal(t, protocol.ControllerType(49), custom.Type)
	assert.True(t, custom.OEM) // id 0x31 has the wireless class bit set
	assert.Equal(t, 10*time.Millisecond, custom.SendInterval)

	// Built-in entry overridden in place.
	wp, err := table.Lookup("wireless-pro")
	require.NoError(t, err)
	assert.False(t, wp.OEM)

	// Untouched built-ins survive.
	_, err = table.Lookup("wired-pro")
	assert.NoError(t, err)
}

func TestLoadProfilesRejectsNamelessRow(t *testing.T) {
	_, err := protocol.LoadProfiles(strings.NewReader("- id: 7\n"))
	assert.Error(t, err)
}
