package protocol

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ControllerType identifies which controller personality the firmware should
// emulate. Bit 4 marks the wireless class, which uses the OEM state payload
// and the slower wireless send cadence.
type ControllerType uint32

const (
	ControllerNone        ControllerType = 0x00
	WiredProController    ControllerType = 0x01
	WirelessProController ControllerType = 0x11
	LeftJoyCon            ControllerType = 0x12
	RightJoyCon           ControllerType = 0x13
)

const wirelessClassBit ControllerType = 0x10

// Wireless reports whether the identifier belongs to the wireless class.
func (t ControllerType) Wireless() bool { return t&wirelessClassBit != 0 }

func (t ControllerType) String() string {
	for name, ct := range builtinProfiles {
		if ct == t {
			return name
		}
	}
	return fmt.Sprintf("controller(0x%02X)", uint32(t))
}

// Send cadence per class. The command duration is three times the send
// interval so that a freshly queued command's validity window always overlaps
// the next command being queued; the firmware never runs out of input between
// ticks.
const (
	wiredSendInterval    = 8 * time.Millisecond
	wirelessSendInterval = 15 * time.Millisecond
	durationMultiplier   = 3
)

// Profile describes how state is delivered for one controller identifier.
type Profile struct {
	Type ControllerType

	// OEM selects the 10-byte OEM state payload instead of the 7-field
	// wired payload.
	OEM bool

	// SendInterval is the minimum spacing between state messages.
	SendInterval time.Duration
}

// CommandDuration is the validity window stamped on each state command.
func (p Profile) CommandDuration() time.Duration {
	return p.SendInterval * durationMultiplier
}

// ProfileFor derives the delivery profile from the identifier's class bits.
func ProfileFor(t ControllerType) Profile {
	p := Profile{Type: t, SendInterval: wiredSendInterval}
	if t.Wireless() {
		p.OEM = true
		p.SendInterval = wirelessSendInterval
	}
	return p
}

var builtinProfiles = map[string]ControllerType{
	"wired-pro":    WiredProController,
	"wireless-pro": WirelessProController,
	"joycon-left":  LeftJoyCon,
	"joycon-right": RightJoyCon,
}

// profileEntry is one row of a user-supplied profile table. The identifier to
// payload-format mapping is firmware configuration, not something the host can
// infer, so unusual firmware builds can override it from a YAML file.
type profileEntry struct {
	Name           string `yaml:"name"`
	ID             uint32 `yaml:"id"`
	OEM            *bool  `yaml:"oem,omitempty"`
	SendIntervalMS int    `yaml:"send_interval_ms,omitempty"`
}

// ProfileTable resolves controller names to delivery profiles.
type ProfileTable struct {
	entries map[string]Profile
}

// DefaultProfiles returns the built-in identifier table.
func DefaultProfiles() *ProfileTable {
	t := &ProfileTable{entries: make(map[string]Profile, len(builtinProfiles))}
	for name, ct := range builtinProfiles {
		t.entries[name] = ProfileFor(ct)
	}
	return t
}

// LoadProfiles reads a YAML profile table and merges it over the built-in
// entries. A row may override the payload format and send interval; anything
// left unset is derived from the identifier's class bits.
func LoadProfiles(r io.Reader) (*ProfileTable, error) {
	var rows []profileEntry
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode profile table: %w", err)
	}
	t := DefaultProfiles()
	for _, row := range rows {
		if row.Name == "" {
			return nil, fmt.Errorf("profile row with id 0x%02X has no name", row.ID)
		}
		p := ProfileFor(ControllerType(row.ID))
		if row.OEM != nil {
			p.OEM = *row.OEM
		}
		if row.SendIntervalMS > 0 {
			p.SendInterval = time.Duration(row.SendIntervalMS) * time.Millisecond
		}
		t.entries[row.Name] = p
	}
	return t, nil
}

// LoadProfilesFile is LoadProfiles over a file path.
func LoadProfilesFile(path string) (*ProfileTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadProfiles(f)
}

// Lookup resolves a controller name.
func (t *ProfileTable) Lookup(name string) (Profile, error) {
	p, ok := t.entries[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown controller type %q", name)
	}
	return p, nil
}

// Names lists the known controller names.
func (t *ProfileTable) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	return names
}
