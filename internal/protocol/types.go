package protocol

import "errors"

// Action identifies a zone operation a codec can format.
type Action int

const (
	ActionPower Action = iota
	ActionMute
	ActionVolume
	ActionBass
	ActionTreble
	ActionBalance
	ActionSource
)

// String returns a human-readable action name for logging.
func (a Action) String() string {
	switch a {
	case ActionPower:
		return "power"
	case ActionMute:
		return "mute"
	case ActionVolume:
		return "volume"
	case ActionBass:
		return "bass"
	case ActionTreble:
		return "treble"
	case ActionBalance:
		return "balance"
	case ActionSource:
		return "source"
	default:
		return "unknown"
	}
}

// Command is a single zone operation in hardware terms. Value carries the
// raw step code (volume, bass, treble, balance) or source index; On carries
// the switch state for power and mute.
type Command struct {
	Zone   int
	Action Action
	On     bool
	Value  int
}

// ZoneStatus is the decoded state of one zone as reported by the
// amplifier. Level fields are raw hardware step codes.
type ZoneStatus struct {
	Zone            int  `json:"zone"`
	PA              bool `json:"pa"`
	Power           bool `json:"power"`
	Mute            bool `json:"mute"`
	DoNotDisturb    bool `json:"do_not_disturb"`
	Volume          int  `json:"volume"`
	Treble          int  `json:"treble"`
	Bass            int  `json:"bass"`
	Balance         int  `json:"balance"`
	Source          int  `json:"source"`
	KeypadConnected bool `json:"keypad_connected"`
}

// Codec translates between the engine's command model and one amplifier
// family's serial grammar.
type Codec interface {
	// Name returns the canonical protocol identifier.
	Name() string

	// FormatCommand renders a zone command as wire bytes. Returns
	// ErrUnsupportedAction when the family has no such command and
	// ErrInvalidCommand when a field cannot be represented.
	FormatCommand(cmd Command) ([]byte, error)

	// FormatQuery renders a zone status request.
	FormatQuery(zone int) ([]byte, error)

	// ParseStatus decodes a status response. Returns ErrMalformedResponse
	// when the payload does not match the response grammar.
	ParseStatus(raw []byte) (*ZoneStatus, error)

	// ResponseTerminator returns the byte sequence that ends a response,
	// used by the transport to frame reads.
	ResponseTerminator() []byte
}

// RestoreZone renders the command sequence that returns a zone to a
// previously captured state: power, mute, volume, treble, bass, balance,
// then source. Actions the family does not support are skipped.
func RestoreZone(c Codec, st *ZoneStatus) ([][]byte, error) {
	cmds := []Command{
		{Zone: st.Zone, Action: ActionPower, On: st.Power},
		{Zone: st.Zone, Action: ActionMute, On: st.Mute},
		{Zone: st.Zone, Action: ActionVolume, Value: st.Volume},
		{Zone: st.Zone, Action: ActionTreble, Value: st.Treble},
		{Zone: st.Zone, Action: ActionBass, Value: st.Bass},
		{Zone: st.Zone, Action: ActionBalance, Value: st.Balance},
		{Zone: st.Zone, Action: ActionSource, Value: st.Source},
	}

	frames := make([][]byte, 0, len(cmds))
	for _, cmd := range cmds {
		raw, err := c.FormatCommand(cmd)
		if err != nil {
			if errors.Is(err, ErrUnsupportedAction) {
				continue
			}
			return nil, err
		}
		frames = append(frames, raw)
	}
	return frames, nil
}
