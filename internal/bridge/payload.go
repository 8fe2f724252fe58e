package bridge

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/openav/multizone-core/internal/level"
	"github.com/openav/multizone-core/internal/profile"
	"github.com/openav/multizone-core/internal/protocol"
)

// commandEnvelope is the JSON shape accepted on zone command topics.
//
// Level actions (volume, bass, treble) take either "db" or "mute": true.
// Balance takes at most one attenuated side via "left_db"/"right_db" or
// the corresponding mute flag. Switch actions (power, mute) take "on".
type commandEnvelope struct {
	Action    string   `json:"action"`
	On        *bool    `json:"on,omitempty"`
	DB        *float64 `json:"db,omitempty"`
	Mute      bool     `json:"mute,omitempty"`
	Source    *int     `json:"source,omitempty"`
	LeftDB    *float64 `json:"left_db,omitempty"`
	RightDB   *float64 `json:"right_db,omitempty"`
	LeftMute  bool     `json:"left_mute,omitempty"`
	RightMute bool     `json:"right_mute,omitempty"`
}

// levelValue extracts the level for a volume/bass/treble command.
func (e *commandEnvelope) levelValue() (level.Value, error) {
	if e.Mute {
		return level.Mute(), nil
	}
	if e.DB == nil {
		return level.Value{}, fmt.Errorf("%w: %q requires db or mute", ErrBadPayload, e.Action)
	}
	return level.DB(*e.DB), nil
}

// balancePair extracts the channel pair for a balance command. An omitted
// side is taken as 0 dB (unattenuated).
func (e *commandEnvelope) balancePair() (level.Pair, error) {
	pair := level.Pair{Left: level.DB(0), Right: level.DB(0)}

	switch {
	case e.LeftMute:
		pair.Left = level.Mute()
	case e.LeftDB != nil:
		pair.Left = level.DB(*e.LeftDB)
	}
	switch {
	case e.RightMute:
		pair.Right = level.Mute()
	case e.RightDB != nil:
		pair.Right = level.DB(*e.RightDB)
	}

	if !pair.Left.IsMute() && !pair.Right.IsMute() &&
		pair.Left.Decibels() != 0 && pair.Right.Decibels() != 0 {
		return level.Pair{}, fmt.Errorf("%w: balance attenuates at most one channel", ErrBadPayload)
	}
	return pair, nil
}

func parseCommand(payload []byte) (*commandEnvelope, error) {
	var env commandEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	if env.Action == "" {
		return nil, fmt.Errorf("%w: missing action", ErrBadPayload)
	}
	return &env, nil
}

// StatusMessage is the JSON shape published on zone status topics. Level
// fields are decibels decoded through the device profile; fields the device
// has no control for are omitted.
type StatusMessage struct {
	DeviceID        string       `json:"device_id"`
	Zone            int          `json:"zone"`
	Label           string       `json:"label"`
	Power           bool         `json:"power"`
	Mute            bool         `json:"mute"`
	Volume          *level.Value `json:"volume,omitempty"`
	Bass            *level.Value `json:"bass,omitempty"`
	Treble          *level.Value `json:"treble,omitempty"`
	Balance         *level.Pair  `json:"balance,omitempty"`
	Source          int          `json:"source"`
	SourceName      string       `json:"source_name,omitempty"`
	PA              bool         `json:"pa,omitempty"`
	DoNotDisturb    bool         `json:"do_not_disturb,omitempty"`
	KeypadConnected bool         `json:"keypad_connected,omitempty"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// decodeStatus translates a raw zone status into its published form using
// the device's level tables. A step code the table cannot decode leaves the
// field unset rather than failing the whole snapshot.
func decodeStatus(deviceID string, prof *profile.DeviceProfile, st protocol.ZoneStatus, at time.Time) StatusMessage {
	msg := StatusMessage{
		DeviceID:        deviceID,
		Zone:            st.Zone,
		Label:           prof.ZoneLabel(st.Zone),
		Power:           st.Power,
		Mute:            st.Mute,
		Source:          st.Source,
		SourceName:      prof.SourceNames[st.Source],
		PA:              st.PA,
		DoNotDisturb:    st.DoNotDisturb,
		KeypadConnected: st.KeypadConnected,
		UpdatedAt:       at.UTC(),
	}

	if v, err := prof.Volume.Decode(st.Volume); err == nil {
		msg.Volume = &v
	}
	if prof.Bass != nil {
		if v, err := prof.Bass.Decode(st.Bass); err == nil {
			msg.Bass = &v
		}
	}
	if prof.Treble != nil {
		if v, err := prof.Treble.Decode(st.Treble); err == nil {
			msg.Treble = &v
		}
	}
	if prof.Balance != nil {
		if p, err := prof.Balance.Decode(st.Balance); err == nil {
			msg.Balance = &p
		}
	}
	return msg
}

// telemetryFields flattens a decoded status into InfluxDB field values.
func telemetryFields(msg StatusMessage) map[string]interface{} {
	fields := map[string]interface{}{
		"power":  msg.Power,
		"mute":   msg.Mute,
		"source": msg.Source,
	}
	if msg.Volume != nil && !msg.Volume.IsMute() {
		fields["volume_db"] = msg.Volume.Decibels()
	}
	if msg.Bass != nil && !msg.Bass.IsMute() {
		fields["bass_db"] = msg.Bass.Decibels()
	}
	if msg.Treble != nil && !msg.Treble.IsMute() {
		fields["treble_db"] = msg.Treble.Decibels()
	}
	return fields
}
