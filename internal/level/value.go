package level

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// muteToken is the descriptor and JSON spelling of the mute sentinel.
const muteToken = "mute"

// Value is a human-meaningful audio level: either a finite dB figure or the
// mute sentinel. The zero value is 0 dB.
//
// Mute is distinct from any finite dB value; a muted Value has no meaningful
// dB component.
type Value struct {
	db   float64
	mute bool
}

// DB returns a Value for a finite decibel figure.
func DB(db float64) Value {
	return Value{db: db}
}

// Mute returns the mute sentinel Value.
func Mute() Value {
	return Value{mute: true}
}

// IsMute reports whether the value is the mute sentinel.
func (v Value) IsMute() bool {
	return v.mute
}

// Decibels returns the dB figure. It is only meaningful when IsMute() is
// false; for the mute sentinel it returns 0.
func (v Value) Decibels() float64 {
	return v.db
}

// Equal reports whether two values are the same level.
// A mute sentinel never equals a finite dB value.
func (v Value) Equal(other Value) bool {
	if v.mute || other.mute {
		return v.mute == other.mute
	}
	return v.db == other.db
}

// String formats the value for logs and error messages.
func (v Value) String() string {
	if v.mute {
		return muteToken
	}
	return strconv.FormatFloat(v.db, 'g', -1, 64) + "dB"
}

// MarshalJSON encodes the value as a JSON number, or the string "mute" for
// the mute sentinel. Used by the MQTT bridge and the status history store.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.mute {
		return json.Marshal(muteToken)
	}
	return json.Marshal(v.db)
}

// UnmarshalJSON accepts a JSON number or the string "mute".
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != muteToken {
			return fmt.Errorf("%w: unknown level token %q", ErrOutOfRange, s)
		}
		*v = Mute()
		return nil
	}

	var db float64
	if err := json.Unmarshal(data, &db); err != nil {
		return fmt.Errorf("parsing level value: %w", err)
	}
	*v = DB(db)
	return nil
}

// UnmarshalYAML accepts a YAML number or the string "mute". This is the form
// level tables take in the device descriptor corpus.
func (v *Value) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return fmt.Errorf("parsing level value: %w", err)
	}

	switch val := raw.(type) {
	case string:
		if val != muteToken {
			return fmt.Errorf("%w: unknown level token %q", ErrOutOfRange, val)
		}
		*v = Mute()
	case float64:
		*v = DB(val)
	case int:
		*v = DB(float64(val))
	default:
		return fmt.Errorf("%w: level value must be a number or %q, got %T", ErrOutOfRange, muteToken, raw)
	}
	return nil
}
