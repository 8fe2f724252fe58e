package protocol

import (
	"fmt"
	"regexp"
	"strconv"
)

// acurusStatusPattern matches an ACT4 zone status response, e.g.
// "#Z3,PWR:1,MUTE:0,VOL:25,SRC:4".
var acurusStatusPattern = regexp.MustCompile(
	`#Z(\d+),PWR:([01]),MUTE:([01]),VOL:(\d+),SRC:(\d+)`)

var acurusTerminator = []byte("\r\n")

// acurusCodec speaks the keyword grammar of the Acurus ACT4 processors.
// The ACT4 exposes power, mute, volume and source only; tone and balance
// actions are unsupported.
type acurusCodec struct{}

func init() {
	defaultRegistry.Register("acurus", acurusCodec{})
}

func (acurusCodec) Name() string { return "acurus" }

func (acurusCodec) FormatCommand(cmd Command) ([]byte, error) {
	if cmd.Zone <= 0 {
		return nil, fmt.Errorf("%w: zone %d", ErrInvalidCommand, cmd.Zone)
	}

	switch cmd.Action {
	case ActionPower:
		return acurusSwitch(cmd.Zone, "PWR", cmd.On), nil
	case ActionMute:
		return acurusSwitch(cmd.Zone, "MUTE", cmd.On), nil
	case ActionVolume:
		if cmd.Value < 0 || cmd.Value > 99 {
			return nil, fmt.Errorf("%w: volume value %d does not fit two digits", ErrInvalidCommand, cmd.Value)
		}
		return []byte(fmt.Sprintf("*Z%dVOL%02d\r", cmd.Zone, cmd.Value)), nil
	case ActionSource:
		if cmd.Value < 0 {
			return nil, fmt.Errorf("%w: source %d", ErrInvalidCommand, cmd.Value)
		}
		return []byte(fmt.Sprintf("*Z%dSRC%d\r", cmd.Zone, cmd.Value)), nil
	case ActionBass, ActionTreble, ActionBalance:
		return nil, fmt.Errorf("%w: acurus has no %s control", ErrUnsupportedAction, cmd.Action)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAction, cmd.Action)
	}
}

func (acurusCodec) FormatQuery(zone int) ([]byte, error) {
	if zone <= 0 {
		return nil, fmt.Errorf("%w: zone %d", ErrInvalidCommand, zone)
	}
	return []byte(fmt.Sprintf("*Z%dSTAT?\r", zone)), nil
}

func (acurusCodec) ParseStatus(raw []byte) (*ZoneStatus, error) {
	match := acurusStatusPattern.FindSubmatch(raw)
	if match == nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedResponse, raw)
	}

	zone, _ := strconv.Atoi(string(match[1]))
	volume, _ := strconv.Atoi(string(match[4]))
	source, _ := strconv.Atoi(string(match[5]))

	return &ZoneStatus{
		Zone:   zone,
		Power:  match[2][0] == '1',
		Mute:   match[3][0] == '1',
		Volume: volume,
		Source: source,
	}, nil
}

func (acurusCodec) ResponseTerminator() []byte { return acurusTerminator }

// acurusSwitch renders an on/off keyword command, e.g. "*Z3PWRON\r".
func acurusSwitch(zone int, verb string, on bool) []byte {
	state := "OFF"
	if on {
		state = "ON"
	}
	return []byte(fmt.Sprintf("*Z%d%s%s\r", zone, verb, state))
}
