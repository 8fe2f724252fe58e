package protocol

import (
	"fmt"
	"regexp"
	"strconv"
)

// xantechStatusPattern matches a zone status response: the "#>" marker
// followed by eleven two-digit fields (zone, pa, power, mute, dnd, volume,
// treble, bass, balance, source, keypad).
var xantechStatusPattern = regexp.MustCompile(
	`#>(\d\d)(\d\d)(\d\d)(\d\d)(\d\d)(\d\d)(\d\d)(\d\d)(\d\d)(\d\d)(\d\d)`)

// xantechTerminator ends every response frame from the family.
var xantechTerminator = []byte("\r\n#")

// xantechCodec speaks the shared serial grammar of Xantech matrix
// amplifiers, the ZPR68 preamplifier and the Dayton Audio DAX88.
type xantechCodec struct {
	name string
}

func init() {
	// The three families share one grammar but are addressed by distinct
	// descriptor protocol identifiers.
	for _, name := range []string{"xantech", "zpr68", "dayton"} {
		defaultRegistry.Register(name, &xantechCodec{name: name})
	}
}

func (c *xantechCodec) Name() string { return c.name }

func (c *xantechCodec) FormatCommand(cmd Command) ([]byte, error) {
	if cmd.Zone <= 0 {
		return nil, fmt.Errorf("%w: zone %d", ErrInvalidCommand, cmd.Zone)
	}

	switch cmd.Action {
	case ActionPower:
		return xantechSwitch(cmd.Zone, "PR", cmd.On), nil
	case ActionMute:
		return xantechSwitch(cmd.Zone, "MU", cmd.On), nil
	case ActionVolume:
		return xantechLevel(cmd.Zone, "VO", cmd.Value)
	case ActionTreble:
		return xantechLevel(cmd.Zone, "TR", cmd.Value)
	case ActionBass:
		return xantechLevel(cmd.Zone, "BS", cmd.Value)
	case ActionBalance:
		return xantechLevel(cmd.Zone, "BL", cmd.Value)
	case ActionSource:
		return xantechLevel(cmd.Zone, "CH", cmd.Value)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAction, cmd.Action)
	}
}

func (c *xantechCodec) FormatQuery(zone int) ([]byte, error) {
	if zone <= 0 {
		return nil, fmt.Errorf("%w: zone %d", ErrInvalidCommand, zone)
	}
	return []byte(fmt.Sprintf("?%d\r", zone)), nil
}

func (c *xantechCodec) ParseStatus(raw []byte) (*ZoneStatus, error) {
	match := xantechStatusPattern.FindSubmatch(raw)
	if match == nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedResponse, raw)
	}

	fields := make([]int, len(match)-1)
	for i, m := range match[1:] {
		// Submatches are two digit runs; Atoi cannot fail here.
		fields[i], _ = strconv.Atoi(string(m))
	}

	return &ZoneStatus{
		Zone:            fields[0],
		PA:              fields[1] != 0,
		Power:           fields[2] != 0,
		Mute:            fields[3] != 0,
		DoNotDisturb:    fields[4] != 0,
		Volume:          fields[5],
		Treble:          fields[6],
		Bass:            fields[7],
		Balance:         fields[8],
		Source:          fields[9],
		KeypadConnected: fields[10] != 0,
	}, nil
}

func (c *xantechCodec) ResponseTerminator() []byte { return xantechTerminator }

// xantechSwitch renders an on/off command, e.g. "<12PR01\r".
func xantechSwitch(zone int, code string, on bool) []byte {
	state := "00"
	if on {
		state = "01"
	}
	return []byte(fmt.Sprintf("<%d%s%s\r", zone, code, state))
}

// xantechLevel renders a two-digit level command, e.g. "<12VO25\r".
func xantechLevel(zone int, code string, value int) ([]byte, error) {
	if value < 0 || value > 99 {
		return nil, fmt.Errorf("%w: %s value %d does not fit two digits", ErrInvalidCommand, code, value)
	}
	return []byte(fmt.Sprintf("<%d%s%02d\r", zone, code, value)), nil
}
