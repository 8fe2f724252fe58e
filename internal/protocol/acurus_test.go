package protocol

import (
	"errors"
	"strings"
	"testing"
)

func acurus(t *testing.T) Codec {
	t.Helper()
	c, err := Default().Get("acurus")
	if err != nil {
		t.Fatalf("Get(acurus) error = %v", err)
	}
	return c
}

func TestAcurusFormatCommand(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{"power on", Command{Zone: 3, Action: ActionPower, On: true}, "*Z3PWRON\r"},
		{"power off", Command{Zone: 3, Action: ActionPower}, "*Z3PWROFF\r"},
		{"mute on", Command{Zone: 1, Action: ActionMute, On: true}, "*Z1MUTEON\r"},
		{"mute off", Command{Zone: 1, Action: ActionMute}, "*Z1MUTEOFF\r"},
		{"volume", Command{Zone: 2, Action: ActionVolume, Value: 25}, "*Z2VOL25\r"},
		{"volume pads", Command{Zone: 2, Action: ActionVolume, Value: 7}, "*Z2VOL07\r"},
		{"source", Command{Zone: 4, Action: ActionSource, Value: 6}, "*Z4SRC6\r"},
	}

	c := acurus(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.FormatCommand(tt.cmd)
			if err != nil {
				t.Fatalf("FormatCommand() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("FormatCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAcurusUnsupportedActions(t *testing.T) {
	c := acurus(t)

	for _, action := range []Action{ActionBass, ActionTreble, ActionBalance} {
		if _, err := c.FormatCommand(Command{Zone: 1, Action: action, Value: 7}); !errors.Is(err, ErrUnsupportedAction) {
			t.Errorf("%s: error = %v, want ErrUnsupportedAction", action, err)
		}
	}
}

func TestAcurusFormatQuery(t *testing.T) {
	c := acurus(t)
	got, err := c.FormatQuery(3)
	if err != nil {
		t.Fatalf("FormatQuery() error = %v", err)
	}
	if string(got) != "*Z3STAT?\r" {
		t.Errorf("FormatQuery(3) = %q", got)
	}
}

func TestAcurusParseStatus(t *testing.T) {
	c := acurus(t)

	st, err := c.ParseStatus([]byte("#Z3,PWR:1,MUTE:0,VOL:25,SRC:4\r\n"))
	if err != nil {
		t.Fatalf("ParseStatus() error = %v", err)
	}
	if st.Zone != 3 || !st.Power || st.Mute || st.Volume != 25 || st.Source != 4 {
		t.Errorf("ParseStatus() = %+v", st)
	}

	if _, err := c.ParseStatus([]byte("ERR\r\n")); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("malformed: error = %v, want ErrMalformedResponse", err)
	}
}

func TestRestoreZone_SkipsUnsupported(t *testing.T) {
	c := acurus(t)

	st := &ZoneStatus{Zone: 3, Power: true, Volume: 20, Treble: 7, Bass: 8, Balance: 10, Source: 2}
	frames, err := RestoreZone(c, st)
	if err != nil {
		t.Fatalf("RestoreZone() error = %v", err)
	}

	// power, mute, volume, source; tone and balance skipped.
	if len(frames) != 4 {
		t.Fatalf("len(frames) = %d, want 4", len(frames))
	}
	for _, f := range frames {
		s := string(f)
		if strings.Contains(s, "TR") || strings.Contains(s, "BS") || strings.Contains(s, "BL") {
			t.Errorf("unexpected tone/balance frame %q", s)
		}
	}
}
