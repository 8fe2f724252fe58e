package profiles

import (
	"errors"
	"testing"

	"github.com/openav/multizone-core/internal/level"
	"github.com/openav/multizone-core/internal/profile"
	"github.com/openav/multizone-core/internal/protocol"
)

func TestLoad(t *testing.T) {
	lib, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"acurus", "dax88", "xantech8", "zpr68"}
	got := lib.SeriesIDs()
	if len(got) != len(want) {
		t.Fatalf("SeriesIDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SeriesIDs() = %v, want %v", got, want)
		}
	}
}

// TestCorpusResolvesCleanly resolves every supported model in the embedded
// corpus against the built-in codecs.
func TestCorpusResolvesCleanly(t *testing.T) {
	lib, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	r := profile.NewResolver(protocol.Default())

	for _, id := range lib.SeriesIDs() {
		doc, err := lib.Series(id)
		if err != nil {
			t.Fatalf("Series(%s) error = %v", id, err)
		}
		for _, entry := range doc.Supported {
			p, err := r.Resolve(doc, entry.Manufacturer, entry.Model)
			if err != nil {
				t.Errorf("Resolve(%s, %s %s) error = %v", id, entry.Manufacturer, entry.Model, err)
				continue
			}
			if p.Volume == nil {
				t.Errorf("%s %s has no volume table", entry.Manufacturer, entry.Model)
			}
			if p.Zones <= 0 || p.Sources <= 0 {
				t.Errorf("%s %s resolves to %d zones / %d sources", entry.Manufacturer, entry.Model, p.Zones, p.Sources)
			}
		}
	}
}

func resolve(t *testing.T, series, manufacturer, model string) *profile.DeviceProfile {
	t.Helper()
	lib, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	doc, err := lib.Series(series)
	if err != nil {
		t.Fatalf("Series(%s) error = %v", series, err)
	}
	p, err := profile.NewResolver(protocol.Default()).Resolve(doc, manufacturer, model)
	if err != nil {
		t.Fatalf("Resolve(%s %s) error = %v", manufacturer, model, err)
	}
	return p
}

func TestAcurusM4(t *testing.T) {
	p := resolve(t, "acurus", "Acurus", "ACT4 M4")

	if p.Zones != 4 || p.Sources != 4 {
		t.Errorf("zones/sources = %d/%d, want 4/4", p.Zones, p.Sources)
	}
	if p.HasToneControls() || p.HasBalance() {
		t.Errorf("ACT4 should expose neither tone nor balance tables")
	}

	step, err := p.Volume.Encode(level.DB(-78.75))
	if err != nil || step != 0 {
		t.Errorf("Encode(-78.75) = %d, %v, want 0", step, err)
	}
	step, err = p.Volume.Encode(level.DB(0))
	if err != nil || step != 38 {
		t.Errorf("Encode(0) = %d, %v, want 38", step, err)
	}
	if _, err := p.Volume.Encode(level.Mute()); !errors.Is(err, level.ErrOutOfRange) {
		t.Errorf("Encode(mute) error = %v, want ErrOutOfRange", err)
	}
}

func TestAcurusM8Defaults(t *testing.T) {
	p := resolve(t, "acurus", "Acurus", "ACT4 M8")
	if p.Zones != 8 || p.Sources != 8 {
		t.Errorf("zones/sources = %d/%d, want 8/8", p.Zones, p.Sources)
	}
}

func TestDAX88Addressing(t *testing.T) {
	p := resolve(t, "dax88", "Dayton Audio", "DAX88")

	if p.Addressing != profile.AddressingAmpSegmented {
		t.Fatalf("Addressing = %v, want amp-segmented", p.Addressing)
	}

	az, err := profile.SplitZone(15)
	if err != nil {
		t.Fatalf("SplitZone(15) error = %v", err)
	}
	if az.Amp != 1 || az.Zone != 5 {
		t.Errorf("SplitZone(15) = %+v, want amp 1 zone 5", az)
	}

	if _, err := profile.SplitZone(27); !errors.Is(err, profile.ErrInvalidZoneID) {
		t.Errorf("SplitZone(27) error = %v, want ErrInvalidZoneID", err)
	}
	if p.ValidZone(27) {
		t.Errorf("ValidZone(27) = true, want false")
	}
}

func TestDAX88MuteStep(t *testing.T) {
	p := resolve(t, "dax88", "Dayton Audio", "DAX88")

	step, err := p.Volume.Encode(level.Mute())
	if err != nil || step != 0 {
		t.Fatalf("Encode(mute) = %d, %v, want 0", step, err)
	}
	v, err := p.Volume.Decode(0)
	if err != nil || !v.IsMute() {
		t.Errorf("Decode(0) = %v, %v, want mute", v, err)
	}
}

func TestZPR68Capabilities(t *testing.T) {
	p := resolve(t, "zpr68", "Xantech", "ZPR68-10")

	if p.Zones != 6 || p.Sources != 8 {
		t.Errorf("zones/sources = %d/%d, want 6/8", p.Zones, p.Sources)
	}
	if !p.HasToneControls() || !p.HasBalance() {
		t.Errorf("ZPR68 should expose tone and balance tables")
	}
	if p.Balance.Center() != 10 || p.Balance.MaxStep() != 20 {
		t.Errorf("balance center/max = %d/%d, want 10/20", p.Balance.Center(), p.Balance.MaxStep())
	}
	if p.StatusPollSkip != 2 {
		t.Errorf("StatusPollSkip = %d, want 2", p.StatusPollSkip)
	}
}

func TestXantech8Balance(t *testing.T) {
	p := resolve(t, "xantech8", "Xantech", "MRC88")

	if p.Balance.Center() != 32 || p.Balance.MaxStep() != 64 {
		t.Errorf("balance center/max = %d/%d, want 32/64", p.Balance.Center(), p.Balance.MaxStep())
	}

	pair, err := p.Balance.Decode(0)
	if err != nil {
		t.Fatalf("Decode(0) error = %v", err)
	}
	if !pair.Left.IsMute() || pair.Right.Decibels() != 0 {
		t.Errorf("Decode(0) = %+v, want left mute, right 0dB", pair)
	}
}
