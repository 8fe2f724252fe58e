package profile

import (
	"errors"
	"testing"
	"testing/fstest"
)

const testDescriptorYAML = `
series: testamp
name: Test Amplifier Series
protocol: testproto
supported:
  - manufacturer: Acme
    model: A8
  - manufacturer: Acme
    model: A4
    overrides:
      features:
        zones: 4
        sources: 4
features:
  zones: 8
  sources: 8
  rs232_control: true
max_volume: 4
min_time_between_commands: 0.1
zone_status_skip: 2
rs232:
  baudrate: 9600
  bytesize: 8
  parity: N
  stopbits: 1
  timeout: 1.0
  write_timeout: 1.0
zones:
  1: Main
  2: Kitchen
sources:
  1: Tuner
  2: CD
volume_level:
  0: mute
  1: -12.5
  2: -8.0
  3: -4.0
  4: 0.0
`

func TestParseSeries(t *testing.T) {
	doc, err := ParseSeries([]byte(testDescriptorYAML))
	if err != nil {
		t.Fatalf("ParseSeries() error = %v", err)
	}

	if doc.Series != "testamp" || doc.Protocol != "testproto" {
		t.Errorf("identity = %q/%q, want testamp/testproto", doc.Series, doc.Protocol)
	}
	if len(doc.Supported) != 2 {
		t.Fatalf("len(Supported) = %d, want 2", len(doc.Supported))
	}
	ov := doc.Supported[1].Overrides
	if ov == nil || ov.Features == nil || ov.Features.Zones == nil || *ov.Features.Zones != 4 {
		t.Errorf("A4 override not decoded: %+v", ov)
	}
	if !doc.VolumeLevel[0].IsMute() {
		t.Errorf("volume step 0 should decode as mute")
	}
	if got := doc.VolumeLevel[1].Decibels(); got != -12.5 {
		t.Errorf("volume step 1 = %v, want -12.5", got)
	}
	if doc.RS232.BaudRate != 9600 || doc.RS232.Parity != "N" {
		t.Errorf("rs232 params = %+v, want 9600/N", doc.RS232)
	}
}

func TestParseSeries_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing series", "protocol: p\nsupported: [{manufacturer: A, model: B}]"},
		{"missing protocol", "series: s\nsupported: [{manufacturer: A, model: B}]"},
		{"no models", "series: s\nprotocol: p"},
		{"unknown field", "series: s\nprotocol: p\nbogus_field: 1\nsupported: [{manufacturer: A, model: B}]"},
		{"duplicate step", "series: s\nprotocol: p\nsupported: [{manufacturer: A, model: B}]\nvolume_level:\n  0: -1.0\n  0: -2.0"},
		{"not yaml", "{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSeries([]byte(tt.yaml)); !errors.Is(err, ErrConfigValidation) {
				t.Errorf("ParseSeries() error = %v, want ErrConfigValidation", err)
			}
		})
	}
}

func TestLibrary_AddFS(t *testing.T) {
	fsys := fstest.MapFS{
		"profiles/testamp.yaml": {Data: []byte(testDescriptorYAML)},
		"profiles/notes.txt":    {Data: []byte("ignored")},
	}

	lib := NewLibrary()
	if err := lib.AddFS(fsys, "profiles"); err != nil {
		t.Fatalf("AddFS() error = %v", err)
	}

	doc, err := lib.Series("testamp")
	if err != nil {
		t.Fatalf("Series() error = %v", err)
	}
	if doc.Name != "Test Amplifier Series" {
		t.Errorf("Name = %q", doc.Name)
	}

	if _, err := lib.Series("nope"); !errors.Is(err, ErrUnknownSeries) {
		t.Errorf("Series(nope) error = %v, want ErrUnknownSeries", err)
	}
}

func TestLibrary_LaterAddShadowsEarlier(t *testing.T) {
	lib := NewLibrary()

	base := fstest.MapFS{"d/a.yaml": {Data: []byte(testDescriptorYAML)}}
	if err := lib.AddFS(base, "d"); err != nil {
		t.Fatalf("AddFS(base) error = %v", err)
	}

	patched := []byte(testDescriptorYAML)
	local := fstest.MapFS{"d/a.yaml": {Data: append(patched, "\nnum_zones: 8\n"...)}}
	if err := lib.AddFS(local, "d"); err != nil {
		t.Fatalf("AddFS(local) error = %v", err)
	}

	doc, err := lib.Series("testamp")
	if err != nil {
		t.Fatalf("Series() error = %v", err)
	}
	if doc.NumZones != 8 {
		t.Errorf("NumZones = %d, want shadowed value 8", doc.NumZones)
	}
}

func TestLibrary_SeriesIDs(t *testing.T) {
	second := `
series: otheramp
protocol: p2
supported:
  - manufacturer: Beta
    model: B1
features:
  zones: 2
  sources: 2
volume_level:
  0: -10.0
  1: 0.0
`
	fsys := fstest.MapFS{
		"p/testamp.yaml":  {Data: []byte(testDescriptorYAML)},
		"p/otheramp.yaml": {Data: []byte(second)},
	}

	lib := NewLibrary()
	if err := lib.AddFS(fsys, "p"); err != nil {
		t.Fatalf("AddFS() error = %v", err)
	}

	ids := lib.SeriesIDs()
	if len(ids) != 2 || ids[0] != "otheramp" || ids[1] != "testamp" {
		t.Errorf("SeriesIDs() = %v, want [otheramp testamp]", ids)
	}
}
