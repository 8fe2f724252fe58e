package profile

import (
	"sort"
	"strconv"
	"time"

	"github.com/openav/multizone-core/internal/level"
)

// LevelMap is a level table as it appears in a descriptor: an explicit
// step→value mapping where the value is a dB float or the string "mute".
// Step keys must form a contiguous 0..max range; the resolver enforces this.
type LevelMap map[int]level.Value

// Features is the modern capability block of a series descriptor.
// features.zones and features.sources double as the series' declared maximum
// capability: overrides may reduce but never exceed them.
type Features struct {
	Zones        int  `yaml:"zones"`
	Sources      int  `yaml:"sources"`
	IPControl    bool `yaml:"ip_control"`
	RS232Control bool `yaml:"rs232_control"`
}

// FeaturePatch is the sparse form of Features used inside an Override.
// Nil fields fall through to the series default.
type FeaturePatch struct {
	Zones        *int  `yaml:"zones"`
	Sources      *int  `yaml:"sources"`
	IPControl    *bool `yaml:"ip_control"`
	RS232Control *bool `yaml:"rs232_control"`
}

// Override is a sparse patch a supported model applies over its series
// defaults. The protocol identifier is series-scoped and can never be
// overridden.
type Override struct {
	Features *FeaturePatch `yaml:"features"`

	// Deprecated duplicates of Features.Zones/Features.Sources, retained for
	// backward compatibility with older descriptors. Reconciled during
	// resolution with the features block taking precedence.
	NumZones   *int `yaml:"num_zones"`
	NumSources *int `yaml:"num_sources"`

	MinTimeBetweenCommands *float64 `yaml:"min_time_between_commands"`
	ZoneStatusSkip         *int     `yaml:"zone_status_skip"`
}

// ModelEntry is one manufacturer/model pair a series supports.
type ModelEntry struct {
	Manufacturer string    `yaml:"manufacturer"`
	Model        string    `yaml:"model"`
	URL          string    `yaml:"url"`
	Overrides    *Override `yaml:"overrides"`
}

// RS232Params are the serial-link parameters from a descriptor's rs232 block.
// Timeouts are in seconds, matching the on-disk schema.
type RS232Params struct {
	BaudRate     int     `yaml:"baudrate"`
	ByteSize     int     `yaml:"bytesize"`
	Parity       string  `yaml:"parity"`
	StopBits     int     `yaml:"stopbits"`
	Timeout      float64 `yaml:"timeout"`
	WriteTimeout float64 `yaml:"write_timeout"`
}

// ReadTimeout returns the read timeout as a Duration.
func (p RS232Params) ReadTimeout() time.Duration {
	return time.Duration(p.Timeout * float64(time.Second))
}

// SendTimeout returns the write timeout as a Duration.
func (p RS232Params) SendTimeout() time.Duration {
	return time.Duration(p.WriteTimeout * float64(time.Second))
}

// SeriesDoc is a parsed series descriptor. Field names mirror the on-disk
// YAML schema; SeriesDoc values are immutable after load.
type SeriesDoc struct {
	Series    string       `yaml:"series"`
	Name      string       `yaml:"name"`
	Protocol  string       `yaml:"protocol"`
	Supported []ModelEntry `yaml:"supported"`

	Features Features `yaml:"features"`

	// Deprecated duplicates of Features.Zones/Features.Sources.
	NumZones   int `yaml:"num_zones"`
	NumSources int `yaml:"num_sources"`

	MaxVolume           int `yaml:"max_volume"`
	MaxBass             int `yaml:"max_bass"`
	MaxTreble           int `yaml:"max_treble"`
	MaxBalance          int `yaml:"max_balance"`
	HardwareVolumeSteps int `yaml:"hardware_volume_steps"`

	MinTimeBetweenCommands float64 `yaml:"min_time_between_commands"`
	ZoneStatusSkip         int     `yaml:"zone_status_skip"`

	RS232 RS232Params `yaml:"rs232"`

	Zones   map[int]string `yaml:"zones"`
	Sources map[int]string `yaml:"sources"`

	VolumeLevel        LevelMap `yaml:"volume_level"`
	BassLevel          LevelMap `yaml:"bass_level"`
	TrebleLevel        LevelMap `yaml:"treble_level"`
	BalanceAttenuation LevelMap `yaml:"balance_attenuation"`
}

// DeviceProfile is the resolved capability set for one concrete
// manufacturer/model: the merge of series defaults and model overrides,
// validated and reduced to a single representation.
//
// A DeviceProfile is created once at resolution time and read-only
// afterwards; one instance is safely shared by every connection to the same
// model.
type DeviceProfile struct {
	Series       string
	SeriesName   string
	Manufacturer string
	Model        string
	URL          string
	Protocol     string

	Zones   int
	Sources int

	IPControl    bool
	RS232Control bool

	ZoneNames   map[int]string
	SourceNames map[int]string
	Addressing  Addressing

	// Level tables. Volume is always present; Bass/Treble/Balance are nil
	// for devices without tone or balance controls.
	Volume  *level.Table
	Bass    *level.Table
	Treble  *level.Table
	Balance *level.BalanceTable

	// CommandSpacing is the minimum interval between wire writes.
	CommandSpacing time.Duration

	// StatusPollSkip is the number of poll cycles that elapse between two
	// issued status queries. Zero polls on every cycle.
	StatusPollSkip int

	Serial RS232Params
}

// HasToneControls reports whether the device exposes bass and treble.
func (p *DeviceProfile) HasToneControls() bool {
	return p.Bass != nil && p.Treble != nil
}

// HasBalance reports whether the device exposes balance control.
func (p *DeviceProfile) HasBalance() bool {
	return p.Balance != nil
}

// ValidZone reports whether a protocol-native zone id is addressable on this
// device. Enumerated ids are always valid; amp-segmented devices additionally
// accept any id that decodes to a well-formed amp/zone pair, since expansion
// amps need not be enumerated and ids are never assumed dense.
func (p *DeviceProfile) ValidZone(id int) bool {
	if _, ok := p.ZoneNames[id]; ok {
		return true
	}
	if p.Addressing == AddressingAmpSegmented {
		_, err := SplitZone(id)
		return err == nil
	}
	return false
}

// ValidSource reports whether a source id is selectable on this device.
func (p *DeviceProfile) ValidSource(id int) bool {
	_, ok := p.SourceNames[id]
	return ok
}

// ZoneIDs returns the enumerated zone ids in ascending order.
func (p *DeviceProfile) ZoneIDs() []int {
	ids := make([]int, 0, len(p.ZoneNames))
	for id := range p.ZoneNames {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ZoneLabel returns a human-readable name for a zone id: the enumerated
// display name when present, otherwise the amp-segmented decomposition, and
// finally the bare id.
func (p *DeviceProfile) ZoneLabel(id int) string {
	if name, ok := p.ZoneNames[id]; ok {
		return name
	}
	if p.Addressing == AddressingAmpSegmented {
		if az, err := SplitZone(id); err == nil {
			return az.String()
		}
	}
	return "zone " + strconv.Itoa(id)
}
