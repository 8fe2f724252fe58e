package profile

import "fmt"

// Amp-segmented addressing constants. Stacked amplifier installations expose
// zone ids of the form amp·10 + zone-in-amp, e.g. 15 is amp 1, zone 5 and
// 21 is amp 2, zone 1.
const (
	// maxZonePerAmp is the highest zone-in-amp a segmented id may carry.
	maxZonePerAmp = 6

	// ampRadix is the position of the amp number within a segmented id.
	ampRadix = 10
)

// Addressing identifies how a device's protocol-native zone ids are shaped.
type Addressing int

const (
	// AddressingDirect means zone ids are plain opaque integers.
	AddressingDirect Addressing = iota

	// AddressingAmpSegmented means zone ids encode amp number and
	// zone-within-amp as amp·10 + zone.
	AddressingAmpSegmented
)

// String returns the addressing scheme name.
func (a Addressing) String() string {
	if a == AddressingAmpSegmented {
		return "amp_segmented"
	}
	return "direct"
}

// AmpZone is a decoded amp-segmented zone id.
type AmpZone struct {
	Amp  int
	Zone int
}

// SplitZone decodes an amp-segmented zone id.
//
// Returns ErrInvalidZoneID if the amp number is below 1 or the
// zone-within-amp is outside 1..6.
func SplitZone(id int) (AmpZone, error) {
	amp := id / ampRadix
	zone := id % ampRadix
	if amp < 1 {
		return AmpZone{}, fmt.Errorf("%w: %d has no amp number", ErrInvalidZoneID, id)
	}
	if zone < 1 || zone > maxZonePerAmp {
		return AmpZone{}, fmt.Errorf("%w: %d has zone-in-amp %d outside 1..%d", ErrInvalidZoneID, id, zone, maxZonePerAmp)
	}
	return AmpZone{Amp: amp, Zone: zone}, nil
}

// ID returns the protocol-native zone id for this amp/zone pair.
func (a AmpZone) ID() int {
	return a.Amp*ampRadix + a.Zone
}

// String formats the pair for logs, e.g. "amp 1, zone 5".
func (a AmpZone) String() string {
	return fmt.Sprintf("amp %d, zone %d", a.Amp, a.Zone)
}
