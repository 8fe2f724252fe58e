package profile

import "errors"

// Domain errors for the profile package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, profile.ErrConfigValidation) {
//	    // descriptor is unusable, do not attempt to drive the device
//	}
var (
	// ErrConfigValidation is returned when a descriptor or override fails
	// validation. Resolution aborts and no DeviceProfile is produced.
	ErrConfigValidation = errors.New("profile: config validation failed")

	// ErrConfigInconsistency marks a non-fatal disagreement between the
	// deprecated num_zones/num_sources fields and the modern features block.
	// It is logged during resolution; the modern field takes precedence.
	ErrConfigInconsistency = errors.New("profile: config inconsistency")

	// ErrUnknownSeries is returned when a series id is not in the library.
	ErrUnknownSeries = errors.New("profile: unknown series")

	// ErrUnknownModel is returned when a manufacturer/model pair is not
	// listed in the series' supported entries.
	ErrUnknownModel = errors.New("profile: unknown model")

	// ErrInvalidZoneID is returned when a zone id does not satisfy the
	// device's addressing scheme.
	ErrInvalidZoneID = errors.New("profile: invalid zone id")
)
