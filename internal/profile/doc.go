// Package profile implements the configuration-driven device model for
// multi-zone amplifiers.
//
// Device capabilities are described declaratively: a series descriptor (one
// YAML document per amplifier family) carries the shared capability profile
// and protocol identifier, and each supported manufacturer/model entry may
// attach a sparse override patch. The Resolver merges the two into an
// immutable DeviceProfile — the materialized capability set a connection
// worker and protocol driver are parameterized with.
//
// # Key Types
//
//   - SeriesDoc: a parsed series descriptor (the on-disk schema)
//   - Override: a sparse per-model patch applied over series defaults
//   - DeviceProfile: the resolved, read-only capability set for one device
//   - Library: a collection of series descriptors loaded from an fs.FS
//   - AmpZone: amp-segmented zone addressing (id = amp·10 + zone-in-amp)
//
// # Merge semantics
//
// Override fields win when present; everything else falls through to the
// series defaults. The deprecated num_zones/num_sources fields are reconciled
// against features.zones/features.sources during resolution — the modern
// field wins on disagreement (logged as a non-fatal inconsistency) and only
// the resolved value is carried into the DeviceProfile. Overrides may reduce
// but never raise zone/source counts above the series' declared maxima.
//
// Resolution is idempotent and its output is never mutated afterwards, so a
// single DeviceProfile is safely shared by every connection to that model.
package profile
