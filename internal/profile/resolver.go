package profile

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/openav/multizone-core/internal/level"
)

// Logger defines the logging interface used by the Resolver.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ProtocolChecker answers whether a protocol identifier has a registered
// driver. Satisfied by protocol.Registry.
type ProtocolChecker interface {
	Has(name string) bool
}

// Resolver merges series descriptors with per-model overrides into resolved
// DeviceProfiles.
//
// All methods are safe for concurrent use; the resolver holds no mutable
// state beyond its collaborators.
type Resolver struct {
	protocols ProtocolChecker
	logger    Logger
}

// NewResolver creates a resolver that validates protocol identifiers against
// the given registry.
func NewResolver(protocols ProtocolChecker) *Resolver {
	return &Resolver{
		protocols: protocols,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger used for non-fatal inconsistency warnings.
func (r *Resolver) SetLogger(logger Logger) {
	r.logger = logger
}

// Resolve merges the series defaults with the named model's override patch
// and validates the result.
//
// Validation failures are fatal: the returned error wraps
// ErrConfigValidation (or ErrUnknownModel) and no profile is produced.
// Disagreements between the deprecated num_zones/num_sources fields and the
// features block are non-fatal; the modern field wins and a warning is
// logged.
//
// Resolution is idempotent: resolving the same inputs twice yields
// structurally equal profiles.
func (r *Resolver) Resolve(doc *SeriesDoc, manufacturer, model string) (*DeviceProfile, error) {
	entry, err := findModel(doc, manufacturer, model)
	if err != nil {
		return nil, err
	}

	if r.protocols != nil && !r.protocols.Has(doc.Protocol) {
		return nil, fmt.Errorf("%w: series %q references unregistered protocol %q",
			ErrConfigValidation, doc.Series, doc.Protocol)
	}

	// Series-level reconciliation of deprecated vs modern counts.
	maxZones := r.reconcileCount(doc.Series, "zones", doc.Features.Zones, doc.NumZones)
	maxSources := r.reconcileCount(doc.Series, "sources", doc.Features.Sources, doc.NumSources)

	p := &DeviceProfile{
		Series:       doc.Series,
		SeriesName:   doc.Name,
		Manufacturer: entry.Manufacturer,
		Model:        entry.Model,
		URL:          entry.URL,
		Protocol:     doc.Protocol,
		Zones:        maxZones,
		Sources:      maxSources,
		IPControl:    doc.Features.IPControl,
		RS232Control: doc.Features.RS232Control,
		CommandSpacing: time.Duration(
			doc.MinTimeBetweenCommands * float64(time.Second)),
		StatusPollSkip: doc.ZoneStatusSkip,
		Serial:         doc.RS232,
	}

	if err := r.applyOverride(p, entry.Overrides, maxZones, maxSources); err != nil {
		return nil, err
	}

	if err := r.validateCounts(p); err != nil {
		return nil, err
	}

	if err := r.buildTables(p, doc); err != nil {
		return nil, err
	}

	p.ZoneNames = copyNames(doc.Zones)
	p.SourceNames = copyNames(doc.Sources)
	p.Addressing = detectAddressing(p.ZoneNames)

	r.logger.Debug("profile resolved",
		"series", p.Series,
		"manufacturer", p.Manufacturer,
		"model", p.Model,
		"zones", p.Zones,
		"sources", p.Sources,
		"addressing", p.Addressing.String(),
	)

	return p, nil
}

// findModel locates the supported entry for a manufacturer/model pair.
// Matching is case-insensitive to tolerate descriptor drift.
func findModel(doc *SeriesDoc, manufacturer, model string) (*ModelEntry, error) {
	for i := range doc.Supported {
		entry := &doc.Supported[i]
		if strings.EqualFold(entry.Manufacturer, manufacturer) && strings.EqualFold(entry.Model, model) {
			return entry, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %s not supported by series %q", ErrUnknownModel, manufacturer, model, doc.Series)
}

// reconcileCount resolves a modern features count against its deprecated
// duplicate. The modern field wins on disagreement; a missing modern field
// falls back to the legacy one.
func (r *Resolver) reconcileCount(series, field string, modern, legacy int) int {
	if modern == 0 {
		return legacy
	}
	if legacy != 0 && legacy != modern {
		r.logger.Warn("deprecated field disagrees with features block, preferring features",
			"error", ErrConfigInconsistency,
			"series", series,
			"field", field,
			"features", modern,
			"deprecated", legacy,
		)
	}
	return modern
}

// applyOverride applies a sparse model patch over the series defaults
// already present in p. maxZones/maxSources are the series' declared upper
// bounds; an override raising a count past them is fatal.
func (r *Resolver) applyOverride(p *DeviceProfile, ov *Override, maxZones, maxSources int) error {
	if ov == nil {
		return nil
	}

	zones, sources := 0, 0
	if ov.Features != nil {
		if ov.Features.Zones != nil {
			zones = *ov.Features.Zones
		}
		if ov.Features.Sources != nil {
			sources = *ov.Features.Sources
		}
		if ov.Features.IPControl != nil {
			p.IPControl = *ov.Features.IPControl
		}
		if ov.Features.RS232Control != nil {
			p.RS232Control = *ov.Features.RS232Control
		}
	}

	// Deprecated override fields, same precedence rule as the series level.
	if ov.NumZones != nil {
		zones = r.reconcileOverrideCount(p, "zones", zones, *ov.NumZones)
	}
	if ov.NumSources != nil {
		sources = r.reconcileOverrideCount(p, "sources", sources, *ov.NumSources)
	}

	if zones != 0 {
		if zones > maxZones {
			return fmt.Errorf("%w: %s %s override raises zones to %d above series maximum %d",
				ErrConfigValidation, p.Manufacturer, p.Model, zones, maxZones)
		}
		p.Zones = zones
	}
	if sources != 0 {
		if sources > maxSources {
			return fmt.Errorf("%w: %s %s override raises sources to %d above series maximum %d",
				ErrConfigValidation, p.Manufacturer, p.Model, sources, maxSources)
		}
		p.Sources = sources
	}

	if ov.MinTimeBetweenCommands != nil {
		p.CommandSpacing = time.Duration(*ov.MinTimeBetweenCommands * float64(time.Second))
	}
	if ov.ZoneStatusSkip != nil {
		p.StatusPollSkip = *ov.ZoneStatusSkip
	}

	return nil
}

// reconcileOverrideCount applies the deprecated-field precedence rule inside
// an override: the features patch wins when both are present.
func (r *Resolver) reconcileOverrideCount(p *DeviceProfile, field string, modern, legacy int) int {
	if modern == 0 {
		return legacy
	}
	if legacy != modern {
		r.logger.Warn("deprecated override field disagrees with features patch, preferring features",
			"error", ErrConfigInconsistency,
			"manufacturer", p.Manufacturer,
			"model", p.Model,
			"field", field,
			"features", modern,
			"deprecated", legacy,
		)
	}
	return modern
}

// validateCounts enforces the fatal resolution invariants on the merged
// profile.
func (r *Resolver) validateCounts(p *DeviceProfile) error {
	if p.Zones <= 0 {
		return fmt.Errorf("%w: %s %s resolves to %d zones", ErrConfigValidation, p.Manufacturer, p.Model, p.Zones)
	}
	if p.Sources <= 0 {
		return fmt.Errorf("%w: %s %s resolves to %d sources", ErrConfigValidation, p.Manufacturer, p.Model, p.Sources)
	}
	if p.CommandSpacing < 0 {
		return fmt.Errorf("%w: %s %s has negative command spacing %s",
			ErrConfigValidation, p.Manufacturer, p.Model, p.CommandSpacing)
	}
	if p.StatusPollSkip < 0 {
		return fmt.Errorf("%w: %s %s has negative zone_status_skip %d",
			ErrConfigValidation, p.Manufacturer, p.Model, p.StatusPollSkip)
	}
	return nil
}

// buildTables materializes the descriptor's level maps into immutable
// tables. The volume table is mandatory; tone and balance tables are
// optional capabilities.
func (r *Resolver) buildTables(p *DeviceProfile, doc *SeriesDoc) error {
	var err error

	p.Volume, err = tableFromMap("volume", doc.VolumeLevel)
	if err != nil {
		return fmt.Errorf("%w: series %q: %v", ErrConfigValidation, doc.Series, err)
	}
	if doc.HardwareVolumeSteps != 0 && p.Volume.MaxStep() != doc.HardwareVolumeSteps {
		r.logger.Warn("volume table does not span hardware_volume_steps, preferring table",
			"error", ErrConfigInconsistency,
			"series", doc.Series,
			"table_max", p.Volume.MaxStep(),
			"hardware_volume_steps", doc.HardwareVolumeSteps,
		)
	}
	r.checkDeclaredMax(doc.Series, "max_volume", doc.MaxVolume, p.Volume.MaxStep())

	if len(doc.BassLevel) > 0 {
		p.Bass, err = tableFromMap("bass", doc.BassLevel)
		if err != nil {
			return fmt.Errorf("%w: series %q: %v", ErrConfigValidation, doc.Series, err)
		}
		r.checkDeclaredMax(doc.Series, "max_bass", doc.MaxBass, p.Bass.MaxStep())
	}
	if len(doc.TrebleLevel) > 0 {
		p.Treble, err = tableFromMap("treble", doc.TrebleLevel)
		if err != nil {
			return fmt.Errorf("%w: series %q: %v", ErrConfigValidation, doc.Series, err)
		}
		r.checkDeclaredMax(doc.Series, "max_treble", doc.MaxTreble, p.Treble.MaxStep())
	}
	if len(doc.BalanceAttenuation) > 0 {
		curve, err := valuesFromMap("balance", doc.BalanceAttenuation)
		if err != nil {
			return fmt.Errorf("%w: series %q: %v", ErrConfigValidation, doc.Series, err)
		}
		p.Balance, err = level.NewBalanceTable(curve)
		if err != nil {
			return fmt.Errorf("%w: series %q: %v", ErrConfigValidation, doc.Series, err)
		}
		r.checkDeclaredMax(doc.Series, "max_balance", doc.MaxBalance, p.Balance.MaxStep())
	}

	return nil
}

// checkDeclaredMax warns when a declared max_* bound disagrees with the step
// range of the built table. The table wins; the declared field is advisory.
func (r *Resolver) checkDeclaredMax(series, field string, declared, tableMax int) {
	if declared != 0 && declared != tableMax {
		r.logger.Warn("declared maximum does not match table, preferring table",
			"error", ErrConfigInconsistency,
			"series", series,
			"field", field,
			"table_max", tableMax,
			"declared", declared,
		)
	}
}

// valuesFromMap converts a step→value map into a dense slice, enforcing a
// contiguous 0..max key range. Step codes are unique by construction (the
// YAML decoder rejects duplicate keys, which also resolves the historical
// duplicated-centre data entry).
func valuesFromMap(quantity string, m LevelMap) ([]level.Value, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("%s table is empty", quantity)
	}

	steps := make([]int, 0, len(m))
	for step := range m {
		if step < 0 {
			return nil, fmt.Errorf("%s table has negative step %d", quantity, step)
		}
		steps = append(steps, step)
	}
	sort.Ints(steps)

	max := steps[len(steps)-1]
	if max != len(m)-1 {
		return nil, fmt.Errorf("%s table has gaps: %d entries but max step %d", quantity, len(m), max)
	}

	values := make([]level.Value, max+1)
	for step, v := range m {
		values[step] = v
	}
	return values, nil
}

// tableFromMap builds a linear level table from a descriptor map.
func tableFromMap(quantity string, m LevelMap) (*level.Table, error) {
	values, err := valuesFromMap(quantity, m)
	if err != nil {
		return nil, err
	}
	return level.NewTable(quantity, values)
}

// copyNames clones an id→name map so resolved profiles never alias
// descriptor state.
func copyNames(m map[int]string) map[int]string {
	out := make(map[int]string, len(m))
	for id, name := range m {
		out[id] = name
	}
	return out
}

// detectAddressing classifies the enumerated zone ids. The scheme is
// amp-segmented only when every id decodes to a well-formed amp/zone pair;
// anything else is treated as direct addressing.
func detectAddressing(zones map[int]string) Addressing {
	if len(zones) == 0 {
		return AddressingDirect
	}
	for id := range zones {
		if _, err := SplitZone(id); err != nil {
			return AddressingDirect
		}
	}
	return AddressingAmpSegmented
}
