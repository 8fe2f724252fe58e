package level

import "errors"

// Domain errors for the level package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, level.ErrOutOfRange) {
//	    // caller supplied a step or value outside the table bounds
//	}
var (
	// ErrOutOfRange is returned when a step code is outside [0, max] for a
	// table, or a human value is outside the table's representable span.
	ErrOutOfRange = errors.New("level: out of range")

	// ErrInvalidTable is returned when a table is constructed from data that
	// violates the table invariants (empty, non-monotonic, duplicate mute
	// placement, or a balance table without a centre or mute extreme).
	ErrInvalidTable = errors.New("level: invalid table")
)
