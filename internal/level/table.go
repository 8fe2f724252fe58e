package level

import (
	"fmt"
	"math"
)

// tieEpsilon is the tolerance used when deciding whether a human value sits
// exactly between two adjacent steps. Within this tolerance the conversion
// rounds to the even step code.
const tieEpsilon = 1e-9

// Table is a linear level table: an immutable ordered mapping from integer
// step codes 0..MaxStep() to dB values (or, rarely, a tabulated mute
// sentinel, e.g. a volume table whose step 0 is full mute).
//
// Non-mute entries rise strictly monotonically, matching hardware that maps
// step codes to dB at a fixed per-step delta.
//
// Thread Safety:
//   - Tables are immutable after construction and safe for concurrent use.
type Table struct {
	quantity string
	steps    []Value
	minDB    float64
	maxDB    float64
	muteStep int // first tabulated mute step, -1 if none
}

// NewTable builds a linear table for the named quantity ("volume", "bass",
// "treble"). The slice index is the step code.
//
// Returns ErrInvalidTable if the table is empty, has no finite entries, or
// its finite entries are not strictly increasing.
func NewTable(quantity string, steps []Value) (*Table, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: %s table is empty", ErrInvalidTable, quantity)
	}

	t := &Table{
		quantity: quantity,
		steps:    append([]Value(nil), steps...),
		muteStep: -1,
	}

	first := true
	prev := 0.0
	for step, v := range t.steps {
		if v.IsMute() {
			if t.muteStep == -1 {
				t.muteStep = step
			}
			continue
		}
		if first {
			t.minDB = v.Decibels()
			first = false
		} else if v.Decibels() <= prev {
			return nil, fmt.Errorf("%w: %s table not monotonic at step %d", ErrInvalidTable, quantity, step)
		}
		prev = v.Decibels()
		t.maxDB = v.Decibels()
	}
	if first {
		return nil, fmt.Errorf("%w: %s table has no finite entries", ErrInvalidTable, quantity)
	}

	return t, nil
}

// Quantity returns the quantity name this table maps ("volume", "bass", ...).
func (t *Table) Quantity() string {
	return t.quantity
}

// MaxStep returns the highest valid step code.
func (t *Table) MaxStep() int {
	return len(t.steps) - 1
}

// Span returns the lowest and highest finite dB values in the table.
func (t *Table) Span() (minDB, maxDB float64) {
	return t.minDB, t.maxDB
}

// Decode converts a raw hardware step code to its human value.
//
// Returns ErrOutOfRange if step is outside [0, MaxStep()].
func (t *Table) Decode(step int) (Value, error) {
	if step < 0 || step >= len(t.steps) {
		return Value{}, fmt.Errorf("%w: %s step %d outside [0, %d]", ErrOutOfRange, t.quantity, step, t.MaxStep())
	}
	return t.steps[step], nil
}

// Encode converts a human value to the nearest step code.
//
// A mute sentinel encodes to the tabulated mute step; if the table has no
// mute entry the conversion fails with ErrOutOfRange. Finite values outside
// the table's dB span also fail with ErrOutOfRange. Exact midpoints between
// two steps round to the even step code.
func (t *Table) Encode(v Value) (int, error) {
	if v.IsMute() {
		if t.muteStep == -1 {
			return 0, fmt.Errorf("%w: %s table has no mute entry", ErrOutOfRange, t.quantity)
		}
		return t.muteStep, nil
	}

	db := v.Decibels()
	if db < t.minDB-tieEpsilon || db > t.maxDB+tieEpsilon {
		return 0, fmt.Errorf("%w: %s %.2fdB outside [%.2f, %.2f]",
			ErrOutOfRange, t.quantity, db, t.minDB, t.maxDB)
	}

	best := -1
	bestDist := 0.0
	for step, entry := range t.steps {
		if entry.IsMute() {
			continue
		}
		dist := math.Abs(db - entry.Decibels())
		switch {
		case best == -1 || dist < bestDist-tieEpsilon:
			best = step
			bestDist = dist
		case math.Abs(dist-bestDist) <= tieEpsilon && best%2 != 0 && step%2 == 0:
			// Exact midpoint: ties round to the even step code.
			best = step
			bestDist = dist
		}
	}
	return best, nil
}
