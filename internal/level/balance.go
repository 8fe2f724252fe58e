package level

import (
	"fmt"
	"math"
)

// Channel identifies one side of a split-channel balance table.
type Channel int

// Balance channels.
const (
	ChannelLeft Channel = iota
	ChannelRight
)

// String returns the channel name for logs and error messages.
func (c Channel) String() string {
	if c == ChannelLeft {
		return "left"
	}
	return "right"
}

// Pair is the decoded result of a balance step: the attenuation applied to
// each channel. Exactly one channel is attenuated (or muted) at a time; the
// other is fixed at 0 dB. At the centre step both channels are 0 dB.
type Pair struct {
	Left  Value `json:"left"`
	Right Value `json:"right"`
}

// BalanceTable is a split-channel level table. A single step axis
// 0..MaxStep() is folded around the centre step: steps below centre attenuate
// the left channel, steps above centre attenuate the right channel, and the
// distance from centre indexes the attenuation curve.
//
// Step 0 decodes to (mute, 0 dB) and MaxStep() to (0 dB, mute).
//
// Thread Safety:
//   - Balance tables are immutable after construction and safe for
//     concurrent use.
type BalanceTable struct {
	// attenuation is indexed by distance from the centre step.
	// attenuation[0] is 0 dB, the final entry is the mute sentinel.
	attenuation []Value
}

// NewBalanceTable builds a balance table from its attenuation curve, indexed
// by offset from the centre step. Offset 0 must be 0 dB, finite entries must
// fall strictly as the offset grows, and the final (extreme) entry must be
// the mute sentinel.
func NewBalanceTable(attenuation []Value) (*BalanceTable, error) {
	if len(attenuation) < 2 {
		return nil, fmt.Errorf("%w: balance curve needs a centre and at least one offset", ErrInvalidTable)
	}
	if attenuation[0].IsMute() || attenuation[0].Decibels() != 0 {
		return nil, fmt.Errorf("%w: balance curve must start at 0dB, got %s", ErrInvalidTable, attenuation[0])
	}
	last := attenuation[len(attenuation)-1]
	if !last.IsMute() {
		return nil, fmt.Errorf("%w: balance curve must end at mute, got %s", ErrInvalidTable, last)
	}

	prev := 0.0
	for offset, v := range attenuation[1:] {
		if v.IsMute() {
			if offset+1 != len(attenuation)-1 {
				return nil, fmt.Errorf("%w: balance curve mute before extreme offset", ErrInvalidTable)
			}
			continue
		}
		if v.Decibels() >= prev {
			return nil, fmt.Errorf("%w: balance curve not monotonic at offset %d", ErrInvalidTable, offset+1)
		}
		prev = v.Decibels()
	}

	return &BalanceTable{attenuation: append([]Value(nil), attenuation...)}, nil
}

// Center returns the step code at which both channels sit at 0 dB.
func (b *BalanceTable) Center() int {
	return len(b.attenuation) - 1
}

// MaxStep returns the highest valid step code (centre + maximum offset).
func (b *BalanceTable) MaxStep() int {
	return 2 * (len(b.attenuation) - 1)
}

// Decode converts a balance step code into the per-channel attenuation pair.
//
// Returns ErrOutOfRange if step is outside [0, MaxStep()].
func (b *BalanceTable) Decode(step int) (Pair, error) {
	if step < 0 || step > b.MaxStep() {
		return Pair{}, fmt.Errorf("%w: balance step %d outside [0, %d]", ErrOutOfRange, step, b.MaxStep())
	}

	center := b.Center()
	switch {
	case step < center:
		return Pair{Left: b.attenuation[center-step], Right: DB(0)}, nil
	case step > center:
		return Pair{Left: DB(0), Right: b.attenuation[step-center]}, nil
	default:
		return Pair{Left: DB(0), Right: DB(0)}, nil
	}
}

// DecodeChannel returns the attenuation applied to a single channel at the
// given step code.
func (b *BalanceTable) DecodeChannel(ch Channel, step int) (Value, error) {
	pair, err := b.Decode(step)
	if err != nil {
		return Value{}, err
	}
	if ch == ChannelLeft {
		return pair.Left, nil
	}
	return pair.Right, nil
}

// Encode converts a per-channel attenuation pair back to the nearest step
// code. Exactly one channel may be attenuated; the other must be 0 dB.
//
// The mute sentinel inverts only to the two extreme step codes. Pairs that
// attenuate both channels, or attenuate one beyond the curve's span, fail
// with ErrOutOfRange.
func (b *BalanceTable) Encode(p Pair) (int, error) {
	leftFlat := !p.Left.IsMute() && p.Left.Decibels() == 0
	rightFlat := !p.Right.IsMute() && p.Right.Decibels() == 0

	center := b.Center()
	switch {
	case leftFlat && rightFlat:
		return center, nil
	case rightFlat:
		offset, err := b.encodeOffset(ChannelLeft, p.Left)
		if err != nil {
			return 0, err
		}
		return center - offset, nil
	case leftFlat:
		offset, err := b.encodeOffset(ChannelRight, p.Right)
		if err != nil {
			return 0, err
		}
		return center + offset, nil
	default:
		return 0, fmt.Errorf("%w: balance pair %s/%s attenuates both channels", ErrOutOfRange, p.Left, p.Right)
	}
}

// EncodeChannel converts a single-channel attenuation into the step code that
// applies it, the other channel held at 0 dB.
func (b *BalanceTable) EncodeChannel(ch Channel, v Value) (int, error) {
	if ch == ChannelLeft {
		return b.Encode(Pair{Left: v, Right: DB(0)})
	}
	return b.Encode(Pair{Left: DB(0), Right: v})
}

// encodeOffset finds the curve offset nearest to the requested attenuation.
func (b *BalanceTable) encodeOffset(ch Channel, v Value) (int, error) {
	if v.IsMute() {
		return len(b.attenuation) - 1, nil
	}

	db := v.Decibels()
	if db > 0 {
		return 0, fmt.Errorf("%w: %s attenuation %.2fdB is positive", ErrOutOfRange, ch, db)
	}

	best := -1
	bestDist := 0.0
	floor := 0.0
	for offset, entry := range b.attenuation {
		if entry.IsMute() {
			continue
		}
		floor = entry.Decibels()
		dist := math.Abs(db - entry.Decibels())
		switch {
		case best == -1 || dist < bestDist-tieEpsilon:
			best = offset
			bestDist = dist
		case math.Abs(dist-bestDist) <= tieEpsilon && best%2 != 0 && offset%2 == 0:
			best = offset
			bestDist = dist
		}
	}
	if db < floor-tieEpsilon {
		return 0, fmt.Errorf("%w: %s attenuation %.2fdB beyond curve floor %.2fdB", ErrOutOfRange, ch, db, floor)
	}
	return best, nil
}
