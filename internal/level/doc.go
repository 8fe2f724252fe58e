// Package level implements the mapping between raw hardware step codes and
// human-meaningful audio levels for multi-zone amplifiers.
//
// Amplifiers expose quantities such as volume, bass, treble, and balance as
// small integer step codes on the wire. What a step means in decibels varies
// per device and is described by the device's capability descriptor. This
// package provides the two table shapes those descriptors use:
//
//   - Table: a linear mapping for volume/bass/treble, where step codes rise
//     monotonically in dB at a fixed per-step delta.
//   - BalanceTable: a split-channel mapping for balance, where a single step
//     axis attenuates either the left or the right channel around a centre
//     step, with the extreme steps fully muting one channel.
//
// Values are represented by Value, which is either a finite dB figure or the
// mute sentinel. Conversions are pure functions over immutable tables;
// out-of-bounds steps and unrepresentable values fail with ErrOutOfRange.
//
// # Rounding
//
// Human→step conversion rounds to the nearest tabulated step. Exact midpoints
// round to the even step code, so repeated round-trips are stable.
package level
