// Package amp drives a single multi-zone amplifier over its control port.
//
// # Architecture
//
// A Connection owns one Transport (usually a serial port), one protocol
// codec and one resolved device profile. All traffic is serialized through
// a worker goroutine: zone commands, forced status queries and the
// background status poll share one queue, so frames never interleave on
// the wire and the amplifier's minimum command spacing is honoured by a
// Pacer between consecutive sends.
//
// The status poller runs on the connection's poll interval. Descriptors
// can declare a poll skip: a skip of N lets N poll cycles elapse between
// hardware queries, for amplifiers whose control ports degrade under
// constant polling. Forced queries via Status bypass the skip.
//
// Levels cross this package's API as decibel values; the profile's tables
// translate them to hardware step codes before the codec formats frames.
//
// Thread Safety: Connection methods are safe for concurrent use.
package amp
