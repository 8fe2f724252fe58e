// Package protocol implements the wire grammars spoken by supported
// multi-zone amplifiers.
//
// # Architecture
//
// Each amplifier family provides a Codec: a stateless translator between
// the engine's Command/ZoneStatus model and the family's serial grammar.
// Codecs are registered under the protocol identifiers that device
// descriptors reference, so a descriptor is only resolvable when a driver
// for its protocol exists.
//
// The Xantech family grammar (shared by Xantech matrix amplifiers, the
// ZPR68 preamplifier and the Dayton Audio DAX88) frames set commands as
// "<{zone}{CC}{vv}\r", status queries as "?{zone}\r", and status responses
// as "#>" followed by eleven two-digit fields terminated by "\r\n#". The
// Acurus ACT4 grammar is keyword based and carries no tone or balance
// controls.
//
// Codecs translate raw hardware step codes only; mapping steps to decibel
// values is the profile layer's concern.
//
// Thread Safety: codecs are stateless and safe for concurrent use. The
// registry is guarded by a mutex.
package protocol
