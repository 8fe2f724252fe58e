// Package bridge connects amplifier connections to the MQTT bus.
//
// It subscribes to zone command topics, dispatches parsed commands to the
// owning connection, and publishes decoded zone status back out. Status
// snapshots are mirrored to the history repository and, when configured,
// to InfluxDB telemetry.
//
// # Topic flow
//
//	multizone/command/{device}/{zone}  →  bridge  →  amp.Connection
//	amp.Connection (poll/query)        →  bridge  →  multizone/status/{device}/{zone}
//
// Command payloads carry decibel values; the bridge hands them to the
// connection as level.Value and the connection's profile tables translate
// to hardware steps. Published status payloads are likewise decoded back
// to decibels, so MQTT consumers never see raw step codes.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Incoming commands for the same
// device serialise on that device's connection worker.
package bridge
