// Package history persists zone status snapshots to SQLite.
//
// Every status decoded from an amplifier (polled or queried) can be
// recorded here, giving the service a local record of zone state over time
// and a source for restoring zones after power loss. Snapshots are stored
// as JSON in the zone_status_history table.
//
// Thread Safety: the repository is safe for concurrent use; SQLite
// serializes writers underneath.
package history
