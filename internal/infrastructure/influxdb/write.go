package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteZoneStatus writes a decoded zone status snapshot to InfluxDB.
//
// This is the primary method for recording zone telemetry. The write is
// non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: Amplifier identifier from config (e.g., "acurus-main")
//   - zone: Zone identifier as reported by the device
//   - fields: Field values for the snapshot (power, mute, volume_db, source, ...)
//
// Example:
//
//	client.WriteZoneStatus("acurus-main", 3, map[string]interface{}{
//	    "power":     true,
//	    "volume_db": -24.87,
//	    "source":    4,
//	})
func (c *Client) WriteZoneStatus(deviceID string, zone int, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"zone_status",
		map[string]string{
			"device_id": deviceID,
			"zone":      strconv.Itoa(zone),
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteZoneLevel writes a single level change for a zone control.
//
// Used for tracking volume, bass, treble and balance adjustments over
// time. Records both the decibel value and the raw hardware step so
// dashboards can show either.
//
// Parameters:
//   - deviceID: Amplifier identifier
//   - zone: Zone identifier
//   - control: Control name ("volume", "bass", "treble", "balance")
//   - db: Level in decibels
//   - step: Raw hardware step code sent on the wire
func (c *Client) WriteZoneLevel(deviceID string, zone int, control string, db float64, step int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"zone_level",
		map[string]string{
			"device_id": deviceID,
			"zone":      strconv.Itoa(zone),
			"control":   control,
		},
		map[string]interface{}{
			"db":   db,
			"step": step,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCommandMetric records a command round-trip for latency tracking.
//
// Parameters:
//   - deviceID: Amplifier identifier
//   - action: Command action name (e.g., "power", "volume")
//   - duration: Wall time from submit to device acknowledgement
//   - ok: Whether the command succeeded
func (c *Client) WriteCommandMetric(deviceID string, action string, duration time.Duration, ok bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"command",
		map[string]string{
			"device_id": deviceID,
			"action":    action,
		},
		map[string]interface{}{
			"duration_ms": float64(duration.Microseconds()) / 1000.0,
			"ok":          ok,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "core-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
