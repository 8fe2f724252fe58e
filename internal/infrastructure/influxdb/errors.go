package influxdb

import "errors"

// Sentinel errors for the telemetry client. Check with errors.Is; callers
// mostly only care about ErrDisabled, which lets main skip telemetry
// wiring when the deployment has no InfluxDB.
var (
	// ErrNotConnected means HealthCheck found no live connection. Writes
	// themselves are async and report failures through the error callback.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed means the startup ping or health check failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled means telemetry is switched off in configuration.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
