// Package logging provides structured logging for the multizone service.
//
// It wraps log/slog: JSON for production, text for development, with the
// service name and version stamped on every record. Each amplifier
// connection logs through a child logger carrying its device_id, so a
// deployment driving several amps can be filtered per device.
//
// Configured through the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Never log broker credentials or InfluxDB tokens.
package logging
