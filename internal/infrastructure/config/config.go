package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the multizone service.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Devices  []DeviceConfig `yaml:"devices"`
	Poll     PollConfig     `yaml:"poll"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServiceConfig contains service identity settings.
type ServiceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DeviceConfig describes one amplifier under this service's control.
type DeviceConfig struct {
	// ID is the stable identifier used in MQTT topics and history rows.
	ID string `yaml:"id"`

	// Series selects the descriptor series, e.g. "zpr68" or "dax88".
	Series string `yaml:"series"`

	// Manufacturer and Model select the supported model within the series.
	Manufacturer string `yaml:"manufacturer"`
	Model        string `yaml:"model"`

	// Port is the serial device path, e.g. "/dev/ttyUSB0".
	Port string `yaml:"port"`
}

// PollConfig contains background status polling settings.
type PollConfig struct {
	// Enabled switches the background status poller on.
	Enabled bool `yaml:"enabled"`

	// Interval is the base poll cadence in seconds. Descriptor skip counts
	// stretch the effective cadence per device.
	Interval int `yaml:"interval"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// HistoryRetentionDays bounds how long zone status snapshots are kept.
	// Zero keeps them forever and disables the prune loop.
	HistoryRetentionDays int `yaml:"history_retention_days"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: MULTIZONE_SECTION_KEY
// For example: MULTIZONE_DATABASE_PATH, MULTIZONE_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			ID:   "multizone-001",
			Name: "Multizone",
		},
		Poll: PollConfig{
			Enabled:  true,
			Interval: 30,
		},
		Database: DatabaseConfig{
			Path:                 "./data/multizone.db",
			WALMode:              true,
			BusyTimeout:          5,
			HistoryRetentionDays: 30,
		},
		MQTT: MQTTConfig{
			Enabled: true,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "multizone-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: MULTIZONE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("MULTIZONE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("MULTIZONE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("MULTIZONE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MULTIZONE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("MULTIZONE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Poll interval, for temporarily slowing a site's polling without a
	// config rollout.
	if v := os.Getenv("MULTIZONE_POLL_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Poll.Interval = n
		}
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Service validation
	if c.Service.ID == "" {
		errs = append(errs, "service.id is required")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Database.HistoryRetentionDays < 0 {
		errs = append(errs, "database.history_retention_days must not be negative")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Poll validation
	if c.Poll.Enabled && c.Poll.Interval < 1 {
		errs = append(errs, "poll.interval must be at least 1 second when polling is enabled")
	}

	// Device validation
	seen := make(map[string]bool, len(c.Devices))
	for i, dev := range c.Devices {
		if dev.ID == "" {
			errs = append(errs, fmt.Sprintf("devices[%d].id is required", i))
			continue
		}
		if seen[dev.ID] {
			errs = append(errs, fmt.Sprintf("devices[%d].id %q is duplicated", i, dev.ID))
		}
		seen[dev.ID] = true
		if dev.Series == "" {
			errs = append(errs, fmt.Sprintf("device %q: series is required", dev.ID))
		}
		if dev.Manufacturer == "" || dev.Model == "" {
			errs = append(errs, fmt.Sprintf("device %q: manufacturer and model are required", dev.ID))
		}
		if dev.Port == "" {
			errs = append(errs, fmt.Sprintf("device %q: port is required", dev.ID))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// PollInterval returns the base poll cadence as a Duration.
func (c *Config) PollInterval() time.Duration {
	if !c.Poll.Enabled {
		return 0
	}
	return time.Duration(c.Poll.Interval) * time.Second
}

// HistoryRetention returns how long status snapshots are kept. Zero means
// keep forever.
func (c *Config) HistoryRetention() time.Duration {
	return time.Duration(c.Database.HistoryRetentionDays) * 24 * time.Hour
}
