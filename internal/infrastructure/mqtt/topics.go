package mqtt

import "fmt"

// Topic prefixes for the multizone MQTT surface.
//
// All topics use the flat scheme: multizone/{category}/{device}/{zone}
const (
	// TopicPrefix is the base for all multizone topics.
	TopicPrefix = "multizone"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "multizone/system"
)

// Topics provides builders for multizone MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	statusTopic := topics.ZoneStatus("lounge-amp", 3)
//	// Returns: "multizone/status/lounge-amp/3"
type Topics struct{}

// ZoneStatus returns the topic for zone state published by the service.
//
// Example: multizone/status/lounge-amp/3
func (Topics) ZoneStatus(deviceID string, zone int) string {
	return fmt.Sprintf("%s/status/%s/%d", TopicPrefix, deviceID, zone)
}

// ZoneCommand returns the topic for zone commands to the service.
//
// Example: multizone/command/lounge-amp/3
func (Topics) ZoneCommand(deviceID string, zone int) string {
	return fmt.Sprintf("%s/command/%s/%d", TopicPrefix, deviceID, zone)
}

// DeviceAvailability returns the topic for a device's online/offline state.
//
// Example: multizone/availability/lounge-amp
func (Topics) DeviceAvailability(deviceID string) string {
	return fmt.Sprintf("%s/availability/%s", TopicPrefix, deviceID)
}

// SystemStatus returns the service status topic.
//
// Example: multizone/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllZoneCommands returns a pattern matching zone commands for every device.
//
// Pattern: multizone/command/+/+
func (Topics) AllZoneCommands() string {
	return fmt.Sprintf("%s/command/+/+", TopicPrefix)
}

// DeviceZoneCommands returns a pattern matching zone commands for one device.
//
// Pattern: multizone/command/lounge-amp/+
func (Topics) DeviceZoneCommands(deviceID string) string {
	return fmt.Sprintf("%s/command/%s/+", TopicPrefix, deviceID)
}

// AllZoneStatuses returns a pattern matching zone status for every device.
//
// Pattern: multizone/status/+/+
func (Topics) AllZoneStatuses() string {
	return fmt.Sprintf("%s/status/+/+", TopicPrefix)
}

// AllTopics returns a pattern matching all multizone topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: multizone/#
func (Topics) AllTopics() string {
	return "multizone/#"
}
