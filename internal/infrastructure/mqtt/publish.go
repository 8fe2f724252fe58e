package mqtt

import (
	"fmt"
)

// maxPayloadSize caps a single message at 1MB. Zone status snapshots are a
// few hundred bytes; anything near this limit is a caller bug.
const maxPayloadSize = 1 << 20

// Publish sends one message to the broker.
//
// Status snapshots are published retained so integrations joining later
// still see the current zone state; commands and events are not retained.
//
// Parameters:
//   - topic: Destination topic, usually built via Topics
//   - payload: Message body, typically JSON
//   - qos: Delivery guarantee (0 at most once, 1 at least once, 2 exactly once)
//   - retained: Whether the broker keeps the message for new subscribers
//
// Returns:
//   - error: nil on acknowledgment, otherwise a wrapped sentinel error
//
// Example:
//
//	topic := mqtt.Topics{}.ZoneStatus("acurus-main", 3)
//	err := client.Publish(topic, payload, 1, true)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}
