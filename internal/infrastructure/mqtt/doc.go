// Package mqtt provides MQTT client connectivity for the multizone service.
//
// This package manages:
//   - Connection to Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The service uses MQTT as its external message bus: zone status updates
// flow out to integrations (home automation controllers, dashboards) and
// zone commands flow in. The broker (Mosquitto) decouples the control
// engine from its consumers.
//
//	Multizone Core ↔ MQTT Broker ↔ Integrations
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all incoming zone commands
//	err = client.Subscribe(mqtt.Topics{}.AllZoneCommands(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish zone status
//	topic := mqtt.Topics{}.ZoneStatus("acurus-main", 3)
//	client.Publish(topic, []byte(`{"power":true}`), 1, false)
package mqtt
