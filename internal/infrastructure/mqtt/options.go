package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/openav/multizone-core/internal/infrastructure/config"
)

const (
	// defaultConnectTimeout bounds the initial broker dial.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout bounds publish, subscribe and unsubscribe acks.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the drain window on disconnect, in
	// milliseconds per the paho API.
	defaultDisconnectQuiesce = 1000

	// defaultKeepAlive paces connection-liveness pings.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the highest valid QoS level.
	maxQoS = 2

	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions maps the service's MQTT config onto paho options:
// broker URL, client id, optional credentials and TLS, and auto-reconnect
// with exponential backoff.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))

	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Fresh session each connect; retained status topics carry the state.
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	return opts
}

// configureLWT arms the broker-side Last Will: if the service dies without
// a clean disconnect, subscribers on the system status topic see an
// unexpected_disconnect payload instead of a stale "online".
func configureLWT(opts *pahomqtt.ClientOptions, clientID string) {
	willTopic := Topics{}.SystemStatus()
	willPayload := fmt.Sprintf(
		`{"status":"offline","client_id":"%s","reason":"unexpected_disconnect","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)

	opts.SetWill(willTopic, willPayload, 1, true)
}

func buildOnlinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"online","client_id":"%s","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}

func buildOfflinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"offline","client_id":"%s","reason":"graceful_shutdown","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}
