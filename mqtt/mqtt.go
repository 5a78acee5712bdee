// mqtt.go - MQTT client used to broadcast marketplace change notifications

package mqtt // Declares the package name

import ( // Import required packages
	"encoding/json" // Payload encoding
	"errors"        // Sentinel errors
	"fmt"           // Error wrapping
	"sync"          // Guards the shared client
	"time"          // Connect and publish timeouts

	paho "github.com/eclipse/paho.mqtt.golang" // Eclipse Paho MQTT client
)

const topicPrefix = "marketplace" // Root of every published topic

var (
	mu     sync.RWMutex
	client paho.Client // nil while notifications are disabled

	// ErrTimeout is returned when the broker does not acknowledge in time.
	ErrTimeout = errors.New("mqtt: timed out")
)

// Connect - Connects to broker (e.g. tcp://localhost:1883).
// An empty broker disables notifications: Publish becomes a no-op.
func Connect(broker, clientID string) error {
	if broker == "" {
		return nil
	}
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	c := paho.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("connect %s: %w", broker, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect %s: %w", broker, err)
	}

	mu.Lock()
	client = c
	mu.Unlock()
	return nil
}

// Enabled reports whether a broker connection is configured.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return client != nil
}

// Disconnect closes the broker connection, waiting up to 250ms for in-flight work.
func Disconnect() {
	mu.Lock()
	defer mu.Unlock()
	if client != nil {
		client.Disconnect(250)
		client = nil
	}
}

// Publish - Sends payload to topic with QoS 1. Non-string payloads are JSON encoded.
func Publish(topic string, payload interface{}) error {
	mu.RLock()
	c := client
	mu.RUnlock()
	if c == nil {
		return nil // notifications disabled
	}

	body, err := encode(payload)
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	token := c.Publish(topic, 1, false, body)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s: %w", topic, ErrTimeout)
	}
	return token.Error()
}

func encode(payload interface{}) ([]byte, error) {
	switch p := payload.(type) {
	case string:
		return []byte(p), nil
	case []byte:
		return p, nil
	default:
		return json.Marshal(p)
	}
}

// UserTopic - Topic for identity sync events, e.g. marketplace/users/created.
func UserTopic(event string) string {
	return topicPrefix + "/users/" + event
}

// CatalogTopic - Topic for catalog mutations, e.g. marketplace/catalog/category/created.
func CatalogTopic(entity, action string) string {
	return topicPrefix + "/catalog/" + entity + "/" + action
}
