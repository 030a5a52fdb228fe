package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// RealClient talks to an actual MQTT broker.
type RealClient struct {
	client paho.Client
}

// Connect dials the broker and waits for the session to come up.
func Connect(broker, clientID string) (*RealClient, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetResumeSubs(true)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &RealClient{client: client}, nil
}

// Publish sends a payload to the broker.
func (c *RealClient) Publish(topic string, payload []byte, retained bool) error {
	// QoS 0 (at-most-once): a lost command is re-issued by the next
	// evaluation or keep-alive pass.
	token := c.client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Subscribe registers a handler for a topic at QoS 1.
func (c *RealClient) Subscribe(topic string, handler MessageHandler) error {
	token := c.client.Subscribe(topic, 1, func(_ paho.Client, msg paho.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("subscribe timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (c *RealClient) Close() {
	c.client.Disconnect(1000) // 1 second timeout
}
