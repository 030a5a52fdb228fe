// Package mqtt provides broker access with an abstraction for testing.
package mqtt

import "sync"

// MessageHandler receives messages delivered on a subscribed topic.
type MessageHandler func(topic string, payload []byte)

// Client is the broker surface the thermostat needs: publish switch
// commands, subscribe to sensor and switch-state topics.
type Client interface {
	// Publish sends a payload to the broker. Returns error if publishing
	// fails (should not crash the process).
	Publish(topic string, payload []byte, retained bool) error

	// Subscribe registers a handler for a topic. Handlers run on the
	// client's delivery goroutine; they may do bounded work (a control
	// pass, publishes capped by the publish timeout) but must not block
	// indefinitely, or deliveries back up.
	Subscribe(topic string, handler MessageHandler) error

	// Close disconnects from the broker.
	Close()
}

// Message is a recorded publish, used by the fake client.
type Message struct {
	Topic    string
	Payload  []byte
	Retained bool
}

// FakeClient records publishes and lets tests deliver inbound messages.
type FakeClient struct {
	mu       sync.Mutex
	handlers map[string]MessageHandler

	// Published contains every message sent through Publish, in order.
	Published []Message

	// PublishErr, if set, will be returned by Publish.
	PublishErr error

	// SubscribeErr, if set, will be returned by Subscribe.
	SubscribeErr error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeClient creates a FakeClient for testing.
func NewFakeClient() *FakeClient {
	return &FakeClient{handlers: map[string]MessageHandler{}}
}

// Publish records the message.
func (f *FakeClient) Publish(topic string, payload []byte, retained bool) error {
	if f.PublishErr != nil {
		return f.PublishErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Published = append(f.Published, Message{Topic: topic, Payload: payload, Retained: retained})
	return nil
}

// Subscribe registers the handler for later Deliver calls.
func (f *FakeClient) Subscribe(topic string, handler MessageHandler) error {
	if f.SubscribeErr != nil {
		return f.SubscribeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = handler
	return nil
}

// Close marks the client as closed.
func (f *FakeClient) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
}

// Deliver invokes the handler subscribed to topic, simulating an inbound
// broker message. Unsubscribed topics are dropped, as a broker would.
func (f *FakeClient) Deliver(topic string, payload []byte) {
	f.mu.Lock()
	h := f.handlers[topic]
	f.mu.Unlock()
	if h != nil {
		h(topic, payload)
	}
}

// LastPublished returns the most recent publish on topic, if any.
func (f *FakeClient) LastPublished(topic string) (Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.Published) - 1; i >= 0; i-- {
		if f.Published[i].Topic == topic {
			return f.Published[i], true
		}
	}
	return Message{}, false
}
