// Package conntest provides an in-memory connection.Conn for tests.
package conntest

import (
	"sync"

	"github.com/nerrad567/pico-bridge/internal/infrastructure/mqtt"
)

// Message is one recorded publish.
type Message struct {
	Topic    string
	Payload  string
	QoS      byte
	Retained bool
}

// Conn records publishes and routes Deliver calls to subscribed handlers.
// The zero value is not usable; call New.
type Conn struct {
	mu sync.Mutex

	// PublishErr, when set, is returned by every Publish.
	PublishErr error
	// SubscribeErr, when set, is returned by every Subscribe.
	SubscribeErr error

	connected bool
	closes    int
	published []Message
	handlers  map[string]mqtt.MessageHandler
}

// New returns a connected Conn.
func New() *Conn {
	return &Conn{
		connected: true,
		handlers:  make(map[string]mqtt.MessageHandler),
	}
}

// Publish records the message.
func (c *Conn) Publish(topic string, payload []byte, qos byte, retained bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.PublishErr != nil {
		return c.PublishErr
	}
	if !c.connected {
		return mqtt.ErrNotConnected
	}
	c.published = append(c.published, Message{Topic: topic, Payload: string(payload), QoS: qos, Retained: retained})
	return nil
}

// Subscribe stores handler for topic.
func (c *Conn) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SubscribeErr != nil {
		return c.SubscribeErr
	}
	c.handlers[topic] = handler
	return nil
}

// Unsubscribe drops the handler for topic.
func (c *Conn) Unsubscribe(topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, topic)
	return nil
}

// IsConnected reports whether Close or SetConnected(false) was called.
func (c *Conn) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// SetSubscribeErr sets the error returned by later Subscribe calls.
// Nil makes Subscribe succeed again.
func (c *Conn) SetSubscribeErr(err error) {
	c.mu.Lock()
	c.SubscribeErr = err
	c.mu.Unlock()
}

// SetConnected flips the connection state.
func (c *Conn) SetConnected(connected bool) {
	c.mu.Lock()
	c.connected = connected
	c.mu.Unlock()
}

// Close marks the connection closed.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	c.closes++
	return nil
}

// Closes reports how many times Close was called.
func (c *Conn) Closes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

// Published returns a copy of every recorded publish.
func (c *Conn) Published() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.published))
	copy(out, c.published)
	return out
}

// Subscribed reports whether a handler is registered for topic.
func (c *Conn) Subscribed(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.handlers[topic]
	return ok
}

// Deliver invokes the handler for topic synchronously.
// It reports false when nothing is subscribed.
func (c *Conn) Deliver(topic string, payload []byte) bool {
	c.mu.Lock()
	h, ok := c.handlers[topic]
	c.mu.Unlock()
	if !ok {
		return false
	}
	_ = h(topic, payload)
	return true
}
