package mqtt

import (
	"context"
	"fmt"

	"github.com/nerrad567/pico-bridge/internal/infrastructure/config"
)

// Subscribe registers a handler for messages on the specified topic.
//
// Topics can include MQTT wildcards (+ single level, # multi level).
// Subscriptions are tracked and restored after a reconnect.
//
// Parameters:
//   - topic: The topic pattern to subscribe to
//   - qos: Maximum QoS level for received messages (0, 1, or 2)
//   - handler: Callback function invoked for each message
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.subMu.Lock()
	c.subscriptions[topic] = subscription{topic: topic, qos: qos, handler: handler}
	c.subMu.Unlock()

	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	if !token.WaitTimeout(defaultPublishTimeout) {
		c.forget(topic)
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		c.forget(topic)
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	return nil
}

// Unsubscribe removes a subscription. Messages already in flight may still
// be delivered to the old handler.
func (c *Client) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.forget(topic)

	token := c.client.Unsubscribe(topic)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrUnsubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsubscribeFailed, err)
	}

	return nil
}

// forget drops topic from the reconnect tracking table.
func (c *Client) forget(topic string) {
	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()
}

// SubscriptionCount returns the number of active subscriptions.
func (c *Client) SubscriptionCount() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subscriptions)
}

// HasSubscription reports whether topic (exact string) is subscribed.
func (c *Client) HasSubscription(topic string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	_, exists := c.subscriptions[topic]
	return exists
}

// WaitForMessage subscribes to topic, blocks until the first message arrives
// or ctx is done, then unsubscribes.
//
// A cancelled or expired ctx yields an error wrapping ErrTimeout and the
// context error.
func (c *Client) WaitForMessage(ctx context.Context, topic string, qos byte) ([]byte, error) {
	received := make(chan []byte, 1)
	err := c.Subscribe(topic, qos, func(_ string, payload []byte) error {
		select {
		case received <- payload:
		default:
			// Only the first message matters
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // Best-effort; the subscription dies with the connection anyway
	defer c.Unsubscribe(topic)

	select {
	case payload := <-received:
		return payload, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for message on %s: %w", ErrTimeout, topic, ctx.Err())
	}
}

// SubscribeOnce opens a transient connection, waits for one message on
// topic, and disconnects.
//
// Every call pays the full connection cost. It exists for callers that
// want a single reading without holding a subscription open; ctx bounds the
// wait so a silent topic cannot block forever.
func SubscribeOnce(ctx context.Context, cfg config.MQTTConfig, topic string) ([]byte, error) {
	if topic == "" {
		return nil, ErrInvalidTopic
	}

	c, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	return c.WaitForMessage(ctx, topic, byte(cfg.QoS))
}
