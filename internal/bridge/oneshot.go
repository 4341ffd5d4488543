package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/pico-bridge/internal/infrastructure/config"
	"github.com/nerrad567/pico-bridge/internal/infrastructure/mqtt"
)

// waitFunc performs one connect, wait, disconnect cycle.
type waitFunc func(ctx context.Context, cfg config.MQTTConfig, topic string) ([]byte, error)

// OneshotSource opens a transient connection for every Receive and waits
// for a single message, bounded by a timeout.
type OneshotSource struct {
	cfg     config.MQTTConfig
	topic   string
	timeout time.Duration
	wait    waitFunc
}

// NewOneshotSource creates a source reading one message from topic per call.
// The transient connections use cfg's broker with their own client IDs.
func NewOneshotSource(cfg config.MQTTConfig, topic string, timeout time.Duration) *OneshotSource {
	return &OneshotSource{
		cfg:     cfg,
		topic:   topic,
		timeout: timeout,
		wait:    mqtt.SubscribeOnce,
	}
}

// Receive blocks until a message arrives or the timeout expires.
// A timeout yields ErrReceiveTimeout; ok is never false on success.
func (s *OneshotSource) Receive(ctx context.Context) ([]byte, bool, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cfg := s.cfg
	cfg.Broker.ClientID = cfg.Broker.ClientID + "-once-" + uuid.NewString()[:8]

	payload, err := s.wait(ctx, cfg, s.topic)
	if err != nil {
		if errors.Is(err, mqtt.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return nil, false, fmt.Errorf("%w: %s after %v", ErrReceiveTimeout, s.topic, s.timeout)
		}
		return nil, false, fmt.Errorf("receiving from %s: %w", s.topic, err)
	}
	return payload, true, nil
}
