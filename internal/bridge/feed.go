package bridge

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/nerrad567/pico-bridge/internal/infrastructure/mqtt"
)

// Subscriber is the part of the broker connection a Feed needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Recorder receives a copy of every inbound payload, for telemetry.
type Recorder interface {
	RecordInbound(topic string, payload []byte)
}

// Feed holds one subscription to the inbound topic and copies each
// message into every attached Inbox.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Feed struct {
	topic string
	qos   byte

	mu       sync.RWMutex
	inboxes  map[*Inbox]struct{}
	sub      Subscriber
	stopped  bool
	recorder Recorder
	logger   Logger
}

// NewFeed creates a Feed for topic. Call Start to subscribe.
func NewFeed(topic string, qos byte) *Feed {
	return &Feed{
		topic:   topic,
		qos:     qos,
		inboxes: make(map[*Inbox]struct{}),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the feed.
func (f *Feed) SetLogger(logger Logger) {
	f.mu.Lock()
	f.logger = logger
	f.mu.Unlock()
}

// SetRecorder sets an optional telemetry sink.
func (f *Feed) SetRecorder(r Recorder) {
	f.mu.Lock()
	f.recorder = r
	f.mu.Unlock()
}

// Topic returns the subscribed topic.
func (f *Feed) Topic() string {
	return f.topic
}

// Start subscribes to the topic on sub. Calling Start again once
// subscribed is a no-op, so it can be called from every session's first
// render.
func (f *Feed) Start(sub Subscriber) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stopped {
		return ErrFeedStopped
	}
	if f.sub != nil {
		return nil
	}
	if err := sub.Subscribe(f.topic, f.qos, f.handle); err != nil {
		return fmt.Errorf("subscribing to %s: %w", f.topic, err)
	}
	f.sub = sub
	f.logger.Info("inbound feed subscribed", "topic", f.topic, "qos", f.qos)
	return nil
}

// Started reports whether the subscription is active.
func (f *Feed) Started() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.sub != nil
}

// Attach returns a new Inbox receiving every future message.
func (f *Feed) Attach(capacity int) *Inbox {
	in := NewInbox(capacity)
	f.mu.Lock()
	f.inboxes[in] = struct{}{}
	f.mu.Unlock()
	return in
}

// Detach stops delivery to in.
func (f *Feed) Detach(in *Inbox) {
	f.mu.Lock()
	delete(f.inboxes, in)
	f.mu.Unlock()
}

// Attached returns the number of attached inboxes.
func (f *Feed) Attached() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.inboxes)
}

// Stop unsubscribes. The feed cannot be restarted.
func (f *Feed) Stop() error {
	f.mu.Lock()
	sub := f.sub
	f.sub = nil
	f.stopped = true
	f.mu.Unlock()

	if sub == nil {
		return nil
	}
	if err := sub.Unsubscribe(f.topic); err != nil {
		return fmt.Errorf("unsubscribing from %s: %w", f.topic, err)
	}
	return nil
}

// handle is the broker callback. It runs on paho's delivery goroutine.
func (f *Feed) handle(topic string, payload []byte) error {
	// paho may reuse the buffer after the callback returns.
	msg := bytes.Clone(payload)

	f.mu.RLock()
	defer f.mu.RUnlock()

	dropped := 0
	for in := range f.inboxes {
		if in.Push(msg) {
			dropped++
		}
	}
	if dropped > 0 {
		f.logger.Debug("inbox full, dropped oldest payload", "topic", topic, "inboxes", dropped)
	}
	if f.recorder != nil {
		f.recorder.RecordInbound(topic, msg)
	}
	return nil
}
