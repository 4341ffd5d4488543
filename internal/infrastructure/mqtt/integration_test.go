//go:build integration

package mqtt

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nerrad567/pico-bridge/internal/infrastructure/config"
)

// Integration tests against a live broker.
// These tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func integrationConfig(suffix string) config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "picobridge-int-" + suffix,
		},
		QoS:       1,
		KeepAlive: 30,
		Reconnect: config.MQTTReconnectConfig{
			MaxDelay: 5,
		},
	}
}

func integrationTopic(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("picobridge/int/%s/%d", t.Name(), time.Now().UnixNano())
}

// TestIntegration_PublishSubscribe round-trips a slider value through the broker.
func TestIntegration_PublishSubscribe(t *testing.T) {
	sub, err := Connect(integrationConfig("sub"))
	if err != nil {
		t.Fatalf("Connect(sub) error = %v", err)
	}
	defer sub.Close()

	pub, err := Connect(integrationConfig("pub"))
	if err != nil {
		t.Fatalf("Connect(pub) error = %v", err)
	}
	defer pub.Close()

	topic := integrationTopic(t)
	received := make(chan string, 1)
	if err := sub.Subscribe(topic, 1, func(_ string, payload []byte) error {
		received <- string(payload)
		return nil
	}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := pub.PublishString(topic, "7", 1, false); err != nil {
		t.Fatalf("PublishString() error = %v", err)
	}

	select {
	case got := <-received:
		if got != "7" {
			t.Errorf("received %q, want 7", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("message not received within 5s")
	}
}

// TestIntegration_WaitForMessage verifies the blocking single-read helper.
func TestIntegration_WaitForMessage(t *testing.T) {
	client, err := Connect(integrationConfig("wait"))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	pub, err := Connect(integrationConfig("wait-pub"))
	if err != nil {
		t.Fatalf("Connect(pub) error = %v", err)
	}
	defer pub.Close()

	topic := integrationTopic(t)

	go func() {
		// Give the subscribe a moment to reach the broker.
		time.Sleep(200 * time.Millisecond)
		_ = pub.PublishString(topic, "hello pico", 1, false)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, err := client.WaitForMessage(ctx, topic, 1)
	if err != nil {
		t.Fatalf("WaitForMessage() error = %v", err)
	}
	if string(payload) != "hello pico" {
		t.Errorf("WaitForMessage() = %q, want %q", payload, "hello pico")
	}
	if client.HasSubscription(topic) {
		t.Error("subscription left behind after WaitForMessage")
	}
}

// TestIntegration_SubscribeOnceTimeout checks a silent topic cannot block forever.
func TestIntegration_SubscribeOnceTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := SubscribeOnce(ctx, integrationConfig("once"), integrationTopic(t))
	if err == nil {
		t.Fatal("SubscribeOnce() error = nil, want timeout")
	}
}

// TestIntegration_ConnectRefused checks an unreachable broker reports a network code.
func TestIntegration_ConnectRefused(t *testing.T) {
	cfg := integrationConfig("refused")
	cfg.Broker.Port = 1 // nothing listens here

	_, err := Connect(cfg)
	if err == nil {
		t.Fatal("Connect() error = nil, want failure")
	}
	if code := ReturnCode(err); code != ReturnCodeNetworkError {
		t.Errorf("ReturnCode() = %d, want %d", code, ReturnCodeNetworkError)
	}
}
