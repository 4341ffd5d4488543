package connection

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nerrad567/pico-bridge/internal/infrastructure/config"
	"github.com/nerrad567/pico-bridge/internal/infrastructure/mqtt"
)

// clientIDSuffixLen is how much of a UUID is appended to the client ID prefix.
const clientIDSuffixLen = 8

// Conn is the broker handle shared by every session.
// *mqtt.Client satisfies it.
type Conn interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	IsConnected() bool
	Close() error
}

// Dialer opens a broker connection for cfg.
type Dialer func(cfg config.MQTTConfig) (Conn, error)

// Logger defines the logging interface used by the Manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for connect results and link events.
func WithLogger(logger Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDialer replaces the paho dialer. Used by tests.
func WithDialer(dial Dialer) Option {
	return func(m *Manager) {
		if dial != nil {
			m.dial = dial
		}
	}
}

// Manager lazily creates and memoizes the broker connection.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Concurrent first calls to Get block until the single dial finishes.
type Manager struct {
	cfg    config.MQTTConfig
	dial   Dialer
	logger Logger

	once sync.Once

	mu     sync.Mutex
	conn   Conn
	err    error
	dials  int
	closed bool
}

// NewManager creates a Manager for cfg. No network activity happens until Get.
//
// The client ID sent to the broker is cfg.Broker.ClientID followed by a dash
// and a random suffix, so several instances can share a broker.
func NewManager(cfg config.MQTTConfig, opts ...Option) *Manager {
	cfg.Broker.ClientID = clientID(cfg.Broker.ClientID)

	m := &Manager{
		cfg:    cfg,
		logger: noopLogger{},
	}
	m.dial = m.dialBroker
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func clientID(prefix string) string {
	suffix := uuid.NewString()[:clientIDSuffixLen]
	if prefix == "" {
		return suffix
	}
	return prefix + "-" + suffix
}

// ClientID returns the identifier presented to the broker.
func (m *Manager) ClientID() string {
	return m.cfg.Broker.ClientID
}

// Get returns the shared connection, dialing on first use.
//
// The dial happens exactly once per Manager. Its outcome, connection or
// error, is returned to every caller.
func (m *Manager) Get(ctx context.Context) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.isClosed() {
		return nil, ErrClosed
	}

	m.once.Do(m.connect)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	return m.conn, m.err
}

// connect performs the single dial and reports its reason code.
func (m *Manager) connect() {
	conn, err := m.dial(m.cfg)

	m.mu.Lock()
	m.dials++
	if err != nil {
		m.err = fmt.Errorf("connecting to %s: %w", m.cfg.BrokerAddress(), err)
	} else {
		m.conn = conn
	}
	closed := m.closed
	m.mu.Unlock()

	if err != nil {
		m.logger.Error("failed to connect to MQTT broker",
			"reason_code", mqtt.ReturnCode(err),
			"broker", m.cfg.BrokerAddress(),
			"client_id", m.cfg.Broker.ClientID,
			"error", err,
		)
		return
	}

	m.logger.Info("connected to MQTT broker",
		"reason_code", mqtt.ReturnCodeAccepted,
		"broker", m.cfg.BrokerAddress(),
		"client_id", m.cfg.Broker.ClientID,
	)

	// Close raced with the dial.
	if closed {
		m.closeConn(conn)
	}
}

// dialBroker is the default Dialer backed by paho.
func (m *Manager) dialBroker(cfg config.MQTTConfig) (Conn, error) {
	client, err := mqtt.Connect(cfg)
	if err != nil {
		return nil, err
	}

	client.SetLogger(m.logger)
	client.SetOnConnect(func() {
		m.logger.Info("MQTT connection restored", "client_id", cfg.Broker.ClientID)
	})
	client.SetOnDisconnect(func(err error) {
		m.logger.Warn("MQTT connection lost", "client_id", cfg.Broker.ClientID, "error", err)
	})
	return client, nil
}

// Dials reports how many connect attempts were made (0 or 1).
func (m *Manager) Dials() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dials
}

// HealthCheck reports the state of the shared connection.
//
// It never dials: before the first Get it returns ErrNotDialed, after a
// failed dial it returns the recorded error.
func (m *Manager) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	conn, err, dials, closed := m.conn, m.err, m.dials, m.closed
	m.mu.Unlock()

	switch {
	case closed:
		return ErrClosed
	case dials == 0:
		return ErrNotDialed
	case err != nil:
		return err
	}

	if hc, ok := conn.(interface{ HealthCheck(context.Context) error }); ok {
		return hc.HealthCheck(ctx)
	}
	if !conn.IsConnected() {
		return mqtt.ErrNotConnected
	}
	return nil
}

// Close tears down the connection. It is idempotent and safe to call when
// Get was never called.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	conn := m.conn
	m.mu.Unlock()

	if conn != nil {
		return m.closeConn(conn)
	}
	return nil
}

func (m *Manager) closeConn(conn Conn) error {
	if err := conn.Close(); err != nil {
		m.logger.Error("error closing MQTT connection", "error", err)
		return fmt.Errorf("closing MQTT connection: %w", err)
	}
	m.logger.Info("disconnected from MQTT broker", "client_id", m.cfg.Broker.ClientID)
	return nil
}

func (m *Manager) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
