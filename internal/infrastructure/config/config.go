package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Bridge modes.
const (
	// BridgeModePoll keeps one persistent subscription and lets each fragment
	// tick drain a bounded per-session inbox without blocking.
	BridgeModePoll = "poll"

	// BridgeModeOneshot connects, waits for a single message and disconnects
	// on every tick, bounded by Bridge.OneshotTimeout.
	BridgeModeOneshot = "oneshot"
)

// Config is the root configuration structure for Pico Bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Topics    TopicsConfig    `yaml:"topics"`
	Bridge    BridgeConfig    `yaml:"bridge"`
	UI        UIConfig        `yaml:"ui"`
	Session   SessionConfig   `yaml:"session"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	KeepAlive int                 `yaml:"keepalive"` // seconds
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	TLS  bool   `yaml:"tls"`

	// ClientID is the client identifier sent to the broker. The connection
	// manager treats it as a prefix and appends a random suffix.
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
// Both empty means anonymous access.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
// They only apply once a connection has been established; a failed
// initial connect is never retried.
type MQTTReconnectConfig struct {
	MaxDelay int `yaml:"max_delay"`
}

// TopicsConfig names the two topics the bridge works with.
type TopicsConfig struct {
	// Inbound is subscribed to by the event bridge.
	Inbound string `yaml:"inbound"`
	// Outbound receives the slider value from the command publisher.
	Outbound string `yaml:"outbound"`
}

// BridgeConfig controls how the event bridge obtains inbound messages.
type BridgeConfig struct {
	Mode           string        `yaml:"mode"`
	BufferSize     int           `yaml:"buffer_size"`
	OneshotTimeout time.Duration `yaml:"oneshot_timeout"`
}

// UIConfig describes the dashboard page.
type UIConfig struct {
	Title           string        `yaml:"title"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	Slider          SliderConfig  `yaml:"slider"`
	RadioOptions    []string      `yaml:"radio_options"`
}

// SliderConfig bounds the integer slider that drives the publisher.
type SliderConfig struct {
	Label   string `yaml:"label"`
	Min     int    `yaml:"min"`
	Max     int    `yaml:"max"`
	Default int    `yaml:"default"`
}

// SessionConfig controls the lifetime of browser sessions.
type SessionConfig struct {
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	JanitorInterval time.Duration `yaml:"janitor_interval"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
	// WebDir serves the UI from disk instead of the embedded assets (dev mode).
	WebDir string `yaml:"web_dir"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults), skipped if the file does not exist
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: PICOBRIDGE_SECTION_KEY
// For example: PICOBRIDGE_MQTT_HOST, PICOBRIDGE_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read or parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// Defaults reproduce the stock demo: localhost broker, fixed topics.
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration without reading any file or
// environment variable.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "picobridge",
			},
			QoS:       0,
			KeepAlive: 360,
			Reconnect: MQTTReconnectConfig{
				MaxDelay: 60,
			},
		},
		Topics: TopicsConfig{
			Inbound:  "mqtt/pico_data",
			Outbound: "mqtt/streamlit_data",
		},
		Bridge: BridgeConfig{
			Mode:           BridgeModePoll,
			BufferSize:     16,
			OneshotTimeout: 10 * time.Second,
		},
		UI: UIConfig{
			Title:           "Example of MQTT publishing and subscribing w/ Go.",
			RefreshInterval: 3 * time.Second,
			Slider: SliderConfig{
				Label:   "Update Interval",
				Min:     1,
				Max:     10,
				Default: 1,
			},
			RadioOptions: []string{"Off", "On"},
		},
		Session: SessionConfig{
			IdleTimeout:     30 * time.Minute,
			JanitorInterval: time.Minute,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8501,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: PICOBRIDGE_SECTION_KEY
// Unparseable numeric values are ignored and left to Validate.
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("PICOBRIDGE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("PICOBRIDGE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("PICOBRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("PICOBRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("PICOBRIDGE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("PICOBRIDGE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v := os.Getenv("PICOBRIDGE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("PICOBRIDGE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.KeepAlive < 0 {
		errs = append(errs, "mqtt.keepalive must not be negative")
	}

	// Topics must be concrete: the publisher cannot publish to a filter and
	// the bridge expects a single source.
	topics := []struct{ name, topic string }{
		{"topics.inbound", c.Topics.Inbound},
		{"topics.outbound", c.Topics.Outbound},
	}
	for _, t := range topics {
		if t.topic == "" {
			errs = append(errs, t.name+" is required")
		} else if strings.ContainsAny(t.topic, "+#") {
			errs = append(errs, t.name+" must not contain wildcards")
		}
	}

	// Bridge validation
	switch c.Bridge.Mode {
	case BridgeModePoll:
		if c.Bridge.BufferSize < 1 {
			errs = append(errs, "bridge.buffer_size must be at least 1")
		}
	case BridgeModeOneshot:
		if c.Bridge.OneshotTimeout <= 0 {
			errs = append(errs, "bridge.oneshot_timeout must be positive")
		}
	default:
		errs = append(errs, fmt.Sprintf("bridge.mode must be %q or %q", BridgeModePoll, BridgeModeOneshot))
	}

	// UI validation
	if c.UI.RefreshInterval <= 0 {
		errs = append(errs, "ui.refresh_interval must be positive")
	}
	if c.UI.Slider.Min >= c.UI.Slider.Max {
		errs = append(errs, "ui.slider.min must be less than ui.slider.max")
	} else if c.UI.Slider.Default < c.UI.Slider.Min || c.UI.Slider.Default > c.UI.Slider.Max {
		errs = append(errs, "ui.slider.default must be within [min, max]")
	}
	if len(c.UI.RadioOptions) == 0 {
		errs = append(errs, "ui.radio_options must not be empty")
	}

	// Session validation
	if c.Session.IdleTimeout <= 0 {
		errs = append(errs, "session.idle_timeout must be positive")
	}
	if c.Session.JanitorInterval <= 0 {
		errs = append(errs, "session.janitor_interval must be positive")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// WebSocket validation
	if c.WebSocket.MaxMessageSize < 1 {
		errs = append(errs, "websocket.max_message_size must be positive")
	}
	if c.WebSocket.PingInterval < 1 {
		errs = append(errs, "websocket.ping_interval must be at least 1 second")
	}
	if c.WebSocket.PongTimeout < 1 {
		errs = append(errs, "websocket.pong_timeout must be at least 1 second")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// BrokerAddress returns the broker address as host:port.
func (c MQTTConfig) BrokerAddress() string {
	return fmt.Sprintf("%s:%d", c.Broker.Host, c.Broker.Port)
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
