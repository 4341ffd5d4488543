// Pico Bridge - MQTT dashboard for a Raspberry Pi Pico
//
// This is the main entry point for the Pico Bridge application. It serves a
// small reactive web page that:
//   - publishes a slider value to the Pico whenever it changes
//   - shows the latest message received from the Pico, refreshed periodically
//
// All sessions share one broker connection, created on first use.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/pico-bridge/internal/api"
	"github.com/nerrad567/pico-bridge/internal/bridge"
	"github.com/nerrad567/pico-bridge/internal/connection"
	"github.com/nerrad567/pico-bridge/internal/dashboard"
	"github.com/nerrad567/pico-bridge/internal/infrastructure/config"
	"github.com/nerrad567/pico-bridge/internal/infrastructure/influxdb"
	"github.com/nerrad567/pico-bridge/internal/infrastructure/logging"
	"github.com/nerrad567/pico-bridge/internal/session"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// startupCheckTimeout bounds the broker check at startup.
const startupCheckTimeout = 10 * time.Second

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Pico Bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Shared broker connection, dialed on first use
	conns := connection.NewManager(cfg.MQTT, connection.WithLogger(log.With("component", "connection")))
	defer func() {
		log.Info("closing broker connection")
		if closeErr := conns.Close(); closeErr != nil {
			log.Error("error closing broker connection", "error", closeErr)
		}
	}()

	// Connect to InfluxDB (optional)
	var telemetry dashboard.Telemetry
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		telemetry = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	// Sessions expire after a period without requests
	store := session.NewStore(cfg.Session.IdleTimeout)
	store.SetLogger(log.With("component", "session"))
	go store.Run(ctx, cfg.Session.JanitorInterval)

	// Process-wide inbound subscription (poll mode only)
	var feed *bridge.Feed
	if cfg.Bridge.Mode == config.BridgeModePoll {
		feed = bridge.NewFeed(cfg.Topics.Inbound, byte(cfg.MQTT.QoS))
		feed.SetLogger(log.With("component", "feed"))
	}

	// The hub is the dashboard's notifier, so it exists before both
	hub := api.NewHub(cfg.WebSocket, log.With("component", "websocket"))
	go hub.Run(ctx)

	app, err := dashboard.NewApp(ctx, dashboard.Deps{
		Config:    cfg,
		Conns:     conns,
		Store:     store,
		Feed:      feed,
		Notifier:  hub,
		Telemetry: telemetry,
		Logger:    log.With("component", "dashboard"),
	})
	if err != nil {
		return fmt.Errorf("creating dashboard: %w", err)
	}
	defer func() {
		log.Info("stopping dashboard sessions")
		app.Shutdown()
	}()

	srv, err := api.New(api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Logger:  log,
		App:     app,
		Broker:  conns,
		Hub:     hub,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := srv.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// The broker is dialed on the first session, not here. A recorded
	// failure is not fatal: pages render and the status line reports
	// failed publishes.
	if err := healthCheck(ctx, conns); err != nil {
		log.Warn("broker unhealthy at startup", "error", err)
	} else {
		log.Info("all health checks passed", "broker_dialed", conns.Dials() > 0)
	}

	log.Info("initialisation complete, waiting for shutdown signal",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"bridge_mode", cfg.Bridge.Mode,
	)

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order:
	// 1. API server
	// 2. Dashboard sessions and inbound feed
	// 3. InfluxDB (if enabled)
	// 4. Broker connection

	return nil
}

// getConfigPath returns the configuration file path.
// Uses PICOBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("PICOBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// broker is the part of the connection manager checked at startup.
type broker interface {
	HealthCheck(ctx context.Context) error
}

// healthCheck reports a broker connection that was dialed and is down.
// It never dials: a connection that has not been dialed yet is healthy.
func healthCheck(ctx context.Context, b broker) error {
	ctx, cancel := context.WithTimeout(ctx, startupCheckTimeout)
	defer cancel()

	if err := b.HealthCheck(ctx); err != nil && !errors.Is(err, connection.ErrNotDialed) {
		return fmt.Errorf("mqtt: %w", err)
	}
	return nil
}
