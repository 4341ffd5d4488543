// Package logging provides structured logging for Pico Bridge.
//
// This package wraps Go's standard log/slog package so every component logs
// with the same shape: JSON in production, text while developing, and the
// service and version attached to each entry.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("publishing", "topic", "mqtt/streamlit_data")
//	logger.Error("failed to connect", "error", err)
//
// Never log broker passwords.
package logging
