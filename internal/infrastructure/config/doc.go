// Package config handles loading and validating Pico Bridge configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// A missing configuration file is not an error: the defaults reproduce the
// stock demo (broker on localhost:1883, inbound topic mqtt/pico_data,
// outbound topic mqtt/streamlit_data, 3 second fragment refresh).
//
// Security Considerations:
//   - Broker credentials should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Topics.Inbound)
package config
