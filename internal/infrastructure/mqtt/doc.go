// Package mqtt provides MQTT client connectivity for Pico Bridge.
//
// This package manages:
//   - A single connect attempt whose failure carries the broker return code
//   - Auto-reconnect (with subscription restore) once connected
//   - Message publishing with bounded acknowledgement waits
//   - Topic subscriptions, including a one-message wait
//   - Connection health monitoring
//
// # Architecture
//
// The browser UI never talks to the broker directly. Pico Bridge holds the
// connection and relays between the two topics:
//
//	Browser ↔ Pico Bridge ↔ MQTT Broker ↔ Pico device
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Printf("connect failed, return code %d", mqtt.ReturnCode(err))
//	}
//	defer client.Close()
//
//	err = client.Subscribe("mqtt/pico_data", 0,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	client.PublishString("mqtt/streamlit_data", "7", 0, false)
package mqtt
