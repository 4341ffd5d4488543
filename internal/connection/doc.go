// Package connection owns the process-wide broker connection.
//
// A Manager dials the MQTT broker lazily on the first Get and hands the same
// connection to every later caller, including concurrent ones. A failed
// dial is recorded and returned to every caller; the manager never retries
// it. Once connected, paho's own auto-reconnect keeps the link alive.
//
// Usage:
//
//	mgr := connection.NewManager(cfg.MQTT, connection.WithLogger(log))
//	defer mgr.Close()
//
//	conn, err := mgr.Get(ctx)
//	if err != nil {
//	    // already logged with its reason code
//	}
//	conn.Publish("mqtt/streamlit_data", []byte("7"), 0, false)
package connection
