// Package influxdb records Pico Bridge telemetry in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. The Client
// implements the dashboard's telemetry sink:
//   - RecordInbound writes every message received on the inbound topic
//     (measurement "mqtt_inbound", tagged by topic)
//   - RecordPublish writes every slider publish and its status code
//     (measurement "mqtt_publish", tagged by topic and status_code)
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// # Error Handling
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Write failures are delivered to the SetOnError callback.
// Connection and health check errors are returned directly.
//
// Telemetry is optional: with influxdb.enabled false, Connect returns
// ErrDisabled and the bridge runs without it.
package influxdb
