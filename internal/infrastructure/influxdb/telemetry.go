package influxdb

import (
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the bridge.
const (
	MeasurementInbound = "mqtt_inbound"
	MeasurementPublish = "mqtt_publish"
)

// RecordInbound writes one inbound broker message.
//
// The raw payload is stored as a string field. Payloads that parse as a
// number also get a numeric "value" field so they can be graphed.
func (c *Client) RecordInbound(topic string, payload []byte) {
	fields := map[string]interface{}{
		"payload": string(payload),
		"bytes":   len(payload),
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64); err == nil {
		fields["value"] = v
	}

	c.WritePoint(MeasurementInbound, map[string]string{"topic": topic}, fields)
}

// RecordPublish writes the outcome of one slider publish.
//
// status is the publish status code; 0 means the broker accepted it.
func (c *Client) RecordPublish(topic string, payload []byte, status int) {
	fields := map[string]interface{}{
		"payload": string(payload),
		"status":  status,
		"ok":      status == 0,
	}
	if v, err := strconv.ParseFloat(string(payload), 64); err == nil {
		fields["value"] = v
	}

	c.WritePoint(MeasurementPublish, map[string]string{
		"topic":       topic,
		"status_code": strconv.Itoa(status),
	}, fields)
}

// WritePoint writes a point stamped with the current time.
// The write is non-blocking; data is batched and sent asynchronously.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a point with a specific timestamp.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, timestamp))
}
