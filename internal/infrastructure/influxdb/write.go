package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePoint queues one point for the next batch.
//
// The write is non-blocking; failures are reported through SetOnError.
// Points written while disconnected are dropped.
//
// Example:
//
//	client.WritePoint("grid",
//	    nil,
//	    map[string]any{"import_power": 1200.0, "export_power": 0.0},
//	    time.Now())
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any, ts time.Time) {
	if !c.IsConnected() || len(fields) == 0 {
		return
	}

	point := write.NewPoint(measurement, tags, fields, ts)
	c.writeAPI.WritePoint(point)
}
