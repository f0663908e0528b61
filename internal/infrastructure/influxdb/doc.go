// Package influxdb provides InfluxDB connectivity for energymon.
//
// It wraps the official influxdb-client-go v2 library and is used by the
// recorder to keep a history of the live energy model for the graph views
// (grid import/export, PV yield, house consumption, per-counter and
// per-inverter series).
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // history is optional
//	}
//	defer client.Close()
//
//	client.WritePoint("house", nil, map[string]any{"power": 812.0}, time.Now())
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// Writes are non-blocking and batched according to batch_size and
// flush_interval; asynchronous write errors go to the SetOnError callback.
package influxdb
