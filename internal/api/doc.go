// Package api implements the read-only HTTP REST API and WebSocket server
// for energymon.
//
// This package provides:
//   - REST endpoints over the live energy model (counters, PV, batteries,
//     charge points, source/usage summary)
//   - The recent MQTT message log for troubleshooting
//   - WebSocket hub broadcasting model.updated and command.error events
//   - Prometheus /metrics and a /system runtime overview
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Architecture
//
// The dispatcher mutates the model from MQTT and notifies the hub; the API
// only reads. Clients subscribe to model.updated and refetch over REST.
//
// # Graceful Degradation
//
// The server runs without MQTT or InfluxDB; /health reports them as
// degraded while the model endpoints keep serving the last known state.
package api
