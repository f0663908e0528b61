package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics represents the /system response.
type SystemMetrics struct {
	Timestamp     string         `json:"timestamp"`
	Version       string         `json:"version"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Runtime       RuntimeMetrics `json:"runtime"`
	WebSocket     WSMetrics      `json:"websocket"`
	Model         ModelMetrics   `json:"model"`
	MessagesHeld  int            `json:"messages_held"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// ModelMetrics counts the entities currently in the model.
type ModelMetrics struct {
	Counters     int  `json:"counters"`
	PvSystems    int  `json:"pv_systems"`
	Batteries    int  `json:"batteries"`
	ChargePoints int  `json:"charge_points"`
	HasGridMeter bool `json:"has_grid_meter"`
}

// handleSystem returns process and model statistics.
func (s *Server) handleSystem(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snap := s.store.Snapshot()

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.Hub().ClientCount(),
		},
		Model: ModelMetrics{
			Counters:     len(snap.Counters),
			PvSystems:    len(snap.PvSystems),
			Batteries:    len(snap.Batteries),
			ChargePoints: len(snap.ChargePoints),
			HasGridMeter: snap.Global.HasGridMeter,
		},
	}

	if s.messages != nil {
		metrics.MessagesHeld = len(s.messages.Messages())
	}

	writeJSON(w, http.StatusOK, metrics)
}
